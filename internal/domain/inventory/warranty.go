package inventory

import "time"

// WarrantyWindow calcula la ventana de garantía de un lote al momento de desplegarlo
// (servicio de dominio). Se calcula una sola vez: un recambio posterior abre una ventana
// independiente para el lote nuevo, nunca se recalcula la del original.
func WarrantyWindow(deployedAt time.Time, warrantyMonths int) (start, end time.Time) {
	if warrantyMonths < 0 {
		warrantyMonths = 0
	}
	return deployedAt, deployedAt.AddDate(0, warrantyMonths, 0)
}
