package entity

import "time"

// Product representa un producto del catálogo (datos de referencia, solo lectura para el motor).
// RequiresSerial fuerza el seguimiento por unidad: cada unidad física vive en su propio lote
// de cantidad 1 con número de serie único. WarrantyMonths define la ventana de garantía
// calculada al momento del despliegue.
type Product struct {
	ID             string
	Name           string
	UnitMeasure    string // unidad de medida: und, m, rollo, caja...
	RequiresSerial bool
	WarrantyMonths int
	CreatedAt      time.Time
}
