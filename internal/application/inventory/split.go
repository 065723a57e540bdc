package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// lotTarget describe el estado destino de la cantidad extraída en un split.
type lotTarget struct {
	Status                string
	SiteID                *string
	ReservedForDocumentID *string
	SerialNumber          *string // solo camino parcial; el camino completo conserva la serie del lote
	WarrantyStart         *time.Time
	WarrantyEnd           *time.Time
}

// splitLot es la primitiva compartida por despliegue, devolución, recambio y reserva.
// Precondición: el caller ya bloqueó el lote (GetForUpdate) dentro de la tx actual.
//
//   - qty == lot.Quantity (camino completo): el propio lote se reutiliza; sus campos de
//     estado cambian en sitio y no se crea fila nueva. La serie se conserva.
//   - qty < lot.Quantity (camino parcial): el lote original queda en su estado actual con
//     la cantidad decrementada, y se crea un lote hijo con qty y el estado destino.
//     La serie nunca cruza un split parcial (un lote serializado tiene cantidad 1 y por
//     tanto solo puede tomar el camino completo).
//
// Devuelve el lote que quedó con la cantidad extraída y el estado destino.
func splitLot(lotRepo repository.LotRepository, lot *entity.Lot, qty decimal.Decimal, target lotTarget, now time.Time) (*entity.Lot, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: cantidad a extraer %s", domain.ErrValidation, qty)
	}
	if qty.GreaterThan(lot.Quantity) {
		return nil, fmt.Errorf("%w: lote %s tiene %s, se pidieron %s",
			domain.ErrInsufficientQuantity, lot.ID, lot.Quantity, qty)
	}

	if qty.Equal(lot.Quantity) {
		lot.Status = target.Status
		lot.SiteID = target.SiteID
		lot.ReservedForDocumentID = target.ReservedForDocumentID
		lot.WarrantyStart = target.WarrantyStart
		lot.WarrantyEnd = target.WarrantyEnd
		if target.SerialNumber != nil {
			lot.SerialNumber = target.SerialNumber
		}
		if err := lotRepo.Update(lot); err != nil {
			return nil, err
		}
		return lot, nil
	}

	// Camino parcial: decrementar el padre en sitio, crear el hijo como fila nueva
	// (nunca al revés: el padre conserva su identidad e historial).
	lot.Quantity = lot.Quantity.Sub(qty)
	if err := lotRepo.Update(lot); err != nil {
		return nil, err
	}
	child := &entity.Lot{
		ID:                    uuid.New().String(),
		ProductID:             lot.ProductID,
		SerialNumber:          target.SerialNumber,
		Quantity:              qty,
		UnitCost:              lot.UnitCost,
		Status:                target.Status,
		SiteID:                target.SiteID,
		ReservedForDocumentID: target.ReservedForDocumentID,
		WarrantyStart:         target.WarrantyStart,
		WarrantyEnd:           target.WarrantyEnd,
		CreatedAt:             now,
	}
	if err := lotRepo.Create(child); err != nil {
		return nil, err
	}
	return child, nil
}
