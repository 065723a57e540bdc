package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// ReceptionUseCase da de alta lotes por entrada de mercancía y asigna series pendientes.
type ReceptionUseCase struct {
	txRunner TxRunner
}

// NewReceptionUseCase construye el caso de uso.
func NewReceptionUseCase(txRunner TxRunner) *ReceptionUseCase {
	return &ReceptionUseCase{txRunner: txRunner}
}

// ReceiveInput entrada para registrar mercancía recibida.
type ReceiveInput struct {
	ProductID      string
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	SerialNumber   *string
	SplitIntoUnits bool
	ActorID        string
	Comment        string
}

// Receive crea los lotes de una recepción y escribe una entrada RECEIVE por cada uno.
//   - Con serie: la cantidad debe ser exactamente 1.
//   - Con SplitIntoUnits y cantidad N > 1: N lotes de cantidad 1, series vacías para
//     asignarlas después con AssignSerial.
//   - Si no: un único lote con la cantidad completa.
func (uc *ReceptionUseCase) Receive(ctx context.Context, in ReceiveInput) ([]string, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrValidation)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: cantidad %s debe ser positiva", domain.ErrValidation, in.Quantity)
	}
	if in.UnitCost.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrValidation)
	}
	if in.SerialNumber != nil {
		if *in.SerialNumber == "" {
			return nil, fmt.Errorf("%w: número de serie vacío", domain.ErrValidation)
		}
		if !in.Quantity.Equal(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: un lote con serie debe recibirse con cantidad 1", domain.ErrValidation)
		}
		if in.SplitIntoUnits {
			return nil, fmt.Errorf("%w: split_into_units no aplica con serie explícita", domain.ErrValidation)
		}
	}
	if in.SplitIntoUnits && (!in.Quantity.IsInteger() || !in.Quantity.GreaterThan(decimal.NewFromInt(1))) {
		return nil, fmt.Errorf("%w: split_into_units requiere cantidad entera > 1", domain.ErrValidation)
	}

	now := time.Now()
	var lotIDs []string
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}

		units := int64(1)
		perLotQty := in.Quantity
		if in.SplitIntoUnits {
			units = in.Quantity.IntPart()
			perLotQty = decimal.NewFromInt(1)
		}
		for i := int64(0); i < units; i++ {
			lot := &entity.Lot{
				ID:           uuid.New().String(),
				ProductID:    in.ProductID,
				SerialNumber: in.SerialNumber,
				Quantity:     perLotQty,
				UnitCost:     in.UnitCost,
				Status:       entity.LotStatusInStock,
				CreatedAt:    now,
			}
			if err := lotRepo.Create(lot); err != nil {
				return err
			}
			entry := &entity.HistoryEntry{
				ID:         uuid.New().String(),
				LotID:      lot.ID,
				ActionType: entity.ActionRECEIVE,
				Quantity:   perLotQty,
				ActorID:    in.ActorID,
				Comment:    in.Comment,
				DocumentTS: now,
				CreatedAt:  now,
			}
			if err := histRepo.Create(entry); err != nil {
				return err
			}
			lotIDs = append(lotIDs, lot.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lotIDs, nil
}

// AssignSerial asigna una serie a un lote de cantidad 1 que quedó sin serie
// (recepción con split o despliegue masivo "sin series"). Solo productos que
// requieren serie; un lote con cantidad > 1 no puede llevar serie.
func (uc *ReceptionUseCase) AssignSerial(ctx context.Context, lotID, serial, actorID string) error {
	if serial == "" {
		return fmt.Errorf("%w: número de serie requerido", domain.ErrValidation)
	}
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		productRepo repository.ProductRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(lotID)
		if err != nil {
			return err
		}
		if lot == nil || lot.Deleted() {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
		}
		if lot.SerialNumber != nil {
			return fmt.Errorf("%w: el lote %s ya tiene serie %s", domain.ErrConflict, lotID, *lot.SerialNumber)
		}
		if !lot.Quantity.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: un lote con cantidad %s no puede llevar serie", domain.ErrInvariantViolation, lot.Quantity)
		}
		product, err := productRepo.GetByID(lot.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, lot.ProductID)
		}
		if !product.RequiresSerial {
			return fmt.Errorf("%w: el producto %s no maneja series", domain.ErrValidation, product.ID)
		}
		lot.SerialNumber = &serial
		return lotRepo.Update(lot)
	})
}
