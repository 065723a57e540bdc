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

// ReturnUseCase devuelve cantidad desplegada a stock libre.
type ReturnUseCase struct {
	txRunner TxRunner
}

// NewReturnUseCase construye el caso de uso.
func NewReturnUseCase(txRunner TxRunner) *ReturnUseCase {
	return &ReturnUseCase{txRunner: txRunner}
}

// ReturnInput entrada para devolver cantidad de un lote desplegado.
type ReturnInput struct {
	LotID    string
	Quantity decimal.Decimal
	Reason   string // surplus, cancellation, wrong_item, repair
	ActorID  string
	Comment  string
}

// ReturnToStock extrae quantity del lote desplegado vía split hacia IN_STOCK, limpia el
// objeto y la ventana de garantía, y escribe una entrada RETURN con el sitio de origen.
// La serie se conserva solo si se devuelve la cantidad completa (camino completo del split).
func (uc *ReturnUseCase) ReturnToStock(ctx context.Context, in ReturnInput) (string, error) {
	if in.LotID == "" {
		return "", fmt.Errorf("%w: lot_id requerido", domain.ErrValidation)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return "", fmt.Errorf("%w: cantidad %s debe ser positiva", domain.ErrValidation, in.Quantity)
	}
	if !entity.ValidReturnReason(in.Reason) {
		return "", fmt.Errorf("%w: motivo de devolución %q", domain.ErrValidation, in.Reason)
	}

	now := time.Now()
	var returnedID string
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		_ repository.ProductRepository,
	) error {
		id, err := returnFromLot(lotRepo, histRepo, in, now)
		if err != nil {
			return err
		}
		returnedID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return returnedID, nil
}

// returnFromLot ejecuta la devolución dentro de la transacción del caller.
func returnFromLot(
	lotRepo repository.LotRepository,
	histRepo repository.HistoryRepository,
	in ReturnInput,
	now time.Time,
) (string, error) {
	lot, err := lotRepo.GetForUpdate(in.LotID)
	if err != nil {
		return "", err
	}
	if lot == nil || lot.Deleted() {
		return "", fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.LotID)
	}
	if lot.Status != entity.LotStatusDeployed {
		return "", fmt.Errorf("%w: lote %s en estado %s, solo se devuelve lo desplegado", domain.ErrConflict, lot.ID, lot.Status)
	}
	if in.Quantity.GreaterThan(lot.Quantity) {
		return "", fmt.Errorf("%w: lote %s tiene %s, se pidieron %s",
			domain.ErrInsufficientQuantity, lot.ID, lot.Quantity, in.Quantity)
	}

	parentID := lot.ID
	fromSite := lot.SiteID
	returned, err := splitLot(lotRepo, lot, in.Quantity, lotTarget{
		Status: entity.LotStatusInStock,
	}, now)
	if err != nil {
		return "", err
	}

	comment := in.Reason
	if in.Comment != "" {
		comment = in.Reason + ": " + in.Comment
	}
	entry := &entity.HistoryEntry{
		ID:         uuid.New().String(),
		LotID:      returned.ID,
		ActionType: entity.ActionRETURN,
		Quantity:   in.Quantity,
		FromSiteID: fromSite,
		ActorID:    in.ActorID,
		Comment:    comment,
		DocumentTS: now,
		CreatedAt:  now,
	}
	if returned.ID != parentID {
		related := parentID
		entry.RelatedLotID = &related
	}
	if err := histRepo.Create(entry); err != nil {
		return "", err
	}
	return returned.ID, nil
}
