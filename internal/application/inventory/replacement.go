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

// ReplacementUseCase ejecuta el recambio por garantía o defecto: desmonta (chatarrea)
// cantidad de un lote desplegado y despliega cantidad de otro lote de stock al mismo
// objeto, todo como una sola unidad de trabajo.
type ReplacementUseCase struct {
	txRunner TxRunner
}

// NewReplacementUseCase construye el caso de uso.
func NewReplacementUseCase(txRunner TxRunner) *ReplacementUseCase {
	return &ReplacementUseCase{txRunner: txRunner}
}

// ReplaceInput entrada del recambio.
type ReplaceInput struct {
	OldLotID    string
	OldQuantity decimal.Decimal
	NewLotID    string
	NewQuantity decimal.Decimal
	Reason      string
	Comment     string
	ActorID     string
}

// ReplaceResult ids resultantes del recambio.
type ReplaceResult struct {
	ScrappedLotID string
	DeployedLotID string
}

// Replace chatarrea OldQuantity de OldLotID (entrada SCRAP con el sitio de origen) y
// despliega NewQuantity de NewLotID al mismo objeto (entrada DEPLOY cuyo comentario
// referencia el lote reemplazado). Una falla en el desmontaje impide el despliegue:
// ambos pasos comparten la transacción. El lote nuevo abre una ventana de garantía
// independiente.
func (uc *ReplacementUseCase) Replace(ctx context.Context, in ReplaceInput) (*ReplaceResult, error) {
	if in.OldLotID == "" || in.NewLotID == "" {
		return nil, fmt.Errorf("%w: old_lot_id y new_lot_id son requeridos", domain.ErrValidation)
	}
	if in.OldLotID == in.NewLotID {
		return nil, fmt.Errorf("%w: el lote de recambio debe ser distinto al desmontado", domain.ErrValidation)
	}
	if !in.OldQuantity.GreaterThan(decimal.Zero) || !in.NewQuantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: las cantidades deben ser positivas", domain.ErrValidation)
	}

	now := time.Now()
	result := &ReplaceResult{}
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		productRepo repository.ProductRepository,
	) error {
		oldLot, err := lotRepo.GetForUpdate(in.OldLotID)
		if err != nil {
			return err
		}
		if oldLot == nil || oldLot.Deleted() {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.OldLotID)
		}
		if oldLot.Status != entity.LotStatusDeployed {
			return fmt.Errorf("%w: lote %s en estado %s, solo se desmonta lo desplegado",
				domain.ErrConflict, oldLot.ID, oldLot.Status)
		}
		if in.OldQuantity.GreaterThan(oldLot.Quantity) {
			return fmt.Errorf("%w: lote %s tiene %s, se pidieron %s",
				domain.ErrInsufficientQuantity, oldLot.ID, oldLot.Quantity, in.OldQuantity)
		}
		site := *oldLot.SiteID
		oldProduct, err := productRepo.GetByID(oldLot.ProductID)
		if err != nil {
			return err
		}
		oldSerial := ""
		if oldLot.SerialNumber != nil {
			oldSerial = *oldLot.SerialNumber
		}

		// Paso 1: desmontar la cantidad vieja hacia SCRAPPED (historial preservado,
		// nunca se borra la cantidad).
		parentID := oldLot.ID
		scrapped, err := splitLot(lotRepo, oldLot, in.OldQuantity, lotTarget{
			Status: entity.LotStatusScrapped,
		}, now)
		if err != nil {
			return err
		}
		scrapEntry := &entity.HistoryEntry{
			ID:         uuid.New().String(),
			LotID:      scrapped.ID,
			ActionType: entity.ActionSCRAP,
			Quantity:   in.OldQuantity,
			FromSiteID: &site,
			ActorID:    in.ActorID,
			Comment:    scrapComment(in.Reason, in.Comment),
			DocumentTS: now,
			CreatedAt:  now,
		}
		if scrapped.ID != parentID {
			related := parentID
			scrapEntry.RelatedLotID = &related
		}
		if err := histRepo.Create(scrapEntry); err != nil {
			return err
		}
		result.ScrappedLotID = scrapped.ID

		// Paso 2: desplegar el recambio al mismo objeto. El comentario cruza la
		// referencia del producto/serie desmontado para trazabilidad.
		comment := fmt.Sprintf("recambio de lote %s", in.OldLotID)
		if oldProduct != nil {
			comment = fmt.Sprintf("recambio de %s", oldProduct.Name)
		}
		if oldSerial != "" {
			comment += fmt.Sprintf(" (serie %s)", oldSerial)
		}
		deployedID, err := deployFromLot(lotRepo, histRepo, productRepo, deployParams{
			LotID:      in.NewLotID,
			Quantity:   in.NewQuantity,
			SiteID:     site,
			ActorID:    in.ActorID,
			Comment:    comment,
			DocumentTS: now,
		}, now)
		if err != nil {
			return err
		}
		result.DeployedLotID = deployedID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func scrapComment(reason, comment string) string {
	switch {
	case reason != "" && comment != "":
		return reason + ": " + comment
	case reason != "":
		return reason
	default:
		return comment
	}
}
