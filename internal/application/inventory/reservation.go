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

// ReservationUseCase amarra lotes de stock a un documento de venta. La cantidad
// reservada se consume con preferencia sobre el stock libre durante el despacho.
type ReservationUseCase struct {
	txRunner TxRunner
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(txRunner TxRunner) *ReservationUseCase {
	return &ReservationUseCase{txRunner: txRunner}
}

// ReserveInput entrada para reservar cantidad de un lote.
type ReserveInput struct {
	LotID      string
	Quantity   decimal.Decimal
	DocumentID string
	ActorID    string
}

// Reserve extrae quantity del lote vía split hacia RESERVED con el documento destino.
// Un lote solo puede estar reservado para un documento a la vez: reservar un lote ya
// reservado es error de validación, no una re-reserva silenciosa.
func (uc *ReservationUseCase) Reserve(ctx context.Context, in ReserveInput) (string, error) {
	if in.LotID == "" || in.DocumentID == "" {
		return "", fmt.Errorf("%w: lot_id y document_id son requeridos", domain.ErrValidation)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return "", fmt.Errorf("%w: cantidad %s debe ser positiva", domain.ErrValidation, in.Quantity)
	}

	now := time.Now()
	var reservedID string
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		_ repository.ProductRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(in.LotID)
		if err != nil {
			return err
		}
		if lot == nil || lot.Deleted() {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.LotID)
		}
		if lot.Status == entity.LotStatusReserved {
			return fmt.Errorf("%w: lote %s reservado para el documento %s",
				domain.ErrAlreadyReserved, lot.ID, *lot.ReservedForDocumentID)
		}
		if lot.Status != entity.LotStatusInStock {
			return fmt.Errorf("%w: lote %s en estado %s, solo se reserva stock libre",
				domain.ErrConflict, lot.ID, lot.Status)
		}
		if in.Quantity.GreaterThan(lot.Quantity) {
			return fmt.Errorf("%w: lote %s tiene %s, se pidieron %s",
				domain.ErrInsufficientQuantity, lot.ID, lot.Quantity, in.Quantity)
		}

		parentID := lot.ID
		docID := in.DocumentID
		reserved, err := splitLot(lotRepo, lot, in.Quantity, lotTarget{
			Status:                entity.LotStatusReserved,
			ReservedForDocumentID: &docID,
		}, now)
		if err != nil {
			return err
		}
		entry := &entity.HistoryEntry{
			ID:         uuid.New().String(),
			LotID:      reserved.ID,
			ActionType: entity.ActionRESERVE,
			Quantity:   in.Quantity,
			DocumentID: &docID,
			ActorID:    in.ActorID,
			DocumentTS: now,
			CreatedAt:  now,
		}
		if reserved.ID != parentID {
			related := parentID
			entry.RelatedLotID = &related
		}
		if err := histRepo.Create(entry); err != nil {
			return err
		}
		reservedID = reserved.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return reservedID, nil
}

// Release libera una reserva completa de vuelta a stock libre (documento cancelado).
func (uc *ReservationUseCase) Release(ctx context.Context, lotID, actorID string) error {
	if lotID == "" {
		return fmt.Errorf("%w: lot_id requerido", domain.ErrValidation)
	}
	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		_ repository.ProductRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(lotID)
		if err != nil {
			return err
		}
		if lot == nil || lot.Deleted() {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
		}
		if lot.Status != entity.LotStatusReserved {
			return fmt.Errorf("%w: lote %s en estado %s, no hay reserva que liberar",
				domain.ErrConflict, lot.ID, lot.Status)
		}
		docID := lot.ReservedForDocumentID
		lot.Status = entity.LotStatusInStock
		lot.ReservedForDocumentID = nil
		if err := lotRepo.Update(lot); err != nil {
			return err
		}
		entry := &entity.HistoryEntry{
			ID:         uuid.New().String(),
			LotID:      lot.ID,
			ActionType: entity.ActionRELEASE,
			Quantity:   lot.Quantity,
			DocumentID: docID,
			ActorID:    actorID,
			DocumentTS: now,
			CreatedAt:  now,
		}
		return histRepo.Create(entry)
	})
}
