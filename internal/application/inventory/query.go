package inventory

import (
	"context"
	"fmt"

	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	domaininv "github.com/casaintegra/lotes-api/internal/domain/inventory"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// QueryUseCase superficie de consulta del motor: listados de lotes, historial
// completo de un lote y reconstrucción por replay para auditoría.
// Las lecturas son advisory respecto a escrituras concurrentes; quien calcule
// disponible-para-prometer debe revalidar al momento de asignar.
type QueryUseCase struct {
	lotRepo  repository.LotRepository
	histRepo repository.HistoryRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(lotRepo repository.LotRepository, histRepo repository.HistoryRepository) *QueryUseCase {
	return &QueryUseCase{lotRepo: lotRepo, histRepo: histRepo}
}

// GetLot obtiene un lote por id.
func (uc *QueryUseCase) GetLot(ctx context.Context, id string) (*entity.Lot, error) {
	lot, err := uc.lotRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return lot, nil
}

// ListLots lista lotes por producto/estado/objeto/documento.
func (uc *QueryUseCase) ListLots(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return uc.lotRepo.List(f)
}

// LotHistory devuelve la secuencia completa de entradas de historial de un lote
// (propias y de contraparte de splits) para la vista de auditoría.
func (uc *QueryUseCase) LotHistory(ctx context.Context, lotID string) ([]*entity.HistoryEntry, error) {
	entries, err := uc.histRepo.ListByLot(lotID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: historial del lote %s", domain.ErrNotFound, lotID)
	}
	return entries, nil
}

// ReplayLot reconstruye cantidad y estado final de un lote desde su historial.
// Para un historial consistente el resultado coincide exactamente con la fila viva.
func (uc *QueryUseCase) ReplayLot(ctx context.Context, lotID string) (*domaininv.ReplayedLot, error) {
	entries, err := uc.histRepo.ListByLot(lotID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: historial del lote %s", domain.ErrNotFound, lotID)
	}
	return domaininv.Replay(lotID, entries)
}
