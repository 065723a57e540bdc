package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
)

// ReplayedLot es el estado de un lote reconstruido desde su historial.
type ReplayedLot struct {
	Quantity decimal.Decimal
	Status   string
	Deleted  bool
}

// Replay reconstruye cantidad y estado final de un lote a partir de sus entradas de
// historial, ordenadas por fecha de creación. Se esperan tanto las entradas propias
// (entry.LotID == lotID) como las de contraparte (entry.RelatedLotID == lotID), que
// representan cantidad extraída de este lote por un split.
func Replay(lotID string, entries []*entity.HistoryEntry) (*ReplayedLot, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("sin historial para el lote %s", lotID)
	}
	state := &ReplayedLot{Quantity: decimal.Zero}
	seeded := false
	for _, e := range entries {
		if e.RelatedLotID != nil && *e.RelatedLotID == lotID {
			// Un split extrajo cantidad de este lote hacia e.LotID.
			state.Quantity = state.Quantity.Sub(e.Quantity)
			continue
		}
		if e.LotID != lotID {
			return nil, fmt.Errorf("entrada %s no pertenece al lote %s", e.ID, lotID)
		}
		if !seeded {
			// La primera entrada propia siembra la cantidad: RECEIVE para lotes
			// recibidos, o la acción que creó el lote hijo en un split.
			state.Quantity = state.Quantity.Add(e.Quantity)
			seeded = true
		}
		switch e.ActionType {
		case entity.ActionRECEIVE, entity.ActionRETURN, entity.ActionRELEASE:
			state.Status = entity.LotStatusInStock
		case entity.ActionDEPLOY, entity.ActionREPLACE:
			state.Status = entity.LotStatusDeployed
		case entity.ActionSCRAP:
			state.Status = entity.LotStatusScrapped
		case entity.ActionRESERVE:
			state.Status = entity.LotStatusReserved
		default:
			return nil, fmt.Errorf("acción desconocida %q en entrada %s", e.ActionType, e.ID)
		}
	}
	if !seeded {
		return nil, fmt.Errorf("el lote %s no tiene entrada de origen propia", lotID)
	}
	if !state.Quantity.GreaterThan(decimal.Zero) {
		state.Deleted = true
	}
	return state, nil
}
