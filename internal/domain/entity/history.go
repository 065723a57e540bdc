package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones del historial de lotes.
const (
	ActionRECEIVE = "RECEIVE"
	ActionDEPLOY  = "DEPLOY"
	ActionRETURN  = "RETURN"
	ActionSCRAP   = "SCRAP"
	ActionREPLACE = "REPLACE"
	ActionRESERVE = "RESERVE"
	ActionRELEASE = "RELEASE"
)

// Motivos de devolución a stock.
const (
	ReturnReasonSurplus      = "surplus"
	ReturnReasonCancellation = "cancellation"
	ReturnReasonWrongItem    = "wrong_item"
	ReturnReasonRepair       = "repair"
)

// ReturnReasons lista los motivos válidos de devolución.
var ReturnReasons = []string{
	ReturnReasonSurplus, ReturnReasonCancellation, ReturnReasonWrongItem, ReturnReasonRepair,
}

// ValidReturnReason verifica el motivo de devolución.
func ValidReturnReason(r string) bool {
	for _, v := range ReturnReasons {
		if v == r {
			return true
		}
	}
	return false
}

// HistoryEntry es un registro inmutable de una transición de estado aplicada a un lote.
// Nunca se actualiza ni borra. Quantity es la cantidad afectada por la transición;
// RelatedLotID enlaza la contraparte de un split (el lote padre del que salió la cantidad,
// o el lote reemplazado en un recambio), lo que permite reconstruir cantidades por replay.
// DocumentTS agrupa las entradas de un despliegue masivo en un mismo documento de salida.
type HistoryEntry struct {
	ID           string
	LotID        string
	ActionType   string
	Quantity     decimal.Decimal
	FromSiteID   *string
	ToSiteID     *string
	RelatedLotID *string
	DocumentID   *string
	ActorID      string
	Comment      string
	DocumentTS   time.Time
	CreatedAt    time.Time
}
