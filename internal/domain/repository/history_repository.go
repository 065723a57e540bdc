package repository

import (
	"time"

	"github.com/casaintegra/lotes-api/internal/domain/entity"
)

// HistoryRepository define el puerto del historial de lotes (append-only).
// No existen Update ni Delete: las entradas son inmutables.
type HistoryRepository interface {
	Create(entry *entity.HistoryEntry) error
	// ListByLot devuelve las entradas propias y de contraparte de un lote
	// (lot_id o related_lot_id), ordenadas por fecha de creación ascendente.
	ListByLot(lotID string) ([]*entity.HistoryEntry, error)
	// ListByShipment devuelve las entradas que comparten sitio y timestamp de documento
	// de un despliegue masivo, para reconstruir el registro de envío.
	ListByShipment(siteID string, documentTS time.Time) ([]*entity.HistoryEntry, error)
}
