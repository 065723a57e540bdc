package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

const historyColumns = `id, lot_id, action_type, quantity, from_site_id, to_site_id,
	related_lot_id, document_id, actor_id, comment, document_ts, created_at`

// HistoryRepo implementación del historial append-only sobre PostgreSQL
// (usable con pool o tx). No expone Update ni Delete.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// Create persiste una entrada de historial.
func (r *HistoryRepo) Create(entry *entity.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lot_history (` + historyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	actorID := (*string)(nil)
	if entry.ActorID != "" {
		actorID = &entry.ActorID
	}
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.LotID, entry.ActionType, entry.Quantity,
		entry.FromSiteID, entry.ToSiteID, entry.RelatedLotID, entry.DocumentID,
		actorID, entry.Comment, entry.DocumentTS, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}
	return nil
}

// ListByLot devuelve las entradas propias y de contraparte de un lote,
// ordenadas por fecha de creación ascendente.
func (r *HistoryRepo) ListByLot(lotID string) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + ` FROM lot_history
		WHERE lot_id = $1 OR related_lot_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, lotID)
	if err != nil {
		return nil, fmt.Errorf("list history by lot: %w", err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

// ListByShipment devuelve las entradas que comparten sitio destino y timestamp de
// documento (reconstrucción del registro de envío de un despliegue masivo).
func (r *HistoryRepo) ListByShipment(siteID string, documentTS time.Time) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + ` FROM lot_history
		WHERE to_site_id = $1 AND document_ts = $2
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, siteID, documentTS)
	if err != nil {
		return nil, fmt.Errorf("list history by shipment: %w", err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

func scanHistory(rows pgx.Rows) ([]*entity.HistoryEntry, error) {
	var list []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		var actorID *string
		if err := rows.Scan(
			&e.ID, &e.LotID, &e.ActionType, &e.Quantity, &e.FromSiteID, &e.ToSiteID,
			&e.RelatedLotID, &e.DocumentID, &actorID, &e.Comment, &e.DocumentTS, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if actorID != nil {
			e.ActorID = *actorID
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
