package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, serial_number, quantity, unit_cost, status, site_id,
	reserved_for_document_id, warranty_start, warranty_end, created_at, deleted_at`

// LotRepo implementación del almacén de lotes sobre PostgreSQL (usable con pool o tx).
// Valida los invariantes del lote en cada escritura; el esquema (CHECKs y unique
// parcial de serie) actúa como última línea de defensa ante cualquier caller.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(lot *entity.Lot) error {
	if err := lot.Validate(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvariantViolation, err)
	}
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.ProductID, lot.SerialNumber, lot.Quantity, lot.UnitCost, lot.Status,
		lot.SiteID, lot.ReservedForDocumentID, lot.WarrantyStart, lot.WarrantyEnd,
		lot.CreatedAt, lot.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: serie duplicada para el producto", domain.ErrDuplicate)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrInvariantViolation, err)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID (incluye borrados, para auditoría).
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get lot")
}

// GetForUpdate obtiene un lote activo y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get lot for update")
}

// Update reescribe un lote existente. Una escritura que deja la cantidad en cero
// marca el lote como borrado (fin de ciclo de vida) en lugar de violar el CHECK.
func (r *LotRepo) Update(lot *entity.Lot) error {
	if lot.DeletedAt == nil && !lot.Quantity.GreaterThan(decimal.Zero) {
		now := time.Now()
		lot.DeletedAt = &now
	}
	if err := lot.Validate(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvariantViolation, err)
	}
	query := `
		UPDATE lots SET serial_number = $2, quantity = $3, unit_cost = $4, status = $5,
			site_id = $6, reserved_for_document_id = $7, warranty_start = $8,
			warranty_end = $9, deleted_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.SerialNumber, lot.Quantity, lot.UnitCost, lot.Status,
		lot.SiteID, lot.ReservedForDocumentID, lot.WarrantyStart, lot.WarrantyEnd,
		lot.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: serie duplicada para el producto", domain.ErrDuplicate)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrInvariantViolation, err)
		}
		return fmt.Errorf("update lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lot.ID)
	}
	return nil
}

// SoftDelete marca el fin de ciclo de vida de un lote.
func (r *LotRepo) SoftDelete(id string, at time.Time) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE lots SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return nil
}

// List lista lotes con filtros opcionales. Por defecto excluye borrados.
func (r *LotRepo) List(f repository.LotFilter) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE 1=1`
	var args []any
	pos := 1
	if !f.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.SiteID != "" {
		query += fmt.Sprintf(" AND site_id = $%d", pos)
		args = append(args, f.SiteID)
		pos++
	}
	if f.DocumentID != "" {
		query += fmt.Sprintf(" AND reserved_for_document_id = $%d", pos)
		args = append(args, f.DocumentID)
		pos++
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// ListReservedForUpdate devuelve los lotes reservados de un producto para un documento,
// más antiguos primero, bloqueados para update.
func (r *LotRepo) ListReservedForUpdate(productID, documentID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND status = $2 AND reserved_for_document_id = $3
		  AND deleted_at IS NULL
		ORDER BY created_at ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, productID, entity.LotStatusReserved, documentID)
	if err != nil {
		return nil, fmt.Errorf("list reserved lots: %w", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// ListInStockForUpdate devuelve los lotes IN_STOCK de un producto en orden FIFO,
// bloqueados para update.
func (r *LotRepo) ListInStockForUpdate(productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND status = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, productID, entity.LotStatusInStock)
	if err != nil {
		return nil, fmt.Errorf("list in-stock lots: %w", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

func (r *LotRepo) scanOne(row pgx.Row, op string) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.ProductID, &l.SerialNumber, &l.Quantity, &l.UnitCost, &l.Status,
		&l.SiteID, &l.ReservedForDocumentID, &l.WarrantyStart, &l.WarrantyEnd,
		&l.CreatedAt, &l.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}

func scanLots(rows pgx.Rows) ([]*entity.Lot, error) {
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.SerialNumber, &l.Quantity, &l.UnitCost, &l.Status,
			&l.SiteID, &l.ReservedForDocumentID, &l.WarrantyStart, &l.WarrantyEnd,
			&l.CreatedAt, &l.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
