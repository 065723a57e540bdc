package repository

import (
	"time"

	"github.com/casaintegra/lotes-api/internal/domain/entity"
)

// LotFilter criterios para listar lotes. Campos vacíos no filtran.
type LotFilter struct {
	ProductID      string
	Status         string
	SiteID         string
	DocumentID     string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// LotRepository define el puerto de persistencia del almacén de lotes (DIP).
// Toda implementación valida los invariantes del lote en cada escritura y rechaza
// con domain.ErrInvariantViolation cualquier estado ilegal. Una escritura que deja
// la cantidad en cero marca el lote como borrado (fin de ciclo de vida).
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) dentro de la tx actual.
	GetForUpdate(id string) (*entity.Lot, error)
	Update(lot *entity.Lot) error
	SoftDelete(id string, at time.Time) error
	List(f LotFilter) ([]*entity.Lot, error)
	// ListReservedForUpdate devuelve los lotes RESERVED de un producto para un documento,
	// más antiguos primero, bloqueados para update.
	ListReservedForUpdate(productID, documentID string) ([]*entity.Lot, error)
	// ListInStockForUpdate devuelve los lotes IN_STOCK de un producto en orden FIFO
	// (created_at ascendente), bloqueados para update.
	ListInStockForUpdate(productID string) ([]*entity.Lot, error)
}
