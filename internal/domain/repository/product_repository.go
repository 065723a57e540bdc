package repository

import "github.com/casaintegra/lotes-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product.
// El motor de lotes solo lee productos; la escritura existe para administrar el catálogo.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
}
