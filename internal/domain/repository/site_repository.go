package repository

import "github.com/casaintegra/lotes-api/internal/domain/entity"

// SiteRepository define el puerto de persistencia para Site (objetos de instalación).
type SiteRepository interface {
	Create(site *entity.Site) error
	GetByID(id string) (*entity.Site, error)
	List(limit, offset int) ([]*entity.Site, error)
}
