package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/casaintegra/lotes-api/internal/application/dto"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// SiteUseCase administración de objetos de instalación.
type SiteUseCase struct {
	repo repository.SiteRepository
}

// NewSiteUseCase construye el caso de uso.
func NewSiteUseCase(repo repository.SiteRepository) *SiteUseCase {
	return &SiteUseCase{repo: repo}
}

// Create da de alta un objeto de instalación.
func (uc *SiteUseCase) Create(in dto.CreateSiteRequest) (*dto.SiteResponse, error) {
	site := &entity.Site{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(site); err != nil {
		return nil, err
	}
	return toSiteResponse(site), nil
}

// GetByID obtiene un objeto por ID.
func (uc *SiteUseCase) GetByID(id string) (*dto.SiteResponse, error) {
	site, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, nil
	}
	return toSiteResponse(site), nil
}

// List lista objetos con paginación.
func (uc *SiteUseCase) List(limit, offset int) (*dto.SiteListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SiteResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSiteResponse(s))
	}
	return &dto.SiteListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toSiteResponse(s *entity.Site) *dto.SiteResponse {
	if s == nil {
		return nil
	}
	return &dto.SiteResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
	}
}
