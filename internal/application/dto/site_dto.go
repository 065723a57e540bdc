package dto

import "time"

// CreateSiteRequest body para POST /api/sites.
type CreateSiteRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// SiteResponse representación HTTP de un objeto de instalación.
type SiteResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SiteListResponse listado paginado de objetos.
type SiteListResponse struct {
	Items []SiteResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
