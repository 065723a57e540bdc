package dto

import "time"

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name           string `json:"name"`
	UnitMeasure    string `json:"unit_measure"`
	RequiresSerial bool   `json:"requires_serial"`
	WarrantyMonths int    `json:"warranty_months"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	UnitMeasure    string    `json:"unit_measure"`
	RequiresSerial bool      `json:"requires_serial"`
	WarrantyMonths int       `json:"warranty_months"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
