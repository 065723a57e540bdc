package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	LotStatusInStock     = "IN_STOCK"
	LotStatusReserved    = "RESERVED"
	LotStatusDeployed    = "DEPLOYED"
	LotStatusScrapped    = "SCRAPPED"
	LotStatusMaintenance = "MAINTENANCE"
)

// LotStatuses lista los estados válidos.
var LotStatuses = []string{
	LotStatusInStock, LotStatusReserved, LotStatusDeployed, LotStatusScrapped, LotStatusMaintenance,
}

// Lot representa una partida física de stock de un producto: la unidad atómica de seguimiento.
// Un lote serializado (SerialNumber != nil) siempre tiene cantidad 1. Los campos acompañantes
// del estado funcionan como una unión etiquetada: solo DEPLOYED lleva SiteID, solo RESERVED
// lleva ReservedForDocumentID.
type Lot struct {
	ID                    string
	ProductID             string
	SerialNumber          *string
	Quantity              decimal.Decimal
	UnitCost              decimal.Decimal
	Status                string
	SiteID                *string
	ReservedForDocumentID *string
	WarrantyStart         *time.Time
	WarrantyEnd           *time.Time
	CreatedAt             time.Time
	DeletedAt             *time.Time
}

// Deleted indica si el lote terminó su ciclo de vida (cantidad agotada).
func (l *Lot) Deleted() bool {
	return l.DeletedAt != nil
}

// Validate verifica los invariantes del lote. Se ejecuta en cada escritura del
// almacén como última línea de defensa, aunque los casos de uso ya validen.
func (l *Lot) Validate() error {
	if l.ProductID == "" {
		return fmt.Errorf("product_id requerido")
	}
	if !validStatus(l.Status) {
		return fmt.Errorf("estado desconocido %q", l.Status)
	}
	if l.DeletedAt == nil && !l.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("lote activo con cantidad %s <= 0", l.Quantity)
	}
	if l.UnitCost.LessThan(decimal.Zero) {
		return fmt.Errorf("costo unitario negativo %s", l.UnitCost)
	}
	// Invariante 1: serie implica cantidad exactamente 1.
	if l.SerialNumber != nil && l.DeletedAt == nil && !l.Quantity.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("lote con serie %q debe tener cantidad 1, tiene %s", *l.SerialNumber, l.Quantity)
	}
	if l.SerialNumber != nil && *l.SerialNumber == "" {
		return fmt.Errorf("número de serie vacío")
	}
	// Invariante 4: consistencia estado <-> campos acompañantes.
	if (l.Status == LotStatusDeployed) != (l.SiteID != nil) {
		return fmt.Errorf("estado %s inconsistente con site_id", l.Status)
	}
	if (l.Status == LotStatusReserved) != (l.ReservedForDocumentID != nil) {
		return fmt.Errorf("estado %s inconsistente con reserved_for_document_id", l.Status)
	}
	// La ventana de garantía va completa o no va.
	if (l.WarrantyStart == nil) != (l.WarrantyEnd == nil) {
		return fmt.Errorf("ventana de garantía incompleta")
	}
	if l.WarrantyStart != nil && l.WarrantyEnd.Before(*l.WarrantyStart) {
		return fmt.Errorf("warranty_end anterior a warranty_start")
	}
	if l.Status == LotStatusDeployed && l.WarrantyStart == nil {
		return fmt.Errorf("lote desplegado sin ventana de garantía")
	}
	return nil
}

func validStatus(s string) bool {
	for _, st := range LotStatuses {
		if st == s {
			return true
		}
	}
	return false
}
