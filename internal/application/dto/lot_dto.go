package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveRequest body para POST /api/lots/receive.
// Si SerialNumber viene, Quantity debe ser 1. SplitIntoUnits crea N lotes de cantidad 1
// (series vacías, para asignarlas después).
type ReceiveRequest struct {
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	SerialNumber   *string         `json:"serial_number,omitempty"`
	SplitIntoUnits bool            `json:"split_into_units,omitempty"`
	Comment        string          `json:"comment,omitempty"`
}

// AssignSerialRequest body para POST /api/lots/:id/serial.
type AssignSerialRequest struct {
	SerialNumber string `json:"serial_number"`
}

// DeployRequest body para POST /api/lots/:id/deploy.
type DeployRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	SiteID       string          `json:"site_id"`
	SerialNumber *string         `json:"serial_number,omitempty"` // override para unidad serializada
	Comment      string          `json:"comment,omitempty"`
}

// DeployBatchItem una línea del carrito de despliegue masivo.
type DeployBatchItem struct {
	LotID    string          `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Serials  []string        `json:"serials,omitempty"`
}

// DeployBatchRequest body para POST /api/lots/deploy-batch.
type DeployBatchRequest struct {
	SiteID string            `json:"site_id"`
	Items  []DeployBatchItem `json:"items"`
}

// DeployBatchResponse resultado del despliegue masivo.
type DeployBatchResponse struct {
	DeployedLotIDs []string `json:"deployed_lot_ids"`
	Warnings       []string `json:"warnings,omitempty"`
}

// ReturnRequest body para POST /api/lots/:id/return.
type ReturnRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"` // surplus, cancellation, wrong_item, repair
	Comment  string          `json:"comment,omitempty"`
}

// ReplaceRequest body para POST /api/lots/replace.
type ReplaceRequest struct {
	OldLotID    string          `json:"old_lot_id"`
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewLotID    string          `json:"new_lot_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason,omitempty"`
	Comment     string          `json:"comment,omitempty"`
}

// ReplaceResponse resultado del recambio.
type ReplaceResponse struct {
	ScrappedLotID string `json:"scrapped_lot_id"`
	DeployedLotID string `json:"deployed_lot_id"`
}

// ReserveRequest body para POST /api/lots/:id/reserve.
type ReserveRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	DocumentID string          `json:"document_id"`
}

// FulfillLine línea de una solicitud de despacho (cantidad requerida por producto).
type FulfillLine struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// FulfillRequest body para POST /api/fulfillments.
type FulfillRequest struct {
	DocumentID string        `json:"document_id"`
	SiteID     string        `json:"site_id"`
	Lines      []FulfillLine `json:"lines"`
}

// FulfillLineResult resultado por línea: despachado vs pendiente.
type FulfillLineResult struct {
	ProductID      string          `json:"product_id"`
	Requested      decimal.Decimal `json:"requested"`
	Shipped        decimal.Decimal `json:"shipped"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	DeployedLotIDs []string        `json:"deployed_lot_ids"`
}

// FulfillResponse resultado del despacho. Partial indica que alguna línea quedó corta;
// el caller decide si acepta el envío parcial o genera una solicitud de abastecimiento.
type FulfillResponse struct {
	DocumentID string              `json:"document_id"`
	Partial    bool                `json:"partial"`
	Lines      []FulfillLineResult `json:"lines"`
}

// LotResponse representación HTTP de un lote.
type LotResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	SerialNumber          *string         `json:"serial_number,omitempty"`
	Quantity              decimal.Decimal `json:"quantity"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	Status                string          `json:"status"`
	SiteID                *string         `json:"site_id,omitempty"`
	ReservedForDocumentID *string         `json:"reserved_for_document_id,omitempty"`
	WarrantyStart         *time.Time      `json:"warranty_start,omitempty"`
	WarrantyEnd           *time.Time      `json:"warranty_end,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	DeletedAt             *time.Time      `json:"deleted_at,omitempty"`
}

// LotListResponse listado paginado de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// HistoryEntryResponse representación HTTP de una entrada de historial.
type HistoryEntryResponse struct {
	ID           string          `json:"id"`
	LotID        string          `json:"lot_id"`
	ActionType   string          `json:"action_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	FromSiteID   *string         `json:"from_site_id,omitempty"`
	ToSiteID     *string         `json:"to_site_id,omitempty"`
	RelatedLotID *string         `json:"related_lot_id,omitempty"`
	DocumentID   *string         `json:"document_id,omitempty"`
	ActorID      string          `json:"actor_id,omitempty"`
	Comment      string          `json:"comment,omitempty"`
	DocumentTS   time.Time       `json:"document_ts"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReplayResponse estado reconstruido de un lote desde su historial.
type ReplayResponse struct {
	LotID    string          `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Status   string          `json:"status"`
	Deleted  bool            `json:"deleted"`
}
