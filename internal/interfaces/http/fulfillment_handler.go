package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/casaintegra/lotes-api/internal/application/dto"
	"github.com/casaintegra/lotes-api/internal/application/inventory"
)

// FulfillmentHandler maneja el despacho de documentos de salida.
type FulfillmentHandler struct {
	uc *inventory.FulfillmentUseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *inventory.FulfillmentUseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// Fulfill godoc
// @Summary      Despachar un documento de salida
// @Description  Por cada línea consume primero los lotes reservados para el documento y
//
//	después stock libre del producto, más antiguos primero. El faltante se reporta
//	por línea en el resultado (partial=true), nunca como error.
//
// @Tags         fulfillments
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del operario"
// @Param        body  body  dto.FulfillRequest  true  "document_id, site_id y líneas"
// @Success      200   {object}  dto.FulfillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fulfillments [post]
func (h *FulfillmentHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]inventory.FulfillLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.FulfillLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	out, err := h.uc.Fulfill(c.Context(), inventory.FulfillInput{
		DocumentID: in.DocumentID,
		SiteID:     in.SiteID,
		ActorID:    actorID(c),
		Lines:      lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.FulfillResponse{DocumentID: out.DocumentID, Partial: out.Partial}
	for _, l := range out.Lines {
		resp.Lines = append(resp.Lines, dto.FulfillLineResult{
			ProductID:      l.ProductID,
			Requested:      l.Requested,
			Shipped:        l.Shipped,
			Outstanding:    l.Outstanding,
			DeployedLotIDs: l.DeployedLotIDs,
		})
	}
	return c.JSON(resp)
}
