package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/casaintegra/lotes-api/internal/application/dto"
	"github.com/casaintegra/lotes-api/internal/application/inventory"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// LotHandler maneja las peticiones HTTP del ciclo de vida de lotes.
type LotHandler struct {
	reception   *inventory.ReceptionUseCase
	deployment  *inventory.DeploymentUseCase
	returns     *inventory.ReturnUseCase
	replacement *inventory.ReplacementUseCase
	reservation *inventory.ReservationUseCase
	query       *inventory.QueryUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(
	reception *inventory.ReceptionUseCase,
	deployment *inventory.DeploymentUseCase,
	returns *inventory.ReturnUseCase,
	replacement *inventory.ReplacementUseCase,
	reservation *inventory.ReservationUseCase,
	query *inventory.QueryUseCase,
) *LotHandler {
	return &LotHandler{
		reception:   reception,
		deployment:  deployment,
		returns:     returns,
		replacement: replacement,
		reservation: reservation,
		query:       query,
	}
}

// Receive godoc
// @Summary      Recibir mercancía
// @Description  Crea uno o varios lotes IN_STOCK a partir de una recepción. Con serie
//
//	la cantidad debe ser 1; con split_into_units se crean N lotes unitarios.
//
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del operario"
// @Param        body  body  dto.ReceiveRequest  true  "product_id, quantity, unit_cost, serial_number opcional"
// @Success      201   {object}  map[string][]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/receive [post]
func (h *LotHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ids, err := h.reception.Receive(c.Context(), inventory.ReceiveInput{
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCost,
		SerialNumber:   in.SerialNumber,
		SplitIntoUnits: in.SplitIntoUnits,
		ActorID:        actorID(c),
		Comment:        in.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lot_ids": ids})
}

// AssignSerial godoc
// @Summary      Asignar serie a un lote unitario
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.AssignSerialRequest  true  "serial_number"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/serial [post]
func (h *LotHandler) AssignSerial(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.AssignSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.reception.AssignSerial(c.Context(), id, in.SerialNumber, actorID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "serie asignada"})
}

// Deploy godoc
// @Summary      Desplegar cantidad de un lote a un objeto
// @Description  Extrae quantity del lote (split si es parcial), lo marca DEPLOYED en el
//
//	objeto con su ventana de garantía y registra la entrada DEPLOY.
//
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del técnico"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.DeployRequest  true  "quantity, site_id, serial_number opcional"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/deploy [post]
func (h *LotHandler) Deploy(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.DeployRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	deployedID, err := h.deployment.Deploy(c.Context(), inventory.DeployInput{
		LotID:        id,
		Quantity:     in.Quantity,
		SiteID:       in.SiteID,
		SerialNumber: in.SerialNumber,
		ActorID:      actorID(c),
		Comment:      in.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deployed_lot_id": deployedID})
}

// DeployBatch godoc
// @Summary      Desplegar un carrito completo
// @Description  Despliega varias líneas a un mismo objeto en una sola transacción.
//
//	Para productos con serie crea un lote por cada serie suministrada; si faltan
//	series queda un lote residual sin serie y se informa en warnings.
//
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del técnico"
// @Param        body  body  dto.DeployBatchRequest  true  "site_id e items"
// @Success      200   {object}  dto.DeployBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/deploy-batch [post]
func (h *LotHandler) DeployBatch(c *fiber.Ctx) error {
	var in dto.DeployBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]inventory.BatchItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.BatchItem{LotID: it.LotID, Quantity: it.Quantity, Serials: it.Serials})
	}
	out, err := h.deployment.DeployBatch(c.Context(), inventory.DeployBatchInput{
		SiteID:  in.SiteID,
		ActorID: actorID(c),
		Items:   items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DeployBatchResponse{DeployedLotIDs: out.DeployedLotIDs, Warnings: out.Warnings})
}

// Return godoc
// @Summary      Devolver cantidad de un lote desplegado a stock
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del técnico"
// @Param        id    path  string  true  "ID del lote desplegado"
// @Param        body  body  dto.ReturnRequest  true  "quantity y reason (surplus, cancellation, wrong_item, repair)"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/return [post]
func (h *LotHandler) Return(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	returnedID, err := h.returns.ReturnToStock(c.Context(), inventory.ReturnInput{
		LotID:    id,
		Quantity: in.Quantity,
		Reason:   in.Reason,
		ActorID:  actorID(c),
		Comment:  in.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"returned_lot_id": returnedID})
}

// Replace godoc
// @Summary      Recambio de una unidad desplegada
// @Description  Chatarrea la unidad vieja y despliega la nueva al mismo objeto en una
//
//	sola transacción. El lote nuevo abre su propia ventana de garantía.
//
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del técnico"
// @Param        body  body  dto.ReplaceRequest  true  "old_lot_id, new_lot_id y cantidades"
// @Success      200   {object}  dto.ReplaceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/replace [post]
func (h *LotHandler) Replace(c *fiber.Ctx) error {
	var in dto.ReplaceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.replacement.Replace(c.Context(), inventory.ReplaceInput{
		OldLotID:    in.OldLotID,
		OldQuantity: in.OldQuantity,
		NewLotID:    in.NewLotID,
		NewQuantity: in.NewQuantity,
		Reason:      in.Reason,
		Comment:     in.Comment,
		ActorID:     actorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReplaceResponse{ScrappedLotID: out.ScrappedLotID, DeployedLotID: out.DeployedLotID})
}

// Reserve godoc
// @Summary      Reservar cantidad de un lote para un documento
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del operario"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.ReserveRequest  true  "quantity y document_id"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/reserve [post]
func (h *LotHandler) Reserve(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	reservedID, err := h.reservation.Reserve(c.Context(), inventory.ReserveInput{
		LotID:      id,
		Quantity:   in.Quantity,
		DocumentID: in.DocumentID,
		ActorID:    actorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reserved_lot_id": reservedID})
}

// Release godoc
// @Summary      Liberar la reserva de un lote
// @Tags         lots
// @Produce      json
// @Param        X-Actor-Id  header  string  false  "ID del operario"
// @Param        id   path  string  true  "ID del lote reservado"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/release [post]
func (h *LotHandler) Release(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.reservation.Release(c.Context(), id, actorID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva liberada"})
}

// List godoc
// @Summary      Listar lotes
// @Tags         lots
// @Produce      json
// @Param        product_id   query  string  false  "Filtrar por producto"
// @Param        status       query  string  false  "Filtrar por estado"
// @Param        site_id      query  string  false  "Filtrar por objeto"
// @Param        document_id  query  string  false  "Filtrar por documento de reserva"
// @Param        include_deleted  query  bool  false  "Incluir lotes agotados"
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	lots, err := h.query.ListLots(c.Context(), repository.LotFilter{
		ProductID:      c.Query("product_id"),
		Status:         c.Query("status"),
		SiteID:         c.Query("site_id"),
		DocumentID:     c.Query("document_id"),
		IncludeDeleted: c.QueryBool("include_deleted", false),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		items = append(items, toLotResponse(l))
	}
	return c.JSON(dto.LotListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	})
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         lots
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.query.GetLot(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLotResponse(lot))
}

// History godoc
// @Summary      Historial completo de un lote
// @Description  Incluye tanto las entradas propias como las de contraparte (splits
//
//	donde este lote fue el padre), en orden cronológico.
//
// @Tags         lots
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}   dto.HistoryEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/history [get]
func (h *LotHandler) History(c *fiber.Ctx) error {
	entries, err := h.query.LotHistory(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryResponse(e))
	}
	return c.JSON(out)
}

// Replay godoc
// @Summary      Reconstruir el estado de un lote desde su historial
// @Description  Auditoría: reproduce las entradas del historial y devuelve la cantidad
//
//	y el estado resultantes, que deben coincidir con la fila actual del lote.
//
// @Tags         lots
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.ReplayResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/replay [get]
func (h *LotHandler) Replay(c *fiber.Ctx) error {
	id := c.Params("id")
	replayed, err := h.query.ReplayLot(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReplayResponse{
		LotID:    id,
		Quantity: replayed.Quantity,
		Status:   replayed.Status,
		Deleted:  replayed.Deleted,
	})
}

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:                    l.ID,
		ProductID:             l.ProductID,
		SerialNumber:          l.SerialNumber,
		Quantity:              l.Quantity,
		UnitCost:              l.UnitCost,
		Status:                l.Status,
		SiteID:                l.SiteID,
		ReservedForDocumentID: l.ReservedForDocumentID,
		WarrantyStart:         l.WarrantyStart,
		WarrantyEnd:           l.WarrantyEnd,
		CreatedAt:             l.CreatedAt,
		DeletedAt:             l.DeletedAt,
	}
}

func toHistoryResponse(e *entity.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:           e.ID,
		LotID:        e.LotID,
		ActionType:   e.ActionType,
		Quantity:     e.Quantity,
		FromSiteID:   e.FromSiteID,
		ToSiteID:     e.ToSiteID,
		RelatedLotID: e.RelatedLotID,
		DocumentID:   e.DocumentID,
		ActorID:      e.ActorID,
		Comment:      e.Comment,
		DocumentTS:   e.DocumentTS,
		CreatedAt:    e.CreatedAt,
	}
}
