package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stockledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del ledger y de la proyección de stock.
type StockHandler struct {
	guard   *stockledger.MovementGuardUseCase
	queries *stockledger.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(guard *stockledger.MovementGuardUseCase, queries *stockledger.StockQueryUseCase) *StockHandler {
	return &StockHandler{guard: guard, queries: queries}
}

// RecordAdjustment godoc
// @Summary      Registrar ajuste manual de inventario
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "product_id, movement_kind (ADJUSTMENT_IN|ADJUSTMENT_OUT), quantity"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RecordAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	kind, err := entity.ParseMovementKind(in.MovementKind)
	if err != nil || (kind != entity.KindAdjustmentIn && kind != entity.KindAdjustmentOut) {
		return respondError(c, fiber.StatusBadRequest, "VALIDATION", "movement_kind debe ser ADJUSTMENT_IN o ADJUSTMENT_OUT")
	}
	movement, stock, err := h.guard.RecordAdjustment(c.Context(), stockledger.AdjustmentInput{
		ProductID:    in.ProductID,
		Kind:         kind,
		Quantity:     in.Quantity,
		MovementDate: derefTime(in.MovementDate),
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResult(movement, stock))
}

// RecordReceipt godoc
// @Summary      Registrar recepción de compra (adaptador de compras)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordReceiptRequest  true  "product_id, quantity, source_id/source_item_id opcionales"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/receipts [post]
func (h *StockHandler) RecordReceipt(c *fiber.Ctx) error {
	var in dto.RecordReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	movement, stock, err := h.guard.RecordPurchaseReceipt(c.Context(), receiptInput(in))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResult(movement, stock))
}

// RecordReservation godoc
// @Summary      Reservar disponible para una venta confirmada
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordReceiptRequest  true  "product_id, quantity, source_id/source_item_id opcionales"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations [post]
func (h *StockHandler) RecordReservation(c *fiber.Ctx) error {
	var in dto.RecordReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	movement, stock, err := h.guard.RecordSaleReservation(c.Context(), receiptInput(in))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResult(movement, stock))
}

// ReleaseReservation godoc
// @Summary      Liberar una reserva (orden cancelada o reducida)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordReceiptRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations/release [post]
func (h *StockHandler) ReleaseReservation(c *fiber.Ctx) error {
	var in dto.RecordReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	movement, stock, err := h.guard.ReleaseSaleReservation(c.Context(), receiptInput(in))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResult(movement, stock))
}

// RecordShipment godoc
// @Summary      Registrar despacho de venta
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordShipmentRequest  true  "product_id, quantity, from_reservation"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/shipments [post]
func (h *StockHandler) RecordShipment(c *fiber.Ctx) error {
	var in dto.RecordShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	movement, stock, err := h.guard.RecordSaleShipment(c.Context(), stockledger.ShipmentInput{
		ProductID:       in.ProductID,
		SourceID:        in.SourceID,
		SourceItemID:    in.SourceItemID,
		Quantity:        in.Quantity,
		FromReservation: in.FromReservation,
		MovementDate:    derefTime(in.MovementDate),
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResult(movement, stock))
}

// ListMovements godoc
// @Summary      Consultar el ledger de movimientos
// @Tags         stock
// @Produce      json
// @Param        product_id         query  string  false  "IDs separados por coma"
// @Param        movement_kind      query  string  false  "PURCHASE_RECEIPT|SALE_SHIPMENT|ADJUSTMENT_IN|ADJUSTMENT_OUT"
// @Param        movement_source    query  string  false  "PURCHASE_ORDER|SALES_ORDER|ADJUSTMENT"
// @Param        movement_date_gte  query  string  false  "RFC3339"
// @Param        movement_date_lte  query  string  false  "RFC3339"
// @Param        sort               query  string  false  "movement_id|movement_date, prefijo - para descendente"
// @Success      200  {object}  dto.PageResponse[dto.StockMovementResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	filter, err := parseMovementFilter(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "VALIDATION", "parámetros de consulta inválidos")
	}
	movements, pageInfo, err := h.queries.ListMovements(c.Context(), filter)
	if err != nil {
		return mapDomainError(c, err)
	}
	content := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		content = append(content, dto.ToMovementResponse(m))
	}
	return c.JSON(dto.PageResponse[dto.StockMovementResponse]{Content: content, PageInfo: pageInfo})
}

// GetMovement godoc
// @Summary      Consultar un movimiento por ID
// @Tags         stock
// @Produce      json
// @Param        id  path  int  true  "movement_id"
// @Success      200  {object}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [get]
func (h *StockHandler) GetMovement(c *fiber.Ctx) error {
	movementID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "VALIDATION", "id inválido")
	}
	movement, err := h.queries.GetMovement(c.Context(), movementID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(movement))
}

// ListCurrentStock godoc
// @Summary      Consultar la proyección de stock actual
// @Tags         stock
// @Produce      json
// @Param        product_id     query  string  false  "IDs separados por coma"
// @Param        available_gte  query  number  false  "disponible mínimo"
// @Param        available_lte  query  number  false  "disponible máximo"
// @Param        sort           query  string  false  "product_id|quantity_on_hand|quantity_reserved|quantity_available|last_updated"
// @Success      200  {object}  dto.PageResponse[dto.CurrentStockResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) ListCurrentStock(c *fiber.Ctx) error {
	filter, err := parseStockFilter(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "VALIDATION", "parámetros de consulta inválidos")
	}
	stocks, pageInfo, err := h.queries.ListCurrentStock(c.Context(), filter)
	if err != nil {
		return mapDomainError(c, err)
	}
	content := make([]dto.CurrentStockResponse, 0, len(stocks))
	for _, s := range stocks {
		content = append(content, dto.ToCurrentStockResponse(s))
	}
	return c.JSON(dto.PageResponse[dto.CurrentStockResponse]{Content: content, PageInfo: pageInfo})
}

// GetAvailable godoc
// @Summary      Consultar el disponible de un producto
// @Description  Devuelve 0 si el producto aún no registra movimientos.
// @Tags         stock
// @Produce      json
// @Param        productID  path  int  true  "product_id"
// @Success      200  {object}  map[string]any
// @Router       /api/stock/{productID}/available [get]
func (h *StockHandler) GetAvailable(c *fiber.Ctx) error {
	productID, err := strconv.ParseInt(c.Params("productID"), 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "VALIDATION", "product_id inválido")
	}
	available, err := h.guard.GetAvailableQuantity(c.Context(), productID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "quantity_available": available})
}

// ── Helpers de parsing de query params ───────────────────────────────────────

func receiptInput(in dto.RecordReceiptRequest) stockledger.ReceiptInput {
	return stockledger.ReceiptInput{
		ProductID:    in.ProductID,
		SourceID:     in.SourceID,
		SourceItemID: in.SourceItemID,
		Quantity:     in.Quantity,
		MovementDate: derefTime(in.MovementDate),
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func parseMovementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	var (
		f   repository.MovementFilter
		err error
	)
	if f.ProductIDs, err = parseIDList(c.Query("product_id")); err != nil {
		return f, err
	}
	if raw := c.Query("movement_kind"); raw != "" {
		kind, err := entity.ParseMovementKind(raw)
		if err != nil {
			return f, err
		}
		f.Kind = &kind
	}
	if raw := c.Query("movement_source"); raw != "" {
		source, err := entity.ParseMovementSource(raw)
		if err != nil {
			return f, err
		}
		f.Source = &source
	}
	if f.SourceID, err = parseOptionalID(c.Query("source_id")); err != nil {
		return f, err
	}
	if f.SourceItemID, err = parseOptionalID(c.Query("source_item_id")); err != nil {
		return f, err
	}
	if f.MovementDateGte, err = parseOptionalTime(c.Query("movement_date_gte")); err != nil {
		return f, err
	}
	if f.MovementDateLte, err = parseOptionalTime(c.Query("movement_date_lte")); err != nil {
		return f, err
	}
	f.Sort = c.Query("sort")
	if f.Page, f.Size, err = parsePage(c); err != nil {
		return f, err
	}
	return f, nil
}

func parseStockFilter(c *fiber.Ctx) (repository.StockFilter, error) {
	var (
		f   repository.StockFilter
		err error
	)
	if f.ProductIDs, err = parseIDList(c.Query("product_id")); err != nil {
		return f, err
	}
	if f.AvailableGte, err = parseOptionalDecimal(c.Query("available_gte")); err != nil {
		return f, err
	}
	if f.AvailableLte, err = parseOptionalDecimal(c.Query("available_lte")); err != nil {
		return f, err
	}
	if f.OnHandGte, err = parseOptionalDecimal(c.Query("on_hand_gte")); err != nil {
		return f, err
	}
	if f.OnHandLte, err = parseOptionalDecimal(c.Query("on_hand_lte")); err != nil {
		return f, err
	}
	if f.UpdatedAfter, err = parseOptionalTime(c.Query("updated_after")); err != nil {
		return f, err
	}
	f.Sort = c.Query("sort")
	if f.Page, f.Size, err = parsePage(c); err != nil {
		return f, err
	}
	return f, nil
}

func parsePage(c *fiber.Ctx) (int, int, error) {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 0)
	if page < 0 || size < 0 {
		return 0, 0, strconv.ErrRange
	}
	return page, size, nil
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOptionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalDecimal(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
