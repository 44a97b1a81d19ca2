package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
)

// StockHandler ítems de stock, ledger de movimientos, alertas y reposición (protegido).
type StockHandler struct {
	stock         *inventory.StockUseCase
	adjust        *inventory.AdjustStockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *inventory.StockUseCase, adjust *inventory.AdjustStockUseCase, replenishment *inventory.ReplenishmentUseCase) *StockHandler {
	return &StockHandler{stock: stock, adjust: adjust, replenishment: replenishment}
}

// Create godoc
// @Summary      Registrar ítem de stock de un producto
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockItemRequest  true  "product_id y mínimo en gramos"
// @Success      201   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-items [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	item, err := h.stock.RegisterStockItem(c.UserContext(), in.ProductID, in.MinimumQuantityInGrams)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockItemResponse(item))
}

// GetByID godoc
// @Summary      Obtener ítem de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-items/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.stock.GetStockItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockItemResponse(item))
}

// Adjust godoc
// @Summary      Ajustar saldo (increment, decrement, adjustment, initial)
// @Description  Atómico por ítem. Recalcula el costo promedio en entradas y evalúa la alerta.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ítem"
// @Param        body  body  dto.AdjustStockRequest  true  "Tipo, cantidad en gramos y costo total en entradas"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock-items/{id}/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.adjust.AdjustStockLevel(c.UserContext(), inventory.AdjustStockInput{
		StockItemID:     c.Params("id"),
		QuantityInGrams: in.QuantityInGrams,
		Type:            in.Type,
		PerformedBy:     GetUserID(c),
		TotalCost:       in.TotalCost,
		Reference:       in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustResponse(res))
}

// RecordMovement corrección administrativa: el saldo resultante lo fija el cuerpo.
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.adjust.RecordStockMovement(c.UserContext(), inventory.RecordMovementInput{
		StockItemID:              c.Params("id"),
		Type:                     in.Type,
		QuantityInGrams:          in.QuantityInGrams,
		ResultingQuantityInGrams: in.ResultingQuantityInGrams,
		UnitCost:                 in.UnitCost,
		TotalCost:                in.TotalCost,
		PerformedBy:              GetUserID(c),
		Reference:                in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustResponse(res))
}

// ListMovements godoc
// @Summary      Movimientos del ítem, más recientes primero
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.StockMovementResponse
// @Router       /api/stock-items/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.stock.ListMovements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockMovementResponse, len(list))
	for i, m := range list {
		out[i] = toMovementResponse(m)
	}
	return c.JSON(out)
}

func (h *StockHandler) ListAlerts(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.stock.ListLiveAlerts(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockAlertResponse, len(list))
	for i, a := range list {
		out[i] = toAlertResponse(a)
	}
	return c.JSON(out)
}

func (h *StockHandler) AcknowledgeAlert(c *fiber.Ctx) error {
	alert, err := h.stock.AcknowledgeAlert(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAlertResponse(alert))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Ítems bajo su mínimo con la cantidad sugerida de pedido, críticos primero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/replenishment-list [get]
func (h *StockHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// pageFromQuery limit/offset recortados a dto.MaxPageLimit.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.Normalize(20, false)
	return p
}
