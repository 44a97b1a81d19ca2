package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductionHandler disponibilidad de recetas, planes de producción y su ejecución (protegido).
type ProductionHandler struct {
	availability *production.AvailabilityUseCase
	plans        *production.PlanUseCase
	execution    *production.ExecutionUseCase
}

// NewProductionHandler construye el handler.
func NewProductionHandler(availability *production.AvailabilityUseCase, plans *production.PlanUseCase, execution *production.ExecutionUseCase) *ProductionHandler {
	return &ProductionHandler{availability: availability, plans: plans, execution: execution}
}

// quantityFromQuery lee quantity y unit (por defecto g) del query string.
func quantityFromQuery(c *fiber.Ctx) (decimal.Decimal, string, error) {
	qty, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return decimal.Zero, "", err
	}
	return qty, c.Query("unit", entity.UnitGrams), nil
}

// CheckAvailability godoc
// @Summary      Verificar disponibilidad de stock para producir una receta
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID de la receta"
// @Param        quantity  query  number  true   "Cantidad a producir"
// @Param        unit      query  string  false  "g, kg o un"  default(g)
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id}/availability [get]
func (h *ProductionHandler) CheckAvailability(c *fiber.Ctx) error {
	qty, unit, err := quantityFromQuery(c)
	if err != nil {
		return badRequest(c, "VALIDATION", "quantity debe ser numérico")
	}
	res, err := h.availability.CheckForRecipe(c.UserContext(), c.Params("id"), qty, unit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAvailabilityResponse(res))
}

// Breakdown árbol de requerimientos de la receta para diagnóstico.
func (h *ProductionHandler) Breakdown(c *fiber.Ctx) error {
	qty, unit, err := quantityFromQuery(c)
	if err != nil {
		return badRequest(c, "VALIDATION", "quantity debe ser numérico")
	}
	bd, err := h.availability.Breakdown(c.UserContext(), c.Params("id"), qty, unit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBreakdownResponse(bd))
}

// Schedule godoc
// @Summary      Programar plan de producción
// @Description  Verifica disponibilidad. Con faltantes exige confirm_shortage=true y guarda el registro
//
//	de disponibilidad con el usuario que confirmó.
//
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SchedulePlanRequest  true  "Receta, cantidad y unidad"
// @Success      201   {object}  dto.ScheduleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ShortageConfirmationResponse
// @Router       /api/production-plans [post]
func (h *ProductionHandler) Schedule(c *fiber.Ctx) error {
	var in dto.SchedulePlanRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	ctx := c.UserContext()
	availability, err := h.availability.CheckForRecipe(ctx, in.RecipeID, in.QuantityInUnits, in.UnitOfMeasure)
	if err != nil {
		return writeError(c, err)
	}
	if availability.Status != entity.AvailabilitySufficient && !in.ConfirmShortage {
		return c.Status(fiber.StatusConflict).JSON(dto.ShortageConfirmationResponse{
			Code:         "SHORTAGE_UNCONFIRMED",
			Message:      "stock insuficiente: reenviar con confirm_shortage=true para programar de todos modos",
			Availability: toAvailabilityResponse(availability),
		})
	}
	userID := GetUserID(c)
	res, err := h.plans.SchedulePlan(ctx, production.SchedulePlanInput{
		RecipeID:        in.RecipeID,
		QuantityInUnits: in.QuantityInUnits,
		UnitOfMeasure:   in.UnitOfMeasure,
		Status:          in.Status,
		ScheduledFor:    in.ScheduledFor,
		Notes:           in.Notes,
		CreatedBy:       userID,
	}, availability, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ScheduleResponse{
		Plan:   toPlanResponse(res.Plan),
		Record: toRecordResponse(res.Record),
	})
}

func (h *ProductionHandler) GetPlan(c *fiber.Ctx) error {
	plan, err := h.plans.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

// ListPlans godoc
// @Summary      Listar planes
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        status            query  string  false  "Filtrar por estado"
// @Param        include_archived  query  bool    false  "Incluir archivados"
// @Param        limit             query  int     false  "Límite"  default(50)
// @Param        offset            query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ProductionPlanListResponse
// @Router       /api/production-plans [get]
func (h *ProductionHandler) ListPlans(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !entity.IsValidPlanStatus(status) {
		return badRequest(c, "VALIDATION", "status desconocido")
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset", 0)}
	page.Normalize(50, true)
	list, err := h.plans.List(c.UserContext(), status, c.QueryBool("include_archived", false), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ProductionPlanResponse, len(list))
	for i, p := range list {
		items[i] = toPlanResponse(p)
	}
	return c.JSON(dto.ProductionPlanListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// TransitionStatus cambios manuales de estado: programar o cancelar.
func (h *ProductionHandler) TransitionStatus(c *fiber.Ctx) error {
	var in dto.TransitionPlanRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	plan, err := h.plans.TransitionStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

func (h *ProductionHandler) Archive(c *fiber.Ctx) error {
	plan, err := h.plans.Archive(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

func (h *ProductionHandler) Start(c *fiber.Ctx) error {
	plan, err := h.execution.StartProductionPlanExecution(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

// Complete godoc
// @Summary      Completar plan consumiendo stock
// @Description  Descuenta de cada ingrediente lo disponible hasta lo requerido, registra divergencias
//
//	por los faltantes y concilia el registro de disponibilidad.
//
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.CompletionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/production-plans/{id}/complete [post]
func (h *ProductionHandler) Complete(c *fiber.Ctx) error {
	res, err := h.execution.CompleteProductionPlanWithConsumption(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toCompletionResponse(res))
}

func (h *ProductionHandler) ListDivergences(c *fiber.Ctx) error {
	list, err := h.plans.ListDivergences(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDivergenceResponses(list))
}

func (h *ProductionHandler) GetAvailabilityRecord(c *fiber.Ctx) error {
	rec, err := h.plans.GetAvailabilityRecord(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}
