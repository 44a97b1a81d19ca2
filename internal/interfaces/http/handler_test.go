package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Produccion-api/internal/interfaces/http"
)

type apiFixture struct {
	app    *fiber.App
	store  *memory.Store
	ledger *inventory.AdjustStockUseCase
}

// newAPI arma la aplicación completa sobre el store en memoria.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	recipes := memory.NewRecipeRepository(s)
	stock := memory.NewStockItemRepository(s)
	alerts := memory.NewStockAlertRepository(s)
	plans := memory.NewProductionPlanRepository(s)
	prodTx := memory.NewProductionTxRunner(s)

	ledger := inventory.NewAdjustStockUseCase(memory.NewInventoryTxRunner(s), nil, nil)
	deps := apphttp.RouterDeps{
		StockUC:         inventory.NewStockUseCase(stock, memory.NewStockMovementRepository(s), alerts, products),
		AdjustStockUC:   ledger,
		ReplenishmentUC: inventory.NewReplenishmentUseCase(alerts, stock, products),
		AvailabilityUC:  production.NewAvailabilityUseCase(recipes, products, stock, nil),
		PlanUC: production.NewPlanUseCase(prodTx, plans, memory.NewAvailabilityRecordRepository(s),
			memory.NewDivergenceRepository(s), recipes, nil),
		ExecutionUC: production.NewExecutionUseCase(prodTx, plans, recipes, products, stock, ledger, nil),
		JWTSecret:   testJWTSecret,
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return &apiFixture{app: app, store: s, ledger: ledger}
}

// seedMilk leche con 1000 g a 2000/kg y la receta arequipe (rinde 1000 g con 800 g de leche).
func (f *apiFixture) seedMilk(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, memory.NewProductRepository(f.store).Create(ctx, &entity.Product{ID: "leche", Name: "Leche", TrackInventory: true}))
	require.NoError(t, memory.NewStockItemRepository(f.store).Create(ctx, &entity.StockItem{ID: "si-leche", ProductID: "leche", MinimumQuantityInGrams: decimal.NewFromInt(200)}))
	cost := decimal.NewFromInt(2000)
	_, err := f.ledger.AdjustStockLevel(ctx, inventory.AdjustStockInput{
		StockItemID: "si-leche", QuantityInGrams: decimal.NewFromInt(1000),
		Type: entity.MovementTypeInitial, TotalCost: &cost, PerformedBy: "seed",
	})
	require.NoError(t, err)
	require.NoError(t, memory.NewRecipeRepository(f.store).Create(ctx, &entity.Recipe{
		ID: "arequipe", Name: "Arequipe", YieldInGrams: decimal.NewFromInt(1000),
		Ingredients: []entity.RecipeIngredient{
			{ReferenceID: "leche", Kind: entity.IngredientKindProduct, QuantityInGrams: decimal.NewFromInt(800)},
		},
	}))
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

func TestAPI_FlujoCompletoConFaltante(t *testing.T) {
	f := newAPI(t)
	f.seedMilk(t)

	// 2 kg requieren 1600 g de leche y solo hay 1000 g
	var av dto.AvailabilityResponse
	resp := f.do(t, http.MethodGet, "/api/recipes/arequipe/availability?quantity=2&unit=kg", apphttp.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &av)
	assert.Equal(t, entity.AvailabilityInsufficient, av.Status)
	assert.True(t, av.TotalShortageInGrams.Equal(decimal.NewFromInt(600)))

	req := dto.SchedulePlanRequest{
		RecipeID: "arequipe", QuantityInUnits: decimal.NewFromInt(2), UnitOfMeasure: entity.UnitKilograms,
		Status: entity.PlanStatusScheduled,
	}
	resp = f.do(t, http.MethodPost, "/api/production-plans", apphttp.RoleJefeProduccion, req)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var unconfirmed dto.ShortageConfirmationResponse
	decode(t, resp, &unconfirmed)
	assert.Equal(t, "SHORTAGE_UNCONFIRMED", unconfirmed.Code)

	req.ConfirmShortage = true
	resp = f.do(t, http.MethodPost, "/api/production-plans", apphttp.RoleJefeProduccion, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var scheduled dto.ScheduleResponse
	decode(t, resp, &scheduled)
	require.NotNil(t, scheduled.Record)
	assert.Equal(t, testUserID, scheduled.Record.ConfirmedBy)
	planID := scheduled.Plan.ID

	resp = f.do(t, http.MethodPost, "/api/production-plans/"+planID+"/start", apphttp.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/production-plans/"+planID+"/complete", apphttp.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var done dto.CompletionResponse
	decode(t, resp, &done)
	assert.Equal(t, entity.PlanStatusCompleted, done.Plan.Status)
	require.NotNil(t, done.Plan.ActualQuantityInUnits)
	assert.True(t, done.Plan.ActualQuantityInUnits.Equal(decimal.NewFromFloat(1.25)), "actual %s", done.Plan.ActualQuantityInUnits)
	require.Len(t, done.Divergences, 1)
	assert.Equal(t, entity.DivergenceSeverityHigh, done.Divergences[0].Severity)
	require.NotNil(t, done.Record)
	assert.Equal(t, entity.AvailabilityReconciled, done.Record.Status)

	var item dto.StockItemResponse
	resp = f.do(t, http.MethodGet, "/api/stock-items/si-leche", apphttp.RoleOperario, nil)
	decode(t, resp, &item)
	assert.True(t, item.CurrentQuantityInGrams.IsZero())

	var divergences []dto.DivergenceResponse
	resp = f.do(t, http.MethodGet, "/api/production-plans/"+planID+"/divergences", apphttp.RoleOperario, nil)
	decode(t, resp, &divergences)
	assert.Len(t, divergences, 1)

	resp = f.do(t, http.MethodPost, "/api/production-plans/"+planID+"/complete", apphttp.RoleOperario, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, resp))
}

func TestAPI_AjustesDeStock(t *testing.T) {
	f := newAPI(t)
	f.seedMilk(t)

	cost := decimal.NewFromInt(500)
	resp := f.do(t, http.MethodPost, "/api/stock-items/si-leche/adjustments", apphttp.RoleOperario, dto.AdjustStockRequest{
		Type: entity.MovementTypeIncrement, QuantityInGrams: decimal.NewFromInt(250), TotalCost: &cost,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var adjusted dto.AdjustStockResponse
	decode(t, resp, &adjusted)
	assert.True(t, adjusted.Item.CurrentQuantityInGrams.Equal(decimal.NewFromInt(1250)))
	assert.Equal(t, testUserID, adjusted.Movement.PerformedBy)

	resp = f.do(t, http.MethodPost, "/api/stock-items/si-leche/adjustments", apphttp.RoleOperario, dto.AdjustStockRequest{
		Type: entity.MovementTypeDecrement, QuantityInGrams: decimal.NewFromInt(5000),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = f.do(t, http.MethodPost, "/api/stock-items/si-leche/adjustments", apphttp.RoleOperario, dto.AdjustStockRequest{
		Type: entity.MovementTypeDecrement,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))

	resp = f.do(t, http.MethodPost, "/api/stock-items/si-leche/adjustments", apphttp.RoleOperario, dto.AdjustStockRequest{
		Type: entity.MovementTypeIncrement, QuantityInGrams: decimal.NewFromInt(10),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "entradas sin costo total")
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/stock-items/no-existe/adjustments", apphttp.RoleOperario, dto.AdjustStockRequest{
		Type: entity.MovementTypeDecrement, QuantityInGrams: decimal.NewFromInt(1),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	var movs []dto.StockMovementResponse
	resp = f.do(t, http.MethodGet, "/api/stock-items/si-leche/movements?limit=10", apphttp.RoleOperario, nil)
	decode(t, resp, &movs)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeIncrement, movs[0].Type)
}

func TestAPI_CorreccionSoloAdmin(t *testing.T) {
	f := newAPI(t)
	f.seedMilk(t)
	body := dto.RecordMovementRequest{
		Type: entity.MovementTypeAdjustment, QuantityInGrams: decimal.NewFromInt(100), ResultingQuantityInGrams: decimal.NewFromInt(100),
	}

	resp := f.do(t, http.MethodPost, "/api/stock-items/si-leche/movements", apphttp.RoleOperario, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/stock-items/si-leche/movements", apphttp.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res dto.AdjustStockResponse
	decode(t, resp, &res)
	assert.True(t, res.Item.CurrentQuantityInGrams.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, inventory.AlertOpened, res.AlertTransition)

	var alerts []dto.StockAlertResponse
	resp = f.do(t, http.MethodGet, "/api/alerts", apphttp.RoleOperario, nil)
	decode(t, resp, &alerts)
	require.Len(t, alerts, 1)

	resp = f.do(t, http.MethodPost, "/api/alerts/"+alerts[0].ID+"/acknowledge", apphttp.RoleJefeProduccion, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acked dto.StockAlertResponse
	decode(t, resp, &acked)
	assert.Equal(t, entity.AlertStatusAcknowledged, acked.Status)
}

func TestAPI_RecetaConCicloRetorna422(t *testing.T) {
	f := newAPI(t)
	ctx := context.Background()
	recipes := memory.NewRecipeRepository(f.store)
	sub := func(id string) entity.RecipeIngredient {
		return entity.RecipeIngredient{ReferenceID: id, Kind: entity.IngredientKindRecipe, QuantityInGrams: decimal.NewFromInt(100)}
	}
	require.NoError(t, recipes.Create(ctx, &entity.Recipe{ID: "a", YieldInGrams: decimal.NewFromInt(100), Ingredients: []entity.RecipeIngredient{sub("b")}}))
	require.NoError(t, recipes.Create(ctx, &entity.Recipe{ID: "b", YieldInGrams: decimal.NewFromInt(100), Ingredients: []entity.RecipeIngredient{sub("a")}}))

	resp := f.do(t, http.MethodGet, "/api/recipes/a/availability?quantity=100", apphttp.RoleOperario, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "RECIPE_CYCLE", errorCode(t, resp))

	resp = f.do(t, http.MethodGet, "/api/recipes/a/availability?quantity=abc", apphttp.RoleOperario, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_BreakdownYListados(t *testing.T) {
	f := newAPI(t)
	f.seedMilk(t)

	var bd dto.BreakdownResponse
	resp := f.do(t, http.MethodGet, "/api/recipes/arequipe/breakdown?quantity=500", apphttp.RoleOperario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &bd)
	require.Len(t, bd.Requirements, 1)
	assert.True(t, bd.Requirements[0].RequiredInGrams.Equal(decimal.NewFromInt(400)))
	require.NotNil(t, bd.Tree)
	assert.Len(t, bd.Tree.Children, 1)

	resp = f.do(t, http.MethodPost, "/api/production-plans", apphttp.RoleJefeProduccion, dto.SchedulePlanRequest{
		RecipeID: "arequipe", QuantityInUnits: decimal.NewFromInt(500), UnitOfMeasure: entity.UnitGrams,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var scheduled dto.ScheduleResponse
	decode(t, resp, &scheduled)
	assert.Equal(t, entity.PlanStatusDraft, scheduled.Plan.Status)
	assert.Nil(t, scheduled.Record)

	resp = f.do(t, http.MethodGet, "/api/production-plans/"+scheduled.Plan.ID+"/availability-record", apphttp.RoleOperario, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/production-plans/"+scheduled.Plan.ID+"/status", apphttp.RoleJefeProduccion,
		dto.TransitionPlanRequest{Status: entity.PlanStatusCancelled})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var list dto.ProductionPlanListResponse
	resp = f.do(t, http.MethodGet, "/api/production-plans?status=cancelled", apphttp.RoleOperario, nil)
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 50, list.Page.Limit)

	resp = f.do(t, http.MethodGet, "/api/production-plans?status=otro", apphttp.RoleOperario, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/production-plans", apphttp.RoleOperario, dto.SchedulePlanRequest{
		RecipeID: "arequipe", QuantityInUnits: decimal.NewFromInt(1), UnitOfMeasure: entity.UnitGrams,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "operario no programa planes")
	resp.Body.Close()
}

func TestAPI_HealthYMetrics(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/production-plans", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
