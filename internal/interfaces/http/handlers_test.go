package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fuel-tracker/internal/application/depletion"
	"github.com/jhoicas/fuel-tracker/internal/application/dto"
	"github.com/jhoicas/fuel-tracker/internal/application/resolution"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/lock"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/fuel-tracker/internal/interfaces/http"
)

// buildAPI arma el router completo sobre el store en memoria con un lote de 1000 L y dos órdenes.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Batches().Create(ctx, &entity.StockBatch{
		ID: "B1", ProductID: "DIESEL", DestinationID: "TERM-NORTE",
		TotalQuantity: decimal.NewFromInt(1000), QuantityRemaining: decimal.NewFromInt(1000),
		ReceivedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	for _, o := range []struct{ id, number, status string }{
		{"o1", "ORD12345", entity.OrderStatusLoading},
		{"o2", "ORD67890", entity.OrderStatusApproved},
	} {
		require.NoError(t, store.Orders().Create(ctx, &entity.LoadingOrder{
			ID: o.id, OrderNumber: o.number, Status: o.status,
			ProductID: "DIESEL", DestinationID: "TERM-NORTE",
			RequestedQuantity: decimal.NewFromInt(300),
		}))
	}

	ledger := depletion.NewLedger(store.TxRunner(), store.Orders(), store.Batches(), store.Depletions(), lock.NewLocalLocker(), nil)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Orchestrator: resolution.NewOrchestrator(store.Orders(), nil, nil, nil, nil),
		Ledger:       ledger,
		Transitions:  depletion.NewTransitionUseCase(store.Orders(), ledger, nil),
		JWTSecret:    testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestResolveHandler_Difuso(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/resolve", apphttp.RoleIntegration, `{"identifier":"ORD12354"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ResolveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ORD12345", out.Order.OrderNumber)
	assert.Equal(t, entity.MatchMethodLocalFuzzy, out.Match.Method)
	assert.Equal(t, "ORD12354", out.Match.OriginalIdentifier)
}

func TestResolveHandler_NoResuelto(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/resolve", apphttp.RoleIntegration, `{"identifier":"XQ98"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out dto.UnresolvedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "UNRESOLVED", out.Code)
	require.Len(t, out.Attempts, 2)
	assert.Equal(t, resolution.StageExact, out.Attempts[0].Stage)
}

func TestResolveHandler_FormatoInvalido(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/resolve", apphttp.RoleIntegration, `{"identifier":"12"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/resolve", apphttp.RoleIntegration, `{}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrderHandler_TransicionLoadedYCancelacion(t *testing.T) {
	app := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/orders/o1/transitions", apphttp.RoleDispatcher, `{"status":"LOADED"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res dto.TransitionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.NotNil(t, res.Plan)
	assert.True(t, res.Plan.Requested.Equal(decimal.NewFromInt(300)))

	resp = call(t, app, http.MethodGet, "/api/stock/available?product_id=DIESEL&destination_id=TERM-NORTE", apphttp.RoleIntegration, "")
	defer resp.Body.Close()
	var avail dto.AvailableDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&avail))
	assert.True(t, avail.Available.Equal(decimal.NewFromInt(700)))

	resp = call(t, app, http.MethodPost, "/api/orders/o1/transitions", apphttp.RoleDispatcher, `{"status":"CANCELLED"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/orders/o1/depletions", apphttp.RoleAdmin, "")
	defer resp.Body.Close()
	var list []dto.DepletionDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list)
}

func TestOrderHandler_TransicionInvalida(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/orders/o2/transitions", apphttp.RoleDispatcher, `{"status":"DELIVERED"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/orders/o2/transitions", apphttp.RoleDispatcher, `{"status":"VOLANDO"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrderHandler_AgotarYRevertir(t *testing.T) {
	app := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/orders/o2/depletions", apphttp.RoleDispatcher, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "una orden aprobada se agota con la transición a LOADED")

	resp = call(t, app, http.MethodPost, "/api/orders/o1/depletions", apphttp.RoleDispatcher, `{"quantity":"1200"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/orders/o1/depletions", apphttp.RoleDispatcher, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/orders/o1/depletions", apphttp.RoleDispatcher, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "segundo agotamiento de la misma orden")

	resp = call(t, app, http.MethodDelete, "/api/orders/o1/depletions", apphttp.RoleDispatcher, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo admin revierte")

	resp = call(t, app, http.MethodDelete, "/api/orders/o1/depletions", apphttp.RoleAdmin, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rev dto.ReversalSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rev))
	assert.True(t, rev.Total.Equal(decimal.NewFromInt(300)))

	resp = call(t, app, http.MethodGet, "/api/stock/audit?product_id=DIESEL&destination_id=TERM-NORTE", apphttp.RoleAdmin, "")
	defer resp.Body.Close()
	var audit []dto.BatchAuditDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&audit))
	require.Len(t, audit, 1)
	assert.True(t, audit[0].Consistent)
}

func TestOrderHandler_OrdenInexistente(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/orders/nada/depletions", apphttp.RoleDispatcher, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStockHandler_FaltanParametros(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/api/stock/available?product_id=DIESEL", apphttp.RoleIntegration, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthYMetrics(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/health", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/metrics", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
