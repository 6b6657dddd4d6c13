package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/manday-tracker/internal/api/http"
	"github.com/spec-kit/manday-tracker/internal/api/http/handlers"
	"github.com/spec-kit/manday-tracker/internal/config"
	"github.com/spec-kit/manday-tracker/internal/domain"
	"github.com/spec-kit/manday-tracker/internal/observability"
	"github.com/spec-kit/manday-tracker/internal/persistence"
	"github.com/spec-kit/manday-tracker/internal/repository"
	"github.com/spec-kit/manday-tracker/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	kv := persistence.NewMemoryKV()

	customerRepo := repository.NewCustomerRepository(kv)
	if err := customerRepo.ReplaceAll(ctx, []domain.Customer{
		{ID: "customer-1", Name: "Acme", TotalMandays: 10, UsedMandays: 3, RemainingMandays: 7},
	}); err != nil {
		t.Fatalf("seed customers: %v", err)
	}

	logger := zap.NewNop()
	customerService := service.NewCustomerService(config.SheetConfig{}, service.CustomerDependencies{
		CustomerRepo: customerRepo,
		SettingsRepo: repository.NewSettingsRepository(kv),
		Logger:       logger,
	})
	if err := customerService.Load(ctx); err != nil {
		t.Fatalf("load customers: %v", err)
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repository.NewTicketRepository(kv),
		CustomerSvc: customerService,
	})
	if err := ticketService.Load(ctx); err != nil {
		t.Fatalf("load tickets: %v", err)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler("manday-tracker", "test", kv),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Customers: handlers.NewCustomersHandler(customerService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func dataField(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data object in %v", body)
	}
	return data
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error object in %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tickets", map[string]any{
		"customer_id": "customer-1",
		"issue":       "Login fails",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d, body %v", resp.StatusCode, body)
	}
	ticket := dataField(t, body)
	id, _ := ticket["id"].(string)
	if id == "" {
		t.Fatalf("create: missing id in %v", ticket)
	}
	if ticket["status"] != "pending-estimate" {
		t.Fatalf("create: status %v", ticket["status"])
	}
	if ticket["customer_remaining_mandays"] != 7.0 {
		t.Fatalf("create: budget snapshot %v", ticket["customer_remaining_mandays"])
	}

	steps := []struct {
		path       string
		payload    any
		wantStatus string
	}{
		{"/estimate", map[string]any{"estimated_mandays": 2}, "waiting-approval"},
		{"/approve", nil, "in-progress"},
		{"/close", map[string]any{"actual_mandays": 1.5, "remaining_mandays": 0.5}, "waiting-confirmation"},
		{"/confirm", nil, "closed"},
	}
	for _, step := range steps {
		resp, body := doJSON(t, app, http.MethodPost, "/tickets/"+id+step.path, step.payload)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d, body %v", step.path, resp.StatusCode, body)
		}
		if got := dataField(t, body)["status"]; got != step.wantStatus {
			t.Fatalf("%s: status %v, want %s", step.path, got, step.wantStatus)
		}
	}

	resp, body = doJSON(t, app, http.MethodGet, "/customers", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("customers: status %d", resp.StatusCode)
	}
	customers, ok := body["data"].([]any)
	if !ok || len(customers) != 1 {
		t.Fatalf("customers: %v", body)
	}
	acme := customers[0].(map[string]any)
	if acme["used_mandays"] != 4.5 || acme["remaining_mandays"] != 5.5 {
		t.Fatalf("customers after confirm: %v", acme)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tickets", map[string]any{"issue": "no customer"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "VALIDATION_FAILED" {
		t.Fatalf("code %s, want VALIDATION_FAILED", code)
	}
}

func TestInvalidTransitionOverHTTP(t *testing.T) {
	app := newTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/tickets", map[string]any{
		"customer_id": "customer-1",
		"issue":       "broken",
	})
	id := dataField(t, body)["id"].(string)

	resp, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/tickets/%s/approve", id), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d, want 409, body %v", resp.StatusCode, body)
	}
	if code := errorCode(t, body); code != "INVALID_TRANSITION" {
		t.Fatalf("code %s, want INVALID_TRANSITION", code)
	}
}

func TestUnknownTicketOverHTTP(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/tickets/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "NOT_FOUND" {
		t.Fatalf("code %s, want NOT_FOUND", code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health/live", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "alive" {
		t.Fatalf("live: status %d body %v", resp.StatusCode, body)
	}
	resp, body = doJSON(t, app, http.MethodGet, "/health/ready", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ready" {
		t.Fatalf("ready: status %d body %v", resp.StatusCode, body)
	}
}
