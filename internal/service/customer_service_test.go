package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/manday-tracker/internal/config"
	"github.com/spec-kit/manday-tracker/internal/domain"
	"github.com/spec-kit/manday-tracker/internal/persistence"
	"github.com/spec-kit/manday-tracker/internal/repository"
)

const sheetURL = "https://docs.google.com/spreadsheets/d/abc-123_X/edit#gid=0"

// newImportFixture wires a customer service whose CSV export requests hit
// the given test server instead of docs.google.com.
func newImportFixture(t *testing.T, exportBase string, seed []domain.Customer) (*CustomerService, repository.CustomerRepository) {
	t.Helper()
	ctx := context.Background()
	kv := persistence.NewMemoryKV()

	customerRepo := repository.NewCustomerRepository(kv)
	if seed != nil {
		if err := customerRepo.ReplaceAll(ctx, seed); err != nil {
			t.Fatalf("seed customers: %v", err)
		}
	}
	settingsRepo := repository.NewSettingsRepository(kv)
	if err := settingsRepo.SetSheetURL(ctx, sheetURL); err != nil {
		t.Fatalf("set sheet url: %v", err)
	}

	svc := NewCustomerService(config.SheetConfig{ExportBaseURL: exportBase}, CustomerDependencies{
		CustomerRepo: customerRepo,
		SettingsRepo: settingsRepo,
		Logger:       zap.NewNop(),
	})
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load customers: %v", err)
	}
	return svc, customerRepo
}

func csvServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/abc-123_X/export" {
			t.Errorf("unexpected export path %q", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "csv" {
			t.Errorf("missing format=csv in %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestImportFromSheet(t *testing.T) {
	server := csvServer(t, "Name,Total,Used\nAcme,10,3\nGlobex,5\n\n")
	svc, _ := newImportFixture(t, server.URL, nil)

	count, err := svc.ImportFromSheet(context.Background())
	if err != nil {
		t.Fatalf("ImportFromSheet: %v", err)
	}
	if count != 2 {
		t.Fatalf("imported count: got %d, want 2", count)
	}

	customers := svc.List()
	if len(customers) != 2 {
		t.Fatalf("List: got %d customers", len(customers))
	}
	acme := customers[0]
	if acme.ID != "customer-1" || acme.Name != "Acme" ||
		acme.TotalMandays != 10 || acme.UsedMandays != 3 || acme.RemainingMandays != 7 {
		t.Fatalf("first customer: got %+v", acme)
	}
	globex := customers[1]
	if globex.ID != "customer-2" || globex.UsedMandays != 0 || globex.RemainingMandays != 5 {
		t.Fatalf("second customer: got %+v (missing used column should read as 0)", globex)
	}
}

func TestImportReplacesPreviousCollection(t *testing.T) {
	server := csvServer(t, "Name,Total\nInitech,8\n")
	seed := []domain.Customer{
		{ID: "customer-1", Name: "Acme", TotalMandays: 10, UsedMandays: 3, RemainingMandays: 7},
		{ID: "customer-2", Name: "Globex", TotalMandays: 5, RemainingMandays: 5},
	}
	svc, repo := newImportFixture(t, server.URL, seed)

	if _, err := svc.ImportFromSheet(context.Background()); err != nil {
		t.Fatalf("ImportFromSheet: %v", err)
	}
	stored, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(stored) != 1 || stored[0].Name != "Initech" {
		t.Fatalf("import must replace whole collection, got %+v", stored)
	}
}

func TestImportFailuresLeaveDataUntouched(t *testing.T) {
	seed := []domain.Customer{
		{ID: "customer-1", Name: "Acme", TotalMandays: 10, UsedMandays: 3, RemainingMandays: 7},
	}

	t.Run("short row", func(t *testing.T) {
		server := csvServer(t, "Name,Total\nGlobex,5\nJustOneColumn\n")
		svc, repo := newImportFixture(t, server.URL, seed)

		if _, err := svc.ImportFromSheet(context.Background()); err == nil {
			t.Fatal("expected error for row with fewer than 2 columns")
		}
		stored, err := repo.LoadAll(context.Background())
		if err != nil {
			t.Fatalf("LoadAll: %v", err)
		}
		if len(stored) != 1 || stored[0].Name != "Acme" {
			t.Fatalf("failed import must not commit partially, got %+v", stored)
		}
		if got := svc.List(); len(got) != 1 || got[0].Name != "Acme" {
			t.Fatalf("failed import must not touch cache, got %+v", got)
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)
		svc, repo := newImportFixture(t, server.URL, seed)

		if _, err := svc.ImportFromSheet(context.Background()); err == nil {
			t.Fatal("expected error when export fetch fails")
		}
		stored, err := repo.LoadAll(context.Background())
		if err != nil {
			t.Fatalf("LoadAll: %v", err)
		}
		if len(stored) != 1 || stored[0].Name != "Acme" {
			t.Fatalf("fetch failure must retain previous data, got %+v", stored)
		}
	})
}

func TestSetSheetURLValidatesPattern(t *testing.T) {
	svc, _ := newImportFixture(t, "http://127.0.0.1:0", nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"share url", "https://docs.google.com/spreadsheets/d/1AbC-xyz_9/edit", false},
		{"bare id segment", "/d/1AbC", false},
		{"no id segment", "https://example.com/spreadsheet.csv", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetSheetURL(ctx, tt.url)
			if tt.wantErr && err == nil {
				t.Fatalf("SetSheetURL(%q): expected error", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("SetSheetURL(%q): %v", tt.url, err)
			}
		})
	}
}

func TestDebitRecomputesRemaining(t *testing.T) {
	svc, repo := newImportFixture(t, "http://127.0.0.1:0", []domain.Customer{
		{ID: "customer-1", Name: "Acme", TotalMandays: 10, UsedMandays: 3, RemainingMandays: 7},
	})
	ctx := context.Background()

	debited, err := svc.Debit(ctx, "customer-1", 1.5)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if debited.UsedMandays != 4.5 || debited.RemainingMandays != 5.5 {
		t.Fatalf("Debit: got used=%v remaining=%v", debited.UsedMandays, debited.RemainingMandays)
	}

	stored, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if stored[0].UsedMandays != 4.5 || stored[0].RemainingMandays != 5.5 {
		t.Fatalf("Debit not persisted: %+v", stored[0])
	}

	if _, err := svc.Debit(ctx, "customer-404", 1); err == nil {
		t.Fatal("Debit on unknown customer: expected error")
	}
}
