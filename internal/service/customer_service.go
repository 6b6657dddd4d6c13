package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/manday-tracker/internal/config"
	"github.com/spec-kit/manday-tracker/internal/domain"
	"github.com/spec-kit/manday-tracker/internal/events"
	"github.com/spec-kit/manday-tracker/internal/repository"
	apperrors "github.com/spec-kit/manday-tracker/pkg/util"
)

// sheetIDPattern extracts the spreadsheet identifier from a shared URL.
var sheetIDPattern = regexp.MustCompile(`/d/([A-Za-z0-9-_]+)`)

// CustomerService owns the in-memory customer collection: budget debits,
// spreadsheet import and the sheet URL setting. The collection is cached
// from the store at load time and patched only after a successful persist.
type CustomerService struct {
	customers  repository.CustomerRepository
	settings   repository.SettingsRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	client     *http.Client
	exportBase string
	defaultURL string

	mu    sync.Mutex
	cache []domain.Customer
}

// CustomerDependencies bundles collaborators for the customer service.
type CustomerDependencies struct {
	CustomerRepo repository.CustomerRepository
	SettingsRepo repository.SettingsRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewCustomerService constructs the service.
func NewCustomerService(cfg config.SheetConfig, deps CustomerDependencies) *CustomerService {
	return &CustomerService{
		customers:  deps.CustomerRepo,
		settings:   deps.SettingsRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		client:     &http.Client{Timeout: cfg.FetchTimeout()},
		exportBase: strings.TrimRight(cfg.ExportBaseURL, "/"),
		defaultURL: cfg.URL,
	}
}

// Load rebuilds the in-memory collection from the store.
func (s *CustomerService) Load(ctx context.Context) error {
	customers, err := s.customers.LoadAll(ctx)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	s.mu.Lock()
	s.cache = customers
	s.mu.Unlock()
	return nil
}

// List returns a snapshot of the cached collection.
func (s *CustomerService) List() []domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Customer, len(s.cache))
	copy(out, s.cache)
	return out
}

// Get returns the cached customer with the given id.
func (s *CustomerService) Get(id string) (domain.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, customer := range s.cache {
		if customer.ID == id {
			return customer, true
		}
	}
	return domain.Customer{}, false
}

// Debit increases the customer's used mandays by amount and recomputes the
// remaining balance, persisting the whole collection before the cache is
// patched. The balance is allowed to go negative; over-spend is logged and
// carried in the emitted event rather than rejected.
func (s *CustomerService) Debit(ctx context.Context, id string, amount float64) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.cache {
		if s.cache[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperrors.NewNotFound("customer", map[string]any{"id": id})
	}

	debited := s.cache[idx].Debit(amount)
	updated := make([]domain.Customer, len(s.cache))
	copy(updated, s.cache)
	updated[idx] = debited

	if err := s.customers.ReplaceAll(ctx, updated); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache = updated

	if debited.RemainingMandays < 0 {
		s.logger.Warn("customer budget over-spent",
			zap.String("customer_id", debited.ID),
			zap.Float64("remaining_mandays", debited.RemainingMandays))
	}
	s.publishEvent(ctx, events.Event{
		Type: events.EventCustomerDebited,
		Payload: events.CustomerDebitedPayload{
			CustomerID:       debited.ID,
			Amount:           amount,
			UsedMandays:      debited.UsedMandays,
			RemainingMandays: debited.RemainingMandays,
		},
	})
	return &debited, nil
}

// SheetURL returns the stored spreadsheet URL, falling back to the
// configured default.
func (s *CustomerService) SheetURL(ctx context.Context) (string, error) {
	url, err := s.settings.SheetURL(ctx)
	if err != nil {
		return "", apperrors.NewStorageError(err)
	}
	if url == "" {
		url = s.defaultURL
	}
	return url, nil
}

// SetSheetURL validates and stores the spreadsheet URL.
func (s *CustomerService) SetSheetURL(ctx context.Context, url string) error {
	if !sheetIDPattern.MatchString(url) {
		return apperrors.NewValidationError("sheet URL must contain a /d/<id> segment", nil)
	}
	if err := s.settings.SetSheetURL(ctx, url); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// ImportFromSheet fetches the CSV export of the configured spreadsheet and
// replaces the stored customer collection. The import is all-or-nothing:
// any fetch or parse failure leaves the previous collection untouched.
func (s *CustomerService) ImportFromSheet(ctx context.Context) (int, error) {
	url, err := s.SheetURL(ctx)
	if err != nil {
		return 0, err
	}
	if url == "" {
		return 0, apperrors.NewValidationError("no sheet URL configured", nil)
	}

	match := sheetIDPattern.FindStringSubmatch(url)
	if match == nil {
		return 0, apperrors.NewValidationError("sheet URL must contain a /d/<id> segment", nil)
	}
	csvURL := fmt.Sprintf("%s/d/%s/export?format=csv", s.exportBase, match[1])

	body, err := s.fetchCSV(ctx, csvURL)
	if err != nil {
		return 0, err
	}

	customers, err := parseCustomerCSV(body)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customers.ReplaceAll(ctx, customers); err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	s.cache = customers

	s.logger.Info("customers imported", zap.Int("count", len(customers)))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCustomersImported,
		Payload: events.CustomersImportedPayload{Count: len(customers)},
	})
	return len(customers), nil
}

func (s *CustomerService) fetchCSV(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewImportError("invalid sheet export URL", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.NewImportError("unable to fetch sheet export", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewImportError(
			fmt.Sprintf("sheet export returned status %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewImportError("unable to read sheet export", err)
	}
	return body, nil
}

// parseCustomerCSV turns the export into customer records. Row 0 is a
// header; each data row needs at least a name and a total-mandays column.
// Row indices are 1-based over the data rows so re-imports keep stable ids.
func parseCustomerCSV(body []byte) ([]domain.Customer, error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewImportError("malformed CSV in sheet export", err)
	}
	if len(records) == 0 {
		return []domain.Customer{}, nil
	}

	customers := make([]domain.Customer, 0, len(records)-1)
	for i, record := range records[1:] {
		if isBlankRow(record) {
			continue
		}
		if len(record) < 2 {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("row %d has fewer than 2 columns", i+1), nil)
		}
		total := parseFloatOrZero(record[1])
		used := 0.0
		if len(record) > 2 {
			used = parseFloatOrZero(record[2])
		}
		customers = append(customers, domain.Customer{
			ID:               fmt.Sprintf("customer-%d", i+1),
			Name:             strings.TrimSpace(record[0]),
			TotalMandays:     total,
			UsedMandays:      used,
			RemainingMandays: total - used,
		})
	}
	return customers, nil
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func parseFloatOrZero(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func (s *CustomerService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
