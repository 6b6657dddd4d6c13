package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/manday-tracker/internal/domain"
	"github.com/spec-kit/manday-tracker/internal/events"
	"github.com/spec-kit/manday-tracker/internal/repository"
	apperrors "github.com/spec-kit/manday-tracker/pkg/util"
)

// TicketService is the lifecycle engine: every status transition and its
// manday arithmetic lives here. The ticket list is a cached projection of
// the store, sorted newest-first, rebuilt wholesale on Load and patched in
// place on each mutation. A transition persists the updated record first
// and reflects it into the cache only after the save succeeded, so a failed
// save never desynchronizes the cache from the store.
type TicketService struct {
	tickets    repository.TicketRepository
	customers  *CustomerService
	dispatcher events.Dispatcher

	mu    sync.Mutex
	cache []domain.Ticket
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CustomerSvc *CustomerService
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. CustomerID is
// optional; a ticket may reference a customer by name only, in which case
// confirmation closes it without a budget debit.
type TicketCreateInput struct {
	CustomerID   string
	CustomerName string
	Email        string
	Phone        string
	Issue        string
	Description  string
}

// TicketCloseInput describes the completion payload. RemainingMandays is
// the staff-entered remaining-budget figure; when nil it defaults to the
// ticket's estimated mandays.
type TicketCloseInput struct {
	ActualMandays    float64
	RemainingMandays *float64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		customers:  deps.CustomerSvc,
		dispatcher: deps.Dispatcher,
	}
}

// Load rebuilds the in-memory ticket list from the store.
func (s *TicketService) Load(ctx context.Context) error {
	tickets, err := s.tickets.LoadAll(ctx)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	s.mu.Lock()
	s.cache = tickets
	s.mu.Unlock()
	return nil
}

// List returns cached tickets, optionally filtered by status. Filtering is
// in memory; the store keeps no secondary indices.
func (s *TicketService) List(status domain.TicketStatus) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Ticket, 0, len(s.cache))
	for _, ticket := range s.cache {
		if status != "" && ticket.Status != status {
			continue
		}
		out = append(out, ticket)
	}
	return out
}

// Get returns the cached ticket with the given id.
func (s *TicketService) Get(id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	ticket := s.cache[idx]
	return &ticket, nil
}

// Create opens a new ticket in pending-estimate. When a customer id is
// given the customer must exist; its remaining budget is snapshotted onto
// the ticket for display and never re-derived afterwards.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(input.CustomerName)
	if input.CustomerID == "" && name == "" {
		return nil, apperrors.NewValidationError("customer reference required", nil)
	}
	if strings.TrimSpace(input.Issue) == "" {
		return nil, apperrors.NewValidationError("issue required", nil)
	}

	ticket := domain.Ticket{
		ID:           uuid.NewString(),
		CustomerID:   input.CustomerID,
		CustomerName: name,
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Issue:        strings.TrimSpace(input.Issue),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusPendingEstimate,
		CreatedAt:    time.Now(),
	}

	if input.CustomerID != "" {
		customer, ok := s.customers.Get(input.CustomerID)
		if !ok {
			return nil, apperrors.NewNotFound("customer", map[string]any{"id": input.CustomerID})
		}
		ticket.CustomerName = customer.Name
		remaining := customer.RemainingMandays
		ticket.CustomerRemainingMandays = &remaining
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tickets.Save(ctx, &ticket); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache = append([]domain.Ticket{ticket}, s.cache...)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			CustomerID:   ticket.CustomerID,
			CustomerName: ticket.CustomerName,
			Issue:        ticket.Issue,
		},
	})
	return &ticket, nil
}

// Estimate moves a ticket to waiting-approval with the staff estimate.
// Rejected tickets re-enter here: a re-estimate records a fresh estimatedAt.
func (s *TicketService) Estimate(ctx context.Context, id string, mandays float64) (*domain.Ticket, error) {
	if mandays <= 0 {
		return nil, apperrors.NewValidationError("estimated mandays must be greater than zero", nil)
	}
	return s.transition(ctx, id, domain.TicketStatusWaitingApproval,
		events.EventTicketEstimated,
		func(ticket *domain.Ticket, now time.Time) {
			ticket.EstimatedMandays = &mandays
			ticket.EstimatedAt = &now
		})
}

// Approve records customer approval of the estimate.
func (s *TicketService) Approve(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.transition(ctx, id, domain.TicketStatusInProgress,
		events.EventTicketApproved,
		func(ticket *domain.Ticket, now time.Time) {
			ticket.ApprovedAt = &now
		})
}

// Reject records customer rejection of the estimate. The ticket can be
// re-estimated afterwards.
func (s *TicketService) Reject(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.transition(ctx, id, domain.TicketStatusRejected,
		events.EventTicketRejected,
		func(ticket *domain.Ticket, now time.Time) {
			ticket.RejectedAt = &now
		})
}

// Close records the actual effort and hands the ticket to the customer for
// confirmation.
func (s *TicketService) Close(ctx context.Context, id string, input TicketCloseInput) (*domain.Ticket, error) {
	if input.ActualMandays <= 0 {
		return nil, apperrors.NewValidationError("actual mandays must be greater than zero", nil)
	}
	return s.transition(ctx, id, domain.TicketStatusWaitingConfirmation,
		events.EventTicketCompleted,
		func(ticket *domain.Ticket, now time.Time) {
			actual := input.ActualMandays
			ticket.ActualMandays = &actual
			remaining := input.RemainingMandays
			if remaining == nil {
				remaining = ticket.EstimatedMandays
			}
			ticket.RemainingMandays = remaining
			ticket.CompletedAt = &now
		})
}

// Confirm closes the ticket and debits the linked customer's budget by the
// actual mandays. The debit fires exactly once, here and nowhere else; a
// ticket without a customer link closes without touching any budget.
func (s *TicketService) Confirm(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	current := s.cache[idx]
	if !domain.CanTransition(current.Status, domain.TicketStatusClosed) {
		return nil, apperrors.NewInvalidTransition(string(current.Status), string(domain.TicketStatusClosed))
	}

	if current.CustomerID != "" && current.ActualMandays != nil {
		if _, ok := s.customers.Get(current.CustomerID); ok {
			if _, err := s.customers.Debit(ctx, current.CustomerID, *current.ActualMandays); err != nil {
				return nil, err
			}
		}
	}

	now := time.Now()
	updated := current
	updated.Status = domain.TicketStatusClosed
	updated.ConfirmedAt = &now
	if err := s.tickets.Save(ctx, &updated); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache[idx] = updated

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketConfirmed,
		TicketID: updated.ID,
		Payload: events.TicketConfirmedPayload{
			CustomerID:    updated.CustomerID,
			ActualMandays: updated.ActualMandays,
		},
	})
	return &updated, nil
}

// transition applies a guarded status change: validate the step, apply the
// mutation to a copy, persist the full record, then patch the cache.
func (s *TicketService) transition(ctx context.Context, id string, next domain.TicketStatus, eventType events.EventType, apply func(*domain.Ticket, time.Time)) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	current := s.cache[idx]
	if !domain.CanTransition(current.Status, next) {
		return nil, apperrors.NewInvalidTransition(string(current.Status), string(next))
	}

	updated := current
	updated.Status = next
	apply(&updated, time.Now())

	if err := s.tickets.Save(ctx, &updated); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache[idx] = updated

	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: updated.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: next,
		},
	})
	return &updated, nil
}

// indexOf returns the cache position of a ticket id. Caller holds s.mu.
func (s *TicketService) indexOf(id string) int {
	for i := range s.cache {
		if s.cache[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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
