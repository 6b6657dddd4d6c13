package events

import (
	"time"

	"github.com/spec-kit/manday-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated     EventType = "ticket_created"
	EventTicketEstimated   EventType = "ticket_estimated"
	EventTicketApproved    EventType = "ticket_approved"
	EventTicketRejected    EventType = "ticket_rejected"
	EventTicketCompleted   EventType = "ticket_completed"
	EventTicketConfirmed   EventType = "ticket_confirmed"
	EventCustomerDebited   EventType = "customer_debited"
	EventCustomersImported EventType = "customers_imported"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID   string `json:"customer_id,omitempty"`
	CustomerName string `json:"customer_name"`
	Issue        string `json:"issue"`
}

// TicketStatusChangedPayload is shared by estimate/approve/reject/complete
// transitions.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketConfirmedPayload payload.
type TicketConfirmedPayload struct {
	CustomerID    string   `json:"customer_id,omitempty"`
	ActualMandays *float64 `json:"actual_mandays,omitempty"`
}

// CustomerDebitedPayload carries the post-debit balance. RemainingMandays
// may be negative; over-spend is surfaced, not hidden.
type CustomerDebitedPayload struct {
	CustomerID       string  `json:"customer_id"`
	Amount           float64 `json:"amount"`
	UsedMandays      float64 `json:"used_mandays"`
	RemainingMandays float64 `json:"remaining_mandays"`
}

// CustomersImportedPayload payload.
type CustomersImportedPayload struct {
	Count int `json:"count"`
}
