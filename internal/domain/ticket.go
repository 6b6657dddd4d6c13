package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The string values
// match the persisted storage format.
type TicketStatus string

const (
	TicketStatusPendingEstimate     TicketStatus = "pending-estimate"
	TicketStatusWaitingApproval     TicketStatus = "waiting-approval"
	TicketStatusRejected            TicketStatus = "rejected"
	TicketStatusInProgress          TicketStatus = "in-progress"
	TicketStatusWaitingConfirmation TicketStatus = "waiting-confirmation"
	TicketStatusClosed              TicketStatus = "closed"
)

// Ticket is the aggregate for support requests. JSON tags follow the
// storage layout under ticket:<id>; optional fields are populated when the
// corresponding transition fires.
type Ticket struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customerId,omitempty"`
	CustomerName string `json:"customerName"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Issue        string `json:"issue"`
	Description  string `json:"description,omitempty"`

	Status TicketStatus `json:"status"`

	// CustomerRemainingMandays snapshots the linked customer's remaining
	// budget at creation time. Informational, never re-derived.
	CustomerRemainingMandays *float64 `json:"customerRemainingMandays,omitempty"`
	EstimatedMandays         *float64 `json:"estimatedMandays,omitempty"`
	ActualMandays            *float64 `json:"actualMandays,omitempty"`
	// RemainingMandays is the staff-entered remaining-budget figure captured
	// at completion time, distinct from Customer.RemainingMandays.
	RemainingMandays *float64 `json:"remainingMandays,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	EstimatedAt *time.Time `json:"estimatedAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

// allowedTransitions maps each state to the states reachable from it.
// Estimation is re-enterable from rejected, so rejected is a retry state
// rather than a dead end.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusPendingEstimate:     {TicketStatusWaitingApproval},
	TicketStatusWaitingApproval:     {TicketStatusInProgress, TicketStatusRejected},
	TicketStatusRejected:            {TicketStatusWaitingApproval},
	TicketStatusInProgress:          {TicketStatusWaitingConfirmation},
	TicketStatusWaitingConfirmation: {TicketStatusClosed},
	TicketStatusClosed:              {},
}

// CanTransition reports whether moving from current to next is a valid
// lifecycle step.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
