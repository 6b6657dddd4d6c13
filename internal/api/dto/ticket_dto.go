package dto

import (
	"time"

	"github.com/spec-kit/manday-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Issue        string `json:"issue"`
	Description  string `json:"description"`
}

// EstimateTicketRequest payload.
type EstimateTicketRequest struct {
	EstimatedMandays float64 `json:"estimated_mandays"`
}

// CloseTicketRequest payload. RemainingMandays defaults to the ticket's
// estimate when omitted.
type CloseTicketRequest struct {
	ActualMandays    float64  `json:"actual_mandays"`
	RemainingMandays *float64 `json:"remaining_mandays"`
}

// TicketResponse mirrors the full ticket record.
type TicketResponse struct {
	ID                       string              `json:"id"`
	CustomerID               string              `json:"customer_id,omitempty"`
	CustomerName             string              `json:"customer_name"`
	Email                    string              `json:"email,omitempty"`
	Phone                    string              `json:"phone,omitempty"`
	Issue                    string              `json:"issue"`
	Description              string              `json:"description,omitempty"`
	Status                   domain.TicketStatus `json:"status"`
	CustomerRemainingMandays *float64            `json:"customer_remaining_mandays,omitempty"`
	EstimatedMandays         *float64            `json:"estimated_mandays,omitempty"`
	ActualMandays            *float64            `json:"actual_mandays,omitempty"`
	RemainingMandays         *float64            `json:"remaining_mandays,omitempty"`
	CreatedAt                time.Time           `json:"created_at"`
	EstimatedAt              *time.Time          `json:"estimated_at,omitempty"`
	ApprovedAt               *time.Time          `json:"approved_at,omitempty"`
	RejectedAt               *time.Time          `json:"rejected_at,omitempty"`
	CompletedAt              *time.Time          `json:"completed_at,omitempty"`
	ConfirmedAt              *time.Time          `json:"confirmed_at,omitempty"`
}
