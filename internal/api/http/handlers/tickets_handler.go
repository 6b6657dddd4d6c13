package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/manday-tracker/internal/api/dto"
	"github.com/spec-kit/manday-tracker/internal/domain"
	"github.com/spec-kit/manday-tracker/internal/service"
	apperrors "github.com/spec-kit/manday-tracker/pkg/util"
)

// TicketsHandler exposes the lifecycle operations over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Issue:        req.Issue,
		Description:  req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	status := domain.TicketStatus(c.Query("status"))
	tickets := h.service.List(status)
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// EstimateTicket POST /tickets/:id/estimate.
func (h *TicketsHandler) EstimateTicket(c *fiber.Ctx) error {
	var req dto.EstimateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Estimate(c.UserContext(), c.Params("id"), req.EstimatedMandays)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ApproveTicket POST /tickets/:id/approve.
func (h *TicketsHandler) ApproveTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// RejectTicket POST /tickets/:id/reject.
func (h *TicketsHandler) RejectTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Reject(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Close(c.UserContext(), c.Params("id"), service.TicketCloseInput{
		ActualMandays:    req.ActualMandays,
		RemainingMandays: req.RemainingMandays,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ConfirmTicket POST /tickets/:id/confirm.
func (h *TicketsHandler) ConfirmTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Confirm(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                       ticket.ID,
		CustomerID:               ticket.CustomerID,
		CustomerName:             ticket.CustomerName,
		Email:                    ticket.Email,
		Phone:                    ticket.Phone,
		Issue:                    ticket.Issue,
		Description:              ticket.Description,
		Status:                   ticket.Status,
		CustomerRemainingMandays: ticket.CustomerRemainingMandays,
		EstimatedMandays:         ticket.EstimatedMandays,
		ActualMandays:            ticket.ActualMandays,
		RemainingMandays:         ticket.RemainingMandays,
		CreatedAt:                ticket.CreatedAt,
		EstimatedAt:              ticket.EstimatedAt,
		ApprovedAt:               ticket.ApprovedAt,
		RejectedAt:               ticket.RejectedAt,
		CompletedAt:              ticket.CompletedAt,
		ConfirmedAt:              ticket.ConfirmedAt,
	}
}
