package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/manday-tracker/internal/api/dto"
	"github.com/spec-kit/manday-tracker/internal/service"
	apperrors "github.com/spec-kit/manday-tracker/pkg/util"
)

// CustomersHandler exposes customer budgets and the spreadsheet import.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// ListCustomers GET /customers.
func (h *CustomersHandler) ListCustomers(c *fiber.Ctx) error {
	customers := h.service.List()
	items := make([]dto.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		items = append(items, dto.CustomerResponse{
			ID:               customer.ID,
			Name:             customer.Name,
			TotalMandays:     customer.TotalMandays,
			UsedMandays:      customer.UsedMandays,
			RemainingMandays: customer.RemainingMandays,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ImportCustomers POST /customers/import.
func (h *CustomersHandler) ImportCustomers(c *fiber.Ctx) error {
	count, err := h.service.ImportFromSheet(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ImportResponse{Imported: count}})
}

// GetSheetURL GET /settings/sheet-url.
func (h *CustomersHandler) GetSheetURL(c *fiber.Ctx) error {
	url, err := h.service.SheetURL(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SheetURLResponse{URL: url}})
}

// SetSheetURL PUT /settings/sheet-url.
func (h *CustomersHandler) SetSheetURL(c *fiber.Ctx) error {
	var req dto.SheetURLRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.URL) == "" {
		return apperrors.NewValidationError("url required", nil)
	}
	if err := h.service.SetSheetURL(c.UserContext(), req.URL); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SheetURLResponse{URL: req.URL}})
}
