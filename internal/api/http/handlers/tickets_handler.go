package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/support-portal/internal/api/dto"
	"github.com/supportdesk/support-portal/internal/service"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.UserContext(), *user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTicketList(tickets))
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.TicketCreateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewTicketResponse(ticket))
}

// UpdateTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return errorutil.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	var req service.TicketStatusInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), user.ID, int64(id), req)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTicketResponse(ticket))
}
