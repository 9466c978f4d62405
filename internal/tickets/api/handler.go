package api

import (
	"errors"
	"fmt"
	"net/http"

	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/tickets"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *tickets.Service
	Authz   tickets.Authorizer
	Logger  *logger.Logger
}

func NewHandler(service *tickets.Service, authz tickets.Authorizer, log *logger.Logger) *Handler {
	return &Handler{Service: service, Authz: authz, Logger: log}
}

// GetTicket returns a ticket to its owner or to a ticket validator.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	ticketID := chi.URLParam(r, "ticketId")

	ticket, err := h.Service.GetTicket(r.Context(), ticketID)
	if err != nil {
		if errors.Is(err, tickets.ErrTicketNotFound) {
			utils.WriteError(w, http.StatusNotFound, "ticket not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetTicket: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load ticket")
		return
	}

	if ticket.UserID != userID {
		canValidate, err := h.Authz.Can(r.Context(), userID, auth.CapabilityValidateTickets)
		if err != nil {
			h.Logger.Error("API", fmt.Sprintf("GetTicket: capability check: %v", err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to load ticket")
			return
		}
		if !canValidate {
			utils.WriteError(w, http.StatusNotFound, "ticket not found")
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handler) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := h.Service.ListTicketsByUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyTickets: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}

	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListEventTickets(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	list, err := h.Service.ListTicketsByEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEventTickets: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}

	utils.WriteJSON(w, http.StatusOK, list)
}

// ValidateTicket is the door scan: one successful validation per ticket.
func (h *Handler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	ticketID := chi.URLParam(r, "ticketId")

	ticket, err := h.Service.Validate(r.Context(), userID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrNotAllowed):
			utils.WriteError(w, http.StatusForbidden, "not allowed to validate tickets")
		case errors.Is(err, tickets.ErrTicketNotFound):
			utils.WriteError(w, http.StatusNotFound, "ticket not found")
		case errors.Is(err, tickets.ErrTicketUsed):
			utils.WriteError(w, http.StatusConflict, "ticket already used")
		default:
			h.Logger.Error("API", fmt.Sprintf("ValidateTicket: %v", err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to validate ticket")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, ticket)
}
