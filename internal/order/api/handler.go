package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/order"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *order.Service
	Logger  *logger.Logger
}

func NewHandler(service *order.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateOrder(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidQuantity), errors.Is(err, order.ErrEventUnavailable):
			utils.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.Logger.Error("API", fmt.Sprintf("CreateOrder: %v", err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orderID := chi.URLParam(r, "orderId")

	found, err := h.Service.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			utils.WriteError(w, http.StatusNotFound, "order not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetOrder: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	// Orders are private to their owner.
	if found.UserID != userID {
		utils.WriteError(w, http.StatusNotFound, "order not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.Service.ListOrdersWithTickets(r.Context(), userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyOrders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) ListEventOrders(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	orders, err := h.Service.ListOrdersByEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEventOrders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}
