package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/order"
	"ms-booking/internal/payment"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *payment.Service
	Logger  *logger.Logger
}

func NewHandler(service *payment.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// PayOrder registers the caller's PENDING order with the gateway and returns
// the gateway order the checkout widget needs.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orderID := chi.URLParam(r, "orderId")

	gatewayOrder, err := h.Service.CreateGatewayOrderForOrder(r.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, payment.ErrNotOrderOwner):
			utils.WriteError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, payment.ErrOrderNotPending), errors.Is(err, order.ErrGatewayOrderExists):
			utils.WriteError(w, http.StatusConflict, err.Error())
		default:
			h.Logger.Error("API", fmt.Sprintf("PayOrder: %v", err))
			utils.WriteError(w, http.StatusBadGateway, "failed to create gateway order")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, gatewayOrder)
}

// CreateBareOrder mints a gateway order for a plain rupee amount, no local
// order attached.
func (h *Handler) CreateBareOrder(w http.ResponseWriter, r *http.Request) {
	amountStr := r.URL.Query().Get("amount")
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "amount must be a positive integer")
		return
	}

	gatewayOrder, err := h.Service.CreateBareGatewayOrder(r.Context(), amount)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBareOrder: %v", err))
		utils.WriteError(w, http.StatusBadGateway, "failed to create gateway order")
		return
	}

	utils.WriteJSON(w, http.StatusOK, gatewayOrder)
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.GatewaySignature == "" {
		utils.WriteError(w, http.StatusBadRequest, "gateway_order_id, gateway_payment_id and gateway_signature are required")
		return
	}

	resp, err := h.Service.VerifyPayment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			utils.WriteError(w, http.StatusBadRequest, "payment verification failed")
		case errors.Is(err, order.ErrOrderNotFound):
			utils.WriteError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrOrderFinalized):
			utils.WriteError(w, http.StatusConflict, "order already finalized")
		default:
			h.Logger.Error("API", fmt.Sprintf("VerifyPayment: %v", err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to verify payment")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}
