package payment

import (
	"context"
	"errors"
	"fmt"

	"ms-booking/internal/config"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/order"
	"ms-booking/internal/utils"
)

var (
	ErrInvalidSignature = errors.New("payment signature verification failed")
	ErrOrderNotPending  = errors.New("order is not awaiting payment")
	ErrNotOrderOwner    = errors.New("order belongs to another user")
)

type OrderLifecycle interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error
	MarkPaid(ctx context.Context, orderID, paymentID, signature string) error
	MarkFailed(ctx context.Context, orderID, paymentID, signature string) error
}

type TicketIssuer interface {
	IssueForOrder(ctx context.Context, orderID string) ([]models.Ticket, error)
}

type GatewayAPI interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*models.GatewayOrder, error)
}

type Service struct {
	Orders  OrderLifecycle
	Tickets TicketIssuer
	Gateway GatewayAPI
	Config  config.GatewayConfig
	Logger  *logger.Logger
}

func NewService(orders OrderLifecycle, tickets TicketIssuer, gateway GatewayAPI, cfg config.GatewayConfig, log *logger.Logger) *Service {
	return &Service{Orders: orders, Tickets: tickets, Gateway: gateway, Config: cfg, Logger: log}
}

// CreateGatewayOrderForOrder registers a local order with the gateway so the
// client can open checkout. The order must belong to the caller and still be
// PENDING; repeating the call after a gateway order is attached is an error
// rather than a second registration.
func (s *Service) CreateGatewayOrderForOrder(ctx context.Context, userID, orderID string) (*models.GatewayOrder, error) {
	ord, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if ord.PaymentStatus != models.PaymentPending {
		return nil, ErrOrderNotPending
	}

	gatewayOrder, err := s.Gateway.CreateOrder(ctx, ord.FinalAmountMinor, s.Config.Currency, utils.GenerateReceipt())
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	if err := s.Orders.AttachGatewayOrder(ctx, orderID, gatewayOrder.ID); err != nil {
		return nil, err
	}

	s.Logger.LogPayment("GATEWAY_ORDER", orderID, fmt.Sprintf("gateway order %s amount=%d", gatewayOrder.ID, gatewayOrder.Amount))
	return gatewayOrder, nil
}

// CreateBareGatewayOrder registers a gateway order for an arbitrary rupee
// amount with no local order behind it. Kept for checkout flows that collect
// money first and reconcile later.
func (s *Service) CreateBareGatewayOrder(ctx context.Context, amountRupees int64) (*models.GatewayOrder, error) {
	gatewayOrder, err := s.Gateway.CreateOrder(ctx, amountRupees*100, s.Config.Currency, utils.GenerateReceipt())
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}
	return gatewayOrder, nil
}

// VerifyPayment settles the checkout callback. A valid signature finalizes
// the order as SUCCESS and issues its tickets; an invalid one finalizes it as
// FAILED. Replaying a valid callback against an already-successful order is
// treated as an idempotent re-verification and returns the same tickets.
func (s *Service) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error) {
	ord, err := s.Orders.GetOrderByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, err
	}

	if !VerifySignature(s.Config.KeySecret, req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature) {
		if err := s.Orders.MarkFailed(ctx, ord.ID, req.GatewayPaymentID, req.GatewaySignature); err != nil && !errors.Is(err, order.ErrOrderFinalized) {
			s.Logger.Error("PAYMENT", fmt.Sprintf("failed to record failed payment for %s: %v", ord.ID, err))
		}
		return nil, ErrInvalidSignature
	}

	if err := s.Orders.MarkPaid(ctx, ord.ID, req.GatewayPaymentID, req.GatewaySignature); err != nil {
		if !errors.Is(err, order.ErrOrderFinalized) {
			return nil, err
		}
		// Lost the CAS: someone finalized this order first. A prior SUCCESS
		// makes this a replay; a prior FAILED stays failed.
		current, lookupErr := s.Orders.GetOrder(ctx, ord.ID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if current.PaymentStatus != models.PaymentSuccess {
			return nil, order.ErrOrderFinalized
		}
	}

	tickets, err := s.Tickets.IssueForOrder(ctx, ord.ID)
	if err != nil {
		return nil, fmt.Errorf("payment verified but ticket issuance failed for order %s: %w", ord.ID, err)
	}

	return &models.VerifyPaymentResponse{
		OrderID:       ord.ID,
		PaymentStatus: models.PaymentSuccess,
		Tickets:       tickets,
	}, nil
}
