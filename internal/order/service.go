package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/pricing"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEventUnavailable   = errors.New("event does not exist or is not published")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrOrderFinalized     = errors.New("order payment status already finalized")
	ErrGatewayOrderExists = errors.New("gateway order already exists for this order")
)

type DBLayer interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetOrdersByEvent(ctx context.Context, eventID string) ([]models.Order, error)
	GetOrdersWithTicketsByUser(ctx context.Context, userID string) ([]models.OrderWithTickets, error)
	SetGatewayOrderID(ctx context.Context, orderID, gatewayOrderID string) (int64, error)
	FinalizeOrder(ctx context.Context, orderID string, status models.PaymentStatus, paymentID, signature string) (int64, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

type Publisher interface {
	PublishOrderCreated(order models.Order) error
	PublishOrderPaid(order models.Order) error
	PublishOrderFailed(order models.Order) error
}

type Service struct {
	DB     DBLayer
	Kafka  Publisher
	Logger *logger.Logger
}

func NewService(db DBLayer, kafka Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Kafka: kafka, Logger: log}
}

// CreateOrder prices the request and inserts a PENDING order. The event must
// exist and be published, and the quantity must be positive; neither is left
// to surface as a database error.
func (s *Service) CreateOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	event, err := s.DB.GetEventByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventUnavailable
		}
		return nil, fmt.Errorf("failed to load event %s: %w", req.EventID, err)
	}
	if !event.IsPublished {
		return nil, ErrEventUnavailable
	}

	quote := pricing.CalculateQuote(event.BasePriceMinor, req.Quantity,
		pricing.Tier{MinQuantity: event.DiscountTier1Quantity, Percent: event.DiscountTier1Percent},
		pricing.Tier{MinQuantity: event.DiscountTier2Quantity, Percent: event.DiscountTier2Percent})

	order := &models.Order{
		ID:               uuid.NewString(),
		UserID:           userID,
		EventID:          req.EventID,
		Quantity:         req.Quantity,
		TotalAmountMinor: quote.TotalAmountMinor,
		DiscountPercent:  quote.DiscountPercent,
		FinalAmountMinor: quote.FinalAmountMinor,
		PaymentStatus:    models.PaymentPending,
		CreatedAt:        time.Now(),
	}

	if err := s.DB.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.Logger.LogOrder("CREATE", order.ID, fmt.Sprintf("event=%s qty=%d final=%d", order.EventID, order.Quantity, order.FinalAmountMinor))

	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderCreated(*order); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish order created for %s: %v", order.ID, err))
		}
	}

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	order, err := s.DB.GetOrderByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrdersWithTickets(ctx context.Context, userID string) ([]models.OrderWithTickets, error) {
	return s.DB.GetOrdersWithTicketsByUser(ctx, userID)
}

func (s *Service) ListOrdersByEvent(ctx context.Context, eventID string) ([]models.Order, error) {
	return s.DB.GetOrdersByEvent(ctx, eventID)
}

// AttachGatewayOrder records the gateway order id; a second attachment is
// rejected by the conditional update, not by a racy read-then-check.
func (s *Service) AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error {
	rows, err := s.DB.SetGatewayOrderID(ctx, orderID, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("failed to attach gateway order to %s: %w", orderID, err)
	}
	if rows == 0 {
		return ErrGatewayOrderExists
	}
	return nil
}

// MarkPaid transitions PENDING -> SUCCESS exactly once.
func (s *Service) MarkPaid(ctx context.Context, orderID, paymentID, signature string) error {
	rows, err := s.DB.FinalizeOrder(ctx, orderID, models.PaymentSuccess, paymentID, signature)
	if err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}
	if rows == 0 {
		return ErrOrderFinalized
	}
	s.Logger.LogPayment("SUCCESS", orderID, "payment verified")

	if s.Kafka != nil {
		if order, err := s.DB.GetOrderByID(ctx, orderID); err == nil {
			if err := s.Kafka.PublishOrderPaid(*order); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish order paid for %s: %v", orderID, err))
			}
		}
	}
	return nil
}

// MarkFailed transitions PENDING -> FAILED exactly once.
func (s *Service) MarkFailed(ctx context.Context, orderID, paymentID, signature string) error {
	rows, err := s.DB.FinalizeOrder(ctx, orderID, models.PaymentFailed, paymentID, signature)
	if err != nil {
		return fmt.Errorf("failed to mark order %s failed: %w", orderID, err)
	}
	if rows == 0 {
		return ErrOrderFinalized
	}
	s.Logger.LogPayment("FAILED", orderID, "payment verification failed")

	if s.Kafka != nil {
		if order, err := s.DB.GetOrderByID(ctx, orderID); err == nil {
			if err := s.Kafka.PublishOrderFailed(*order); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish order failed for %s: %v", orderID, err))
			}
		}
	}
	return nil
}
