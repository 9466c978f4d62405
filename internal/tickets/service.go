package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/pricing"
	"ms-booking/internal/tickets/qr"
	"ms-booking/internal/utils"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketUsed     = errors.New("ticket already used")
	ErrOrderNotPaid   = errors.New("order is not paid")
	ErrNotAllowed     = errors.New("user is not allowed to validate tickets")
)

type DBLayer interface {
	GetTicketByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error)
	GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error)
	InsertTickets(ctx context.Context, tickets []models.Ticket) error
	MarkUsed(ctx context.Context, ticketID string) (int64, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

type Authorizer interface {
	Can(ctx context.Context, userID, capability string) (bool, error)
}

type Publisher interface {
	PublishTicketIssued(ticket models.Ticket) error
	PublishTicketValidated(ticket models.Ticket) error
}

type QRGenerator interface {
	GenerateEncryptedQR(payload qr.Payload) ([]byte, error)
}

type Service struct {
	DB     DBLayer
	Orders OrderReader
	Authz  Authorizer
	Kafka  Publisher
	QR     QRGenerator
	Logger *logger.Logger
}

func NewService(db DBLayer, orders OrderReader, authz Authorizer, kafka Publisher, qrGen QRGenerator, log *logger.Logger) *Service {
	return &Service{DB: db, Orders: orders, Authz: authz, Kafka: kafka, QR: qrGen, Logger: log}
}

// IssueForOrder creates one ticket per purchased seat for a paid order.
// Calling it again for the same order returns the batch already issued; two
// racing callers are serialized by the (order_id, seq) unique constraint.
func (s *Service) IssueForOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentSuccess {
		return nil, ErrOrderNotPaid
	}

	existing, err := s.DB.GetTicketsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	shares := pricing.SplitPerTicket(order.FinalAmountMinor, order.Quantity)
	now := time.Now()

	batch := make([]models.Ticket, order.Quantity)
	for i := range batch {
		ticket := models.Ticket{
			TicketID:       utils.GenerateTicketID(),
			OrderID:        order.ID,
			Seq:            i + 1,
			UserID:         order.UserID,
			EventID:        order.EventID,
			PricePaidMinor: shares[i],
			IssuedAt:       now,
		}

		qrBytes, err := s.QR.GenerateEncryptedQR(qr.Payload{
			TicketID: ticket.TicketID,
			OrderID:  ticket.OrderID,
			EventID:  ticket.EventID,
			Seq:      ticket.Seq,
			IssuedAt: ticket.IssuedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR for ticket %s: %w", ticket.TicketID, err)
		}
		ticket.QRCode = qrBytes
		batch[i] = ticket
	}

	if err := s.DB.InsertTickets(ctx, batch); err != nil {
		// A concurrent issuer may have won the unique constraint race; if a
		// complete batch exists now, hand that one back.
		issued, readErr := s.DB.GetTicketsByOrder(ctx, orderID)
		if readErr == nil && len(issued) == order.Quantity {
			return issued, nil
		}
		return nil, fmt.Errorf("failed to insert tickets for order %s: %w", orderID, err)
	}

	for _, ticket := range batch {
		s.Logger.LogTicket("ISSUE", ticket.TicketID, fmt.Sprintf("order=%s seq=%d price=%d", ticket.OrderID, ticket.Seq, ticket.PricePaidMinor))
		if s.Kafka != nil {
			if err := s.Kafka.PublishTicketIssued(ticket); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish ticket issued for %s: %v", ticket.TicketID, err))
			}
		}
	}

	return batch, nil
}

// Validate marks a ticket as used at the door. Only holders of the
// ticket-validation capability may call it, and each ticket validates exactly
// once.
func (s *Service) Validate(ctx context.Context, validatorID, ticketID string) (*models.Ticket, error) {
	allowed, err := s.Authz.Can(ctx, validatorID, auth.CapabilityValidateTickets)
	if err != nil {
		return nil, fmt.Errorf("failed to check validator capability: %w", err)
	}
	if !allowed {
		return nil, ErrNotAllowed
	}

	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	rows, err := s.DB.MarkUsed(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate ticket %s: %w", ticketID, err)
	}
	if rows == 0 {
		return nil, ErrTicketUsed
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.Logger.LogTicket("VALIDATE", ticketID, fmt.Sprintf("validated by %s", validatorID))
	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketValidated(*ticket); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish ticket validated for %s: %v", ticketID, err))
		}
	}

	return ticket, nil
}

func (s *Service) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

func (s *Service) ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByUser(ctx, userID)
}

func (s *Service) ListTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByEvent(ctx, eventID)
}

func (s *Service) getTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}
