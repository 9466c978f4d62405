package kafka

import "ms-booking/internal/models"

// Typed publish helpers for the service's lifecycle events. Keys are entity
// ids so per-entity ordering holds within a partition.

func (p *Producer) PublishOrderCreated(order models.Order) error {
	return p.PublishJSON(TopicOrderCreated, order.ID, order)
}

func (p *Producer) PublishOrderPaid(order models.Order) error {
	return p.PublishJSON(TopicOrderPaid, order.ID, order)
}

func (p *Producer) PublishOrderFailed(order models.Order) error {
	return p.PublishJSON(TopicOrderFailed, order.ID, order)
}

func (p *Producer) PublishTicketIssued(ticket models.Ticket) error {
	return p.PublishJSON(TopicTicketIssued, ticket.TicketID, ticket)
}

func (p *Producer) PublishTicketValidated(ticket models.Ticket) error {
	return p.PublishJSON(TopicTicketValidated, ticket.TicketID, ticket)
}

func (p *Producer) PublishUserCreated(user models.User) error {
	return p.PublishJSON(TopicUserCreated, user.ID, user)
}
