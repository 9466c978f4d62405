package kafka

import (
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderCreated    = "dejavu.order.created"
	TopicOrderPaid       = "dejavu.order.paid"
	TopicOrderFailed     = "dejavu.order.failed"
	TopicTicketIssued    = "dejavu.ticket.issued"
	TopicTicketValidated = "dejavu.ticket.validated"
	TopicUserCreated     = "dejavu.user.created"
)

// RequiredTopics lists every topic the service publishes to.
func RequiredTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderPaid,
		TopicOrderFailed,
		TopicTicketIssued,
		TopicTicketValidated,
		TopicUserCreated,
	}
}

// EnsureTopicsExist creates Kafka topics if they don't already exist.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", controller.Host)
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		topicConfigs := []kafka.TopicConfig{
			{
				Topic:             topic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			},
		}

		err = controllerConn.CreateTopics(topicConfigs...)
		if err != nil {
			if err.Error() == "kafka server: topic already exists" {
				continue
			}
			log.Printf("Error creating topic %s: %v", topic, err)
		}
	}

	// Give the broker a moment before the first writes.
	time.Sleep(1 * time.Second)
	return nil
}
