package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish writes one message to the given topic.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishJSON marshals v and publishes it.
func (p *Producer) PublishJSON(topic string, key string, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(topic, key, value)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
