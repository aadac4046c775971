package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger-api/internal/application/stockledger"
)

var _ stockledger.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher publica eventos de movimientos confirmados en un topic Kafka.
// La clave del mensaje es el product_id, así los consumidores ven los movimientos
// de un producto en orden de partición.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher construye el publicador.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// PublishMovementRecorded serializa y envía el evento con timeout acotado.
func (p *KafkaPublisher) PublishMovementRecorded(ctx context.Context, event stockledger.MovementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal movement event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write movement event: %w", err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher descarta los eventos; se usa cuando Kafka no está configurado.
type NopPublisher struct{}

// PublishMovementRecorded no hace nada.
func (NopPublisher) PublishMovementRecorded(context.Context, stockledger.MovementEvent) error {
	return nil
}
