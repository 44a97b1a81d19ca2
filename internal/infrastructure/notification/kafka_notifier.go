package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/segmentio/kafka-go"
)

var _ inventory.Notifier = (*KafkaNotifier)(nil)

// Event mensaje publicado en el tópico de alertas.
type Event struct {
	Category    string    `json:"category"`
	ReferenceID string    `json:"reference_id"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// messageWriter subconjunto de *kafka.Writer usado por el notifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publica notificaciones en Kafka con la referencia como clave,
// así los eventos de un mismo ítem caen en la misma partición.
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// defaultNotifyTimeout tope de una publicación cuando no se configura otro.
const defaultNotifyTimeout = 2 * time.Second

// NewKafkaNotifier crea el productor sobre brokers/topic. timeout acota cada
// publicación; con timeout <= 0 se usan 2s.
func NewKafkaNotifier(brokers []string, topic string, timeout time.Duration, log *logger.Logger) *KafkaNotifier {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: timeout,
		ReadTimeout:  timeout,
	}
	return newKafkaNotifier(writer, timeout, log)
}

func newKafkaNotifier(w messageWriter, timeout time.Duration, log *logger.Logger) *KafkaNotifier {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &KafkaNotifier{writer: w, timeout: timeout, log: log.Component("kafka_notifier"), now: time.Now}
}

// Notify publica el evento de forma síncrona y espera el ack de todas las réplicas,
// como mucho durante el timeout configurado. Quien lo llama tras un commit no queda
// bloqueado más allá de ese tope aunque el broker no responda.
func (n *KafkaNotifier) Notify(ctx context.Context, category, referenceID, message string) error {
	event := Event{Category: category, ReferenceID: referenceID, Message: message, OccurredAt: n.now().UTC()}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(referenceID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "category", Value: []byte(category)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}
	n.log.Debug().Str("category", category).Str("reference_id", referenceID).Msg("notificación publicada")
	return nil
}

// Close libera el productor.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
