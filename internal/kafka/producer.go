package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// writeTimeout ограничивает публикацию одного сообщения
const writeTimeout = 10 * time.Second

// OrderCreatedEvent тело события о созданном заказе
type OrderCreatedEvent struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	ProductIDs  []string  `json:"product_ids"`
	TotalAmount string    `json:"total_amount"`
	OrderDate   time.Time `json:"order_date"`
}

// Producer определяет интерфейс для публикации событий в Kafka.
type Producer interface {
	// PublishOrderCreated отправляет событие о созданном заказе.
	// Ключ сообщения — ID заказа, чтобы события одного заказа попадали в одну партицию.
	PublishOrderCreated(ctx context.Context, order domain.Order) error
	// Close закрывает соединение продюсера Kafka.
	Close() error
}

// kafkaProducer реализует интерфейс Producer, используя segmentio/kafka-go.
type kafkaProducer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewKafkaProducer создает и настраивает новый продюсер Kafka.
func NewKafkaProducer(brokers []string, topic string, log *logger.Logger) (Producer, error) {
	if len(brokers) == 0 {
		log.Errorw("Kafka brokers list is empty in config, cannot create producer")
		return nil, errors.New("kafka brokers are not configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
		ReadTimeout:  10 * time.Second,
	}

	log.Infow("Kafka producer initialized", "brokers", brokers, "topic", topic)

	return &kafkaProducer{
		writer: writer,
		log:    log,
	}, nil
}

// PublishOrderCreated преобразует заказ в JSON и отправляет событие в Kafka.
func (k *kafkaProducer) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	productIDs := make([]string, 0, len(order.Products))
	for _, p := range order.Products {
		productIDs = append(productIDs, p.ID.String())
	}

	event := OrderCreatedEvent{
		OrderID:     order.ID.String(),
		CustomerID:  order.CustomerID.String(),
		ProductIDs:  productIDs,
		TotalAmount: order.TotalAmount.StringFixed(2),
		OrderDate:   order.OrderDate,
	}

	messageValue, err := json.Marshal(event)
	if err != nil {
		k.log.Errorw("Failed to marshal order event to JSON for Kafka", "error", err, "orderID", event.OrderID)
		return fmt.Errorf("kafka: failed to marshal message data: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: messageValue,
		Time:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := k.writer.WriteMessages(writeCtx, message); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			k.log.Errorw("Kafka write timeout exceeded", "error", err, "orderID", event.OrderID)
		} else {
			k.log.Errorw("Failed to write message to Kafka", "error", err, "orderID", event.OrderID)
		}
		return wrapWriteError(err)
	}

	k.log.Infow("Successfully published message to Kafka", "topic", k.writer.Topic, "orderID", event.OrderID)
	return nil
}

// wrapWriteError помечает истекший дедлайн как ErrTimeoutExceeded, чтобы
// вызывающий мог отличить таймаут от прочих сбоев записи
func wrapWriteError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("kafka: write timeout: %w", domain.ErrTimeoutExceeded)
	}
	return fmt.Errorf("kafka: failed to write message: %w", err)
}

// Close закрывает соединение Kafka Writer.
func (k *kafkaProducer) Close() error {
	k.log.Infow("Closing Kafka producer writer...")
	if err := k.writer.Close(); err != nil {
		k.log.Errorw("Failed to close Kafka writer", "error", err)
		return fmt.Errorf("kafka: failed to close writer: %w", err)
	}
	k.log.Infow("Kafka producer writer closed successfully")
	return nil
}
