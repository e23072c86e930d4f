package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Producer публикует события заказов в Kafka синхронно: подтверждение
// партиции и оффсета приходит до возврата из PublishOrderEvent.
type Producer struct {
	sync   sarama.SyncProducer
	logger *log.Entry
}

// NewProducer создает producer с идемпотентной отправкой и подтверждением
// от всех in-sync реплик.
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // требование идемпотентного режима

	sync, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{
		sync:   sync,
		logger: log.WithField("component", "kafka-producer"),
	}, nil
}

// PublishOrderEvent отправляет событие в топик заказов. Ключом служит id
// товара, чтобы события по одному товару попадали в одну партицию и
// сохраняли порядок.
func (p *Producer) PublishOrderEvent(event *OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     TopicOrderEvents,
		Key:       sarama.StringEncoder(event.ProductID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.Timestamp,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
		},
	}

	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic":    TopicOrderEvents,
			"order_id": event.OrderID,
		}).Error("failed to send order event to kafka")
		return fmt.Errorf("send order event: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     TopicOrderEvents,
		"order_id":  event.OrderID,
		"partition": partition,
		"offset":    offset,
	}).Debug("order event sent to kafka")

	return nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if err := p.sync.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
