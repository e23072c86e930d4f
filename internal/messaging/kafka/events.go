package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderPlaced EventType = "order.placed"
)

// Topics для Kafka
const (
	TopicOrderEvents = "orderflow.order.events"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	UserID     string                 `json:"user_id"`
	ProductID  string                 `json:"product_id"`
	Quantity   int32                  `json:"quantity"`
	TotalMinor int64                  `json:"total_minor"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderPlacedEvent создает событие успешно оформленного заказа
func NewOrderPlacedEvent(orderID, userID, productID string, quantity int32, totalMinor int64) *OrderEvent {
	return &OrderEvent{
		EventType:  EventTypeOrderPlaced,
		OrderID:    orderID,
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalMinor: totalMinor,
		Timestamp:  time.Now(),
	}
}
