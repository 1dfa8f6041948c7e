package services

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zylpheon/TheZylpheonAdmin/models"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the Kafka payload published after an order commit.
type OrderEvent struct {
	EventID     string             `json:"event_id"`
	Type        string             `json:"type"`
	OrderID     uint               `json:"order_id"`
	UserID      *uint              `json:"user_id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func newOrderEvent(eventType string, order *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  at.UTC(),
	}
}

func (e OrderEvent) key() []byte {
	return []byte(strconv.FormatUint(uint64(e.OrderID), 10))
}

func (e OrderEvent) encode() ([]byte, error) {
	return json.Marshal(e)
}
