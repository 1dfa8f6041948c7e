package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zylpheon/TheZylpheonAdmin/models"
)

// OrderEventTally is a running aggregate over consumed order events: orders
// placed, revenue placed and the latest status seen per order.
type OrderEventTally struct {
	mu       sync.Mutex
	placed   int
	revenue  decimal.Decimal
	byStatus map[models.OrderStatus]int
	latest   map[uint]models.OrderStatus
}

// NewOrderEventTally creates an empty tally.
func NewOrderEventTally() *OrderEventTally {
	return &OrderEventTally{
		revenue:  decimal.Zero,
		byStatus: map[models.OrderStatus]int{},
		latest:   map[uint]models.OrderStatus{},
	}
}

// Apply folds one event into the tally. Redelivered order.created events are
// counted once.
func (t *OrderEventTally) Apply(event OrderEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	previous, seen := t.latest[event.OrderID]
	if event.Type == EventOrderCreated {
		if seen {
			return
		}
		t.placed++
		t.revenue = t.revenue.Add(event.TotalAmount)
	}
	if seen {
		t.byStatus[previous]--
	}
	t.byStatus[event.Status]++
	t.latest[event.OrderID] = event.Status
}

// OrderTallySnapshot is a point-in-time copy of an OrderEventTally.
type OrderTallySnapshot struct {
	Placed   int                        `json:"placed"`
	Revenue  decimal.Decimal            `json:"revenue"`
	ByStatus map[models.OrderStatus]int `json:"by_status"`
}

func (t *OrderEventTally) Snapshot() OrderTallySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	byStatus := make(map[models.OrderStatus]int, len(t.byStatus))
	for status, n := range t.byStatus {
		if n > 0 {
			byStatus[status] = n
		}
	}
	return OrderTallySnapshot{Placed: t.placed, Revenue: t.revenue, ByStatus: byStatus}
}

// decodeOrderEvent parses a payload strictly; unknown fields are rejected.
func decodeOrderEvent(payload []byte) (OrderEvent, error) {
	var event OrderEvent
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&event); err != nil {
		return OrderEvent{}, err
	}
	if event.OrderID == 0 || event.Type == "" {
		return OrderEvent{}, errors.New("order event without type or order id")
	}
	return event, nil
}

// OrderEventConsumer reads order events published by OrderService and feeds
// them into a tally.
type OrderEventConsumer struct {
	group sarama.ConsumerGroup
	topic string
	tally *OrderEventTally
	log   *zap.Logger
}

// NewOrderEventConsumer joins groupID on the given brokers.
func NewOrderEventConsumer(brokers []string, groupID, topic string, tally *OrderEventTally, log *zap.Logger) (*OrderEventConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Offsets.AutoCommit.Enable = true
	config.Consumer.IsolationLevel = sarama.ReadCommitted
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Sarama consumer group: %w", err)
	}
	return &OrderEventConsumer{group: group, topic: topic, tally: tally, log: log}, nil
}

// Run consumes until ctx is cancelled.
func (c *OrderEventConsumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.log.Warn("kafka consumer error", zap.Error(err))
		}
	}()

	handler := &orderEventHandler{tally: c.tally, log: c.log}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("consume %q: %w", c.topic, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *OrderEventConsumer) Close() error {
	return c.group.Close()
}

// orderEventHandler implements sarama.ConsumerGroupHandler.
type orderEventHandler struct {
	tally *OrderEventTally
	log   *zap.Logger
}

func (h *orderEventHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *orderEventHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *orderEventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handle(msg)
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle applies one message. Undecodable messages are logged and skipped so
// they cannot block the partition.
func (h *orderEventHandler) handle(msg *sarama.ConsumerMessage) {
	event, err := decodeOrderEvent(msg.Value)
	if err != nil {
		h.log.Warn("skipping undecodable order event",
			zap.String("topic", msg.Topic),
			zap.Int32("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.ByteString("raw", msg.Value),
			zap.Error(err),
		)
		return
	}

	h.tally.Apply(event)
	h.log.Info("order event",
		zap.String("type", event.Type),
		zap.Uint("order_id", event.OrderID),
		zap.String("status", string(event.Status)),
		zap.String("total_amount", event.TotalAmount.String()),
	)
}
