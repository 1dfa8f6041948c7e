package services

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// IKafkaService defines the interface for Kafka operations.
type IKafkaService interface {
	PushMessage(topic string, key, message []byte) error
	Close() error
}

// KafkaService implements IKafkaService using Sarama.
type KafkaService struct {
	producer sarama.SyncProducer
	log      *zap.Logger
}

// NewKafkaService creates a new KafkaService instance.
func NewKafkaService(brokers []string, log *zap.Logger) (IKafkaService, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true // required by SyncProducer
	config.Producer.Timeout = 5 * time.Second
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // idempotence requires a single in-flight request

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Sarama producer: %w", err)
	}

	log.Info("kafka producer connected", zap.Strings("brokers", brokers))
	return NewKafkaServiceWithProducer(producer, log), nil
}

// NewKafkaServiceWithProducer wraps an existing producer.
func NewKafkaServiceWithProducer(producer sarama.SyncProducer, log *zap.Logger) IKafkaService {
	return &KafkaService{producer: producer, log: log}
}

// PushMessage sends a message to the specified Kafka topic.
func (s *KafkaService) PushMessage(topic string, key, message []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(message),
	}
	if len(key) > 0 {
		msg.Key = sarama.ByteEncoder(key)
	}

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %q: %w", topic, err)
	}
	s.log.Debug("kafka message sent",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (s *KafkaService) Close() error {
	return s.producer.Close()
}

// NoopKafkaService drops every message. Used when Kafka is disabled.
type NoopKafkaService struct{}

func (NoopKafkaService) PushMessage(string, []byte, []byte) error { return nil }
func (NoopKafkaService) Close() error                             { return nil }
