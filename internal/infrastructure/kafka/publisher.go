package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type TransactionEvent struct {
	TransactionID  string `json:"transaction_id"`
	Type           string `json:"type"`
	TransferType   string `json:"transfer_type,omitempty"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	SentAmount     string `json:"sent_amount"`
	SentToken      string `json:"sent_token"`
	SettlementHash string `json:"settlement_hash,omitempty"`
	Status         string `json:"status"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *KafkaPublisher) Publish(event TransactionEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: msg,
		Time:  time.Now(),
	})
}
