package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rudresh69/SIH2025/internal/config"
	"github.com/rudresh69/SIH2025/internal/sim"
)

// Publisher produces sensor frames to a Kafka topic.
// It implements broadcast.FramePublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishFrame serializes and publishes one frame to the sink topic.
func (p *Publisher) PublishFrame(ctx context.Context, frame sim.Frame) error {
	msg, err := serializeToMessage(frame)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a frame into a Kafka message. The timestamp is
// the key so frames from one run land on one partition in order.
func serializeToMessage(frame sim.Frame) (kafkago.Message, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize frame: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(frame.Timestamp.UTC().Format(time.RFC3339Nano)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "label", Value: []byte(strconv.Itoa(frame.Label))},
			{Key: "phase", Value: []byte(frame.Phase)},
		},
	}, nil
}
