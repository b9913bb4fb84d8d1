package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ijsmallman/hass-history-etl/internal/config"
	"github.com/ijsmallman/hass-history-etl/internal/domain"
)

// Writer produces normalized temperature readings to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
	clock  clockwork.Clock
	unit   string
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, clock: clockwork.NewRealClock(), unit: cfg.TargetUnit}
}

// PublishBatch serializes and publishes a batch of readings to the sink
// topic in a single WriteMessages call.
func (w *Writer) PublishBatch(ctx context.Context, readings []domain.TemperatureReading) error {
	if len(readings) == 0 {
		return nil
	}
	exportedAt := w.clock.Now()
	msgs := make([]kafkago.Message, len(readings))
	for i := range readings {
		msg, err := serializeToMessage(readings[i], w.unit, exportedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a reading into a Kafka message keyed by sensor
// name, so one sensor's readings land on one partition in order.
func serializeToMessage(reading domain.TemperatureReading, unit string, exportedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(reading)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(reading.Name),
		Value: data,
		Time:  reading.Timestamp,
		Headers: []kafkago.Header{
			{Key: "unit", Value: []byte(unit)},
			{Key: "exported_at", Value: []byte(exportedAt.Format(time.RFC3339))},
		},
	}, nil
}
