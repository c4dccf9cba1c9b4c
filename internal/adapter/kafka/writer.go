package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/config"
	"github.com/couchcryptid/opencovid-fr/internal/dashboard"
	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Snapshot is the message value published after every successful load.
type Snapshot struct {
	LoadedAt time.Time      `json:"loaded_at"`
	Rows     map[string]int `json:"rows"`
	Map      dashboard.Map  `json:"map"`
}

// Writer publishes the latest incidence map to a Kafka topic.
// PublishSnapshot matches pipeline.Listener.
type Writer struct {
	writer  messageWriter
	table   *geo.Table
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, table *geo.Table, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, table: table, metrics: metrics, logger: logger}
}

// PublishSnapshot serializes the incidence map of ds and writes it as a
// single message keyed by rolling week.
func (w *Writer) PublishSnapshot(ctx context.Context, ds *domain.Dataset) error {
	snap := Snapshot{
		LoadedAt: ds.LoadedAt(),
		Rows:     ds.RowCounts(),
		Map:      dashboard.IncidenceMapOf(ds, w.table),
	}
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish incidence snapshot: %w", err)
	}

	w.metrics.SnapshotsPublished.Inc()
	w.logger.Info("incidence snapshot published",
		"rolling_week", snap.Map.RollingWeek,
		"frames", len(snap.Map.Frames),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Snapshot into a Kafka message.
func serializeToMessage(snap Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incidence snapshot: %w", err)
	}
	key := snap.Map.RollingWeek
	if key == "" {
		key = snap.LoadedAt.Format(domain.DayLayout)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "metric", Value: []byte(snap.Map.Metric)},
			{Key: "loaded_at", Value: []byte(snap.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}
