//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/ijsmallman/hass-history-etl/internal/adapter/kafka"
	"github.com/ijsmallman/hass-history-etl/internal/config"
	"github.com/ijsmallman/hass-history-etl/internal/domain"
	"github.com/ijsmallman/hass-history-etl/internal/observability"
	"github.com/ijsmallman/hass-history-etl/internal/pipeline"
	"github.com/ijsmallman/hass-history-etl/internal/store"
)

const sinkTopic = "test-temperature-readings"

// newRecorderDB builds a minimal recorder database with two temperature
// state rows and one humidity row that must not be exported.
func newRecorderDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "home-assistant_v2.db")
	db, err := sqlx.Connect("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE states (
		state_id INTEGER PRIMARY KEY,
		domain TEXT,
		entity_id TEXT,
		state TEXT,
		attributes TEXT,
		last_changed TEXT
	)`)
	require.NoError(t, err)

	seed := []struct{ domain, entity, state, attrs, changed string }{
		{"sensor", "sensor.attic_temperature", "19.5", `{"friendly_name":"Attic","unit_of_measurement":"°C"}`, "2023-01-14 07:30:00.124309"},
		{"sensor", "sensor.porch_temperature", "68", `{"friendly_name":"Porch","unit_of_measurement":"°F"}`, "2023-01-14 07:31:00.000221"},
		{"sensor", "sensor.humidity_1", "55", `{"friendly_name":"Humidity","unit_of_measurement":"%"}`, "2023-01-14 07:30:00.5"},
	}
	for _, s := range seed {
		_, err = db.Exec(`INSERT INTO states (domain, entity_id, state, attributes, last_changed) VALUES (?, ?, ?, ?, ?)`,
			s.domain, s.entity, s.state, s.attrs, s.changed)
		require.NoError(t, err)
	}

	return path
}

// TestExportPipeline verifies the full path: sqlite recorder store →
// export loop → kafka sink, against a real broker.
func TestExportPipeline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)

	logger := slog.Default()
	st, err := store.Open(newRecorderDB(t), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		KafkaBrokers:   brokers,
		KafkaSinkTopic: sinkTopic,
		TargetUnit:     "celsius",
	}
	writer := kafkaadapter.NewWriter(cfg, logger)
	t.Cleanup(func() { writer.Close() })

	exporter := pipeline.New(st, writer, 500*time.Millisecond, "celsius", logger, observability.NewMetricsForTesting(), nil)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go exporter.Run(runCtx)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    sinkTopic,
		GroupID:  "export-pipeline-test",
		MaxWait:  time.Second,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	t.Cleanup(func() { consumer.Close() })

	byName := map[string]domain.TemperatureReading{}
	for len(byName) < 2 {
		msg, err := consumer.ReadMessage(ctx)
		require.NoError(t, err, "read from sink topic")

		var reading domain.TemperatureReading
		require.NoError(t, json.Unmarshal(msg.Value, &reading))
		byName[reading.Name] = reading

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "celsius", headers["unit"])
		assert.NotEmpty(t, headers["exported_at"])
	}

	require.Contains(t, byName, "Attic")
	require.Contains(t, byName, "Porch")
	assert.InDelta(t, 19.5, byName["Attic"].Value, 1e-9)
	assert.InDelta(t, 20.0, byName["Porch"].Value, 1e-9)
	assert.NotContains(t, byName, "Humidity")
}
