//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/climate-forecast-engine/internal/adapter/kafka"
	"github.com/couchcryptid/climate-forecast-engine/internal/adapter/power"
	"github.com/couchcryptid/climate-forecast-engine/internal/config"
	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
	"github.com/couchcryptid/climate-forecast-engine/internal/observability"
	"github.com/couchcryptid/climate-forecast-engine/internal/pipeline"
)

const testForecastTopic = "test-forecasts"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("forecast-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// archiveServer serves a synthesized week for every year requested.
func archiveServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		start, err := time.Parse("20060102", r.URL.Query().Get("start"))
		require.NoError(t, err)
		end, err := time.Parse("20060102", r.URL.Query().Get("end"))
		require.NoError(t, err)

		series := domain.Synthesize(pipeline.NewRandSource(ptr(uint64(start.Year())))(), 39.74, -104.99, start, end)
		body, err := power.EncodeDaily(series, 39.74, -104.99, start)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
}

func ptr[T any](v T) *T { return &v }

// TestForecastPublishedToKafka runs a forecast end to end against a fake
// archive and reads the published result back from a real broker.
func TestForecastPublishedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	broker := startKafka(ctx, t)
	createTopic(t, broker, testForecastTopic)

	var archiveCalls atomic.Int32
	srv := archiveServer(t, &archiveCalls)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetricsForTesting()
	archive := power.NewClient(power.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}, metrics, discardLogger())
	fetcher := pipeline.NewFetcher(archive, 4, discardLogger(), metrics)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaForecastTopic: testForecastTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(fetcher, pipeline.Options{
		HistoryYears: 5,
		Rand:         pipeline.NewRandSource(ptr(uint64(7))),
		Publisher:    writer,
	}, discardLogger(), metrics)

	target := domain.CalendarDate{Year: 2025, Month: time.December, Day: 25}
	result, err := p.Forecast(ctx, domain.ForecastRequest{
		ID:         "integration-1",
		Name:       "Denver",
		Latitude:   ptr(39.74),
		Longitude:  ptr(-104.99),
		TargetDate: &target,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), archiveCalls.Load())
	assert.Equal(t, domain.DataSourceArchive, result.DataSource)
	assert.Equal(t, 5, result.HistoricalContext.YearsOfData)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testForecastTopic,
		GroupID:     fmt.Sprintf("test-forecasts-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from forecast topic")

	assert.Equal(t, "integration-1", string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2025-12-25", headers["target_date"])
	assert.Equal(t, "2025-06-01T09:00:00Z", headers["generated_at"])

	var published domain.ForecastResult
	require.NoError(t, json.Unmarshal(msg.Value, &published))
	assert.Equal(t, result.ID, published.ID)
	assert.Equal(t, result.Forecast, published.Forecast)
	assert.Equal(t, result.Probabilities, published.Probabilities)
	assert.True(t, domain.ValidateResponse(published).Valid)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ForecastsPublished))
}
