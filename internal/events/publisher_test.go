package events_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alovak/brcode-playground/internal/events"
	"github.com/stretchr/testify/require"
)

var event = events.PaymentGenerated{
	ID:     "0190b6d2-0000-7000-8000-000000000001",
	Amount: "10.00",
	Date:   "2024-03-01T12:30:00.000Z",
	BRCode: "00020126380014BR.GOV.BCB.PIX0116user@example.com520400005303986540510.005802BR5913Fulano de Tal6009Sao Paulo62070503***6304AF9F",
}

func TestNewRecord(t *testing.T) {
	rec, err := events.NewRecord("payments", event)
	require.NoError(t, err)
	require.Equal(t, "payments", rec.Topic)
	require.Equal(t, event.ID, string(rec.Key))

	var got events.PaymentGenerated
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	require.Equal(t, event, got)
	require.Contains(t, string(rec.Value), `"br_code":`)
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := events.NewPublisher(events.Config{Topic: "payments"}, "brcode_test_a")
	require.Error(t, err)

	_, err = events.NewPublisher(events.Config{Brokers: []string{"localhost:9092"}}, "brcode_test_b")
	require.Error(t, err)
}

func TestPublisher_MetricsHandler(t *testing.T) {
	p, err := events.NewPublisher(events.Config{Brokers: []string{"127.0.0.1:1"}, Topic: "payments"}, "brcode_test_c")
	require.NoError(t, err)
	defer p.Close()

	w := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

// Requires a running broker: KAFKA_BROKERS=localhost:9092
func TestPublisher_Integration(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	p, err := events.NewPublisher(events.Config{Brokers: strings.Split(brokers, ","), Topic: "brcode.payments.test"}, "brcode_test_d")
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, p.Publish(ctx, event))
}
