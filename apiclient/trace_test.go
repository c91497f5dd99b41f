package apiclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSend_RecordsSpansAndPropagatesContext(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	otel.SetTextMapPropagator(propagation.TraceContext{})

	f := setupTestFixture(t)
	f.login(t, expiredAccess)

	_, err := f.client.Send(context.Background(), get("/entrepreneur"))
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	refresh, send := spans[0], spans[1]
	require.Equal(t, "imvestor.refresh", refresh.Name())
	require.Equal(t, "imvestor.send", send.Name())
	require.Equal(t, send.SpanContext().SpanID(), refresh.Parent().SpanID())
	require.Contains(t, send.Attributes(), attribute.Int("http.response.status_code", http.StatusOK))

	f.backend.mu.Lock()
	defer f.backend.mu.Unlock()
	require.Contains(t, f.backend.lastTraceparent, send.SpanContext().TraceID().String())
}
