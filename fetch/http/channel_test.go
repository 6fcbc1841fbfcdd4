package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

func TestChannelGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/json":
			w.Write([]byte(`{"hello":"world"}`))
		default:
			w.Write([]byte("plain body"))
		}
	}))
	t.Cleanup(server.Close)

	channel := NewChannel(WithClient(server.Client()), WithHeader("Authorization", "Bearer token"))

	body, err := channel.Get(context.Background(), server.URL+"/text")
	require.NoError(t, err)
	require.Equal(t, "plain body", string(body))

	var out struct {
		Hello string `json:"hello"`
	}
	require.NoError(t, channel.GetJSON(context.Background(), server.URL+"/json", &out))
	require.Equal(t, "world", out.Hello)

	t.Run("status error", func(t *testing.T) {
		anon := NewChannel(WithClient(server.Client()))
		_, err := anon.Get(context.Background(), server.URL+"/text")
		require.Error(t, err)
		require.Equal(t, http.StatusUnauthorized, StatusOf(err))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		err := channel.GetJSON(context.Background(), server.URL+"/text", &out)
		require.Error(t, err)
		require.Equal(t, 0, StatusOf(err))
	})
}

func TestChannelPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "key", r.Header.Get("X-API-Key"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "world", in["hello"])
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	channel := NewChannel(WithClient(server.Client()), WithHeader("X-API-Key", "key"), WithSuccessStatusCode(http.StatusOK, http.StatusAccepted))
	_, err := channel.PostJSON(context.Background(), server.URL, map[string]string{"hello": "world"})
	require.NoError(t, err)

	strict := NewChannel(WithClient(server.Client()), WithHeader("X-API-Key", "key"))
	_, err = strict.PostJSON(context.Background(), server.URL, map[string]string{"hello": "world"})
	require.Equal(t, http.StatusAccepted, StatusOf(err))
}

func TestChannelContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	channel := NewChannel(WithClient(server.Client()))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := channel.Get(ctx, server.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannelLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(server.Close)

	channel := NewChannel(WithClient(server.Client()), WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))

	_, err := channel.Get(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = channel.Get(ctx, server.URL)
	require.Error(t, err)
}

func TestChannelPropagatesTraceContext(t *testing.T) {
	const (
		requestTraceIDHex = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
		requestSpanIDHex  = "bbbbbbbbbbbbbbbb"
		expectedRequest   = "00-" + requestTraceIDHex + "-" + requestSpanIDHex + "-01"
	)

	var seenRequestTrace string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenRequestTrace = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	channel := NewChannel(WithClient(server.Client()))

	restoreProp := setTraceContextPropagator()
	t.Cleanup(restoreProp)

	ctx := trace.ContextWithSpanContext(context.Background(), newSpanContext(t, requestTraceIDHex, requestSpanIDHex))

	_, err := channel.Get(ctx, server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if seenRequestTrace != expectedRequest {
		t.Fatalf("expected traceparent %q, got %q", expectedRequest, seenRequestTrace)
	}
}

func newSpanContext(t *testing.T, traceIDHex, spanIDHex string) trace.SpanContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		t.Fatalf("parsing trace ID: %v", err)
	}
	spanID, err := trace.SpanIDFromHex(spanIDHex)
	if err != nil {
		t.Fatalf("parsing span ID: %v", err)
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func setTraceContextPropagator() func() {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return func() {
		otel.SetTextMapPropagator(prev)
	}
}
