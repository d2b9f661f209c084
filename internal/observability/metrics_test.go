package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	// Given: every metric observed once so vectors show up in the registry
	GamesStartedTotal.WithLabelValues("X").Inc()
	GamesFinishedTotal.WithLabelValues("draw").Inc()
	MovesTotal.WithLabelValues(ActorBot).Inc()
	BotThinkDuration.Observe(0.001)
	RequestsTotal.WithLabelValues("GET", "2xx").Inc()
	RequestDuration.WithLabelValues("GET").Observe(0.01)

	// When: gathering the default registry
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	// Then: all metrics are present
	expected := map[string]bool{
		"tictactoe_games_started_total":           false,
		"tictactoe_games_finished_total":          false,
		"tictactoe_moves_total":                   false,
		"tictactoe_bot_think_seconds":             false,
		"tictactoe_http_requests_total":           false,
		"tictactoe_http_request_duration_seconds": false,
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		assert.True(t, found, "metric %s not registered", name)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	t.Run("Records the status class", func(t *testing.T) {
		// Given: a handler that rejects the request
		handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		before := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodPost, "4xx"))

		// When: a request passes through the middleware
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", nil))

		// Then: the 4xx counter grows by one and the response is untouched
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.InDelta(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodPost, "4xx")), 0)
	})

	t.Run("Implicit 200 is counted as 2xx", func(t *testing.T) {
		handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong"))
		}))
		before := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "2xx"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, "pong", rec.Body.String())
		assert.InDelta(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "2xx")), 0)
	})
}
