package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agendateonline/agendate/api"
	"github.com/agendateonline/agendate/config"
	"github.com/agendateonline/agendate/internal/metrics"
	"github.com/agendateonline/agendate/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPServer_Engines(t *testing.T) {
	for _, engine := range []string{config.EngineGin, config.EngineEcho} {
		t.Run(engine, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			metrics.InitCustomMetrics(reg)
			metrics.WebhooksReceivedTotal.WithLabelValues("applied").Inc()

			cfg := &config.ServerConfig{HTTPPort: "0", HTTPEngine: engine, LogLevel: "info"}
			h := api.Handlers{Health: func(context.Context) error { return nil }}
			srv := NewHTTPServer(cfg, log.NewZerologAdapter(zerolog.Nop()), h, reg)
			require.NotNil(t, srv.Handler)
			assert.Equal(t, ":0", srv.Addr)

			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, api.PathHealth, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

			rec = httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, api.PathMetrics, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "agendate_webhooks_received_total")
		})
	}
}
