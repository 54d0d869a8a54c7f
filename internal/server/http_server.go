package server

import (
	"net/http"
	"time"

	"github.com/agendateonline/agendate/api"
	echoapi "github.com/agendateonline/agendate/api/echo"
	ginapi "github.com/agendateonline/agendate/api/gin"
	"github.com/agendateonline/agendate/config"
	"github.com/agendateonline/agendate/log"
	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewHTTPServer creates the HTTP server on the engine selected by cfg.HTTPEngine.
// /metrics serves gatherer.
func NewHTTPServer(cfg *config.ServerConfig, appLogger log.Logger, h api.Handlers, gatherer prometheus.Gatherer) *http.Server {
	var handler http.Handler
	if cfg.HTTPEngine == config.EngineEcho {
		handler = newEchoHandler(appLogger, h, gatherer)
	} else {
		handler = newGinHandler(cfg, appLogger, h, gatherer)
	}

	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func newGinHandler(cfg *config.ServerConfig, appLogger log.Logger, h api.Handlers, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			appLogger.Error(c.Request.Context(), "HTTP Request", c.Errors.Last().Err, fields)
		} else {
			appLogger.Info(c.Request.Context(), "HTTP Request", fields)
		}
	})

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(cfg.OtelServiceName))
	}
	router.Use(ginapi.SecurityHeadersMiddleware())

	ginapi.NewPaymentsAPI(h).RegisterRoutes(router)
	router.GET(api.PathMetrics, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}

func newEchoHandler(appLogger log.Logger, h api.Handlers, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := log.Fields{
				"method":     v.Method,
				"path":       v.URIPath,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"ip":         v.RemoteIP,
				"user_agent": v.UserAgent,
			}
			if v.Error != nil {
				appLogger.Error(c.Request().Context(), "HTTP Request", v.Error, fields)
			} else {
				appLogger.Info(c.Request().Context(), "HTTP Request", fields)
			}
			return nil
		},
	}))
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	}))

	echoapi.NewPaymentsAPI(h).RegisterRoutes(e)
	e.GET(api.PathMetrics, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return e
}
