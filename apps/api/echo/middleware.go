package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/assistant/core"
)

// requestLogger logs one line per request through the application logger.
func requestLogger(logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				// let the error handler write the response so the logged status is the final one
				ctx.Error(err)
			}

			logger.Info("http request", map[string]interface{}{
				"method":     ctx.Request().Method,
				"uri":        ctx.Request().RequestURI,
				"status":     ctx.Response().Status,
				"duration":   time.Since(start).String(),
				"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
			})
			return nil
		}
	}
}

type httpMetrics struct {
	requestsTotal *prometheus.CounterVec
	requestDur    *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by method, route and status code.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "route", "status"}),
	}
	m.requestsTotal = register(reg, m.requestsTotal)
	m.requestDur = register(reg, m.requestDur)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// middleware records request counts and durations. Routes are the registered paths (e.g. /api/notes/:id)
// to keep label cardinality bounded.
func (m *httpMetrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			status := strconv.Itoa(ctx.Response().Status)
			method := ctx.Request().Method

			m.requestsTotal.WithLabelValues(method, route, status).Inc()
			m.requestDur.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
