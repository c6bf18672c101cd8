// Package metrics counts requests and observes latency with prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/kildevaeld/strong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ruter",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, by method and status.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ruter",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds, by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Wrap observes every request passing through, resolving the status the
// same way the server will.
func (m *Metrics) Wrap() ruter.Wrap {
	return func(next ruter.Part) ruter.Part {
		return func(ctx *httpcontext.Context) (ruter.Result, error) {
			start := time.Now()

			res, err := next(ctx)

			method := ctx.Request().Method
			code := resolveStatus(ctx, res, err)

			m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
			m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())

			return res, err
		}
	}
}

func resolveStatus(ctx *httpcontext.Context, res ruter.Result, err error) int {
	if err != nil {
		if httperr, ok := err.(*strong.HttpError); ok {
			return httperr.StatusCode()
		}
		return strong.StatusInternalServerError
	}

	if !res.Matched() {
		return strong.StatusNotFound
	}

	rctx := res.Context()
	if rctx == nil {
		rctx = ctx
	}
	code := rctx.StatusCode()
	if code == 0 {
		if rctx.Body() != nil {
			return strong.StatusOK
		}
		return strong.StatusNotFound
	}
	return code
}

// Handler exposes the default registry, mount it on a route.
func Handler() ruter.Part {
	return ruter.WrapHTTP(promhttp.Handler())
}

// HandlerFor exposes a specific gatherer.
func HandlerFor(g prometheus.Gatherer) ruter.Part {
	return ruter.WrapHTTP(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
