package client

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes, recorded as the "outcome" metric label and log attribute.
const (
	outcomeOK        = "ok"
	outcomeNotFound  = "not_found"
	outcomeForbidden = "forbidden"
	outcomeUpstream  = "upstream"
	outcomeInvalid   = "invalid_response"
	outcomeTransport = "transport"
)

// classify maps a call error to its outcome.
func classify(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrForbidden):
		return outcomeForbidden
	case errors.As(err, &se):
		return outcomeUpstream
	case errors.Is(err, ErrInvalidResponse):
		return outcomeInvalid
	default:
		return outcomeTransport
	}
}

type callMetrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newCallMetrics(reg prometheus.Registerer) (*callMetrics, error) {
	calls, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchgw",
		Subsystem: "client",
		Name:      "calls_total",
		Help:      "Gateway calls by operation and outcome.",
	}, []string{"operation", "outcome"}))
	if err != nil {
		return nil, err
	}

	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "searchgw",
		Subsystem: "client",
		Name:      "call_duration_seconds",
		Help:      "Gateway call round-trip time in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}

	return &callMetrics{calls: calls, latency: latency}, nil
}

// register adds c to reg. When several clients share a registry the first
// registered collector wins and is returned.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("searchgw: register client metrics: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("searchgw: client metric held by %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer records every gateway call. A nil observer records nothing.
type observer struct {
	logger  *slog.Logger
	metrics *callMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newCallMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one call. requestID is the X-Request-ID the gateway answered
// with, empty when no answer arrived.
func (o *observer) observe(op string, start time.Time, requestID string, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	outcome := classify(err)

	if o.metrics != nil {
		o.metrics.calls.WithLabelValues(op, outcome).Inc()
		o.metrics.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}

	attrs := []any{"op", op, "outcome", outcome, "duration", elapsed}
	if requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	switch outcome {
	case outcomeOK, outcomeNotFound:
		o.logger.Debug("gateway call", attrs...)
	default:
		o.logger.Warn("gateway call failed", append(attrs, "error", err)...)
	}
}
