package stripe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metadataStartTime = "start_time"

// MetricsCollector records per-attempt Prometheus metrics through interceptors.
type MetricsCollector struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsCollector registers the client metrics with registerer, or with
// the default registerer when nil. Registering twice reuses the existing
// collectors.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &MetricsCollector{
		requests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "stripe_client_requests_total",
			Help: "Total number of Stripe API attempts by method, route and status",
		}, []string{"method", "route", "status"}),
		errors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "stripe_client_errors_total",
			Help: "Total number of Stripe API attempts that failed in transport or returned status >= 400",
		}, []string{"method", "route"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "stripe_client_request_duration_seconds",
			Help:    "Duration of Stripe API attempts in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"}),
	}
}

// RequestInterceptor records the attempt start time.
func (m *MetricsCollector) RequestInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *OutboundRequest) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metadataStartTime] = time.Now()

		return nil
	}
}

// ResponseInterceptor records the outcome and latency of the attempt.
func (m *MetricsCollector) ResponseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *OutboundRequest, resp *Response) error {
		route := NormalizeRoute(req.Path)
		status := "error"

		if resp.Error == nil {
			status = strconv.Itoa(resp.StatusCode)
		}

		m.requests.WithLabelValues(req.Method, route, status).Inc()

		if resp.Error != nil || resp.StatusCode >= 400 {
			m.errors.WithLabelValues(req.Method, route).Inc()
		}

		if startTime, ok := req.Metadata[metadataStartTime].(time.Time); ok {
			m.duration.WithLabelValues(req.Method, route).Observe(time.Since(startTime).Seconds())
		}

		return nil
	}
}

// NormalizeRoute replaces object ids in path with :id so routes stay low
// cardinality, e.g. /v1/customers/cus_123 becomes /v1/customers/:id.
func NormalizeRoute(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if strings.Contains(segment, "_") && i > 1 && !isResourceName(segment) {
			segments[i] = ":id"
		}
	}

	return strings.Join(segments, "/")
}

// isResourceName reports whether a segment is a lowercase collection name
// such as payment_intents rather than an id such as pi_3Mtw.
func isResourceName(segment string) bool {
	for _, r := range segment {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}

	prefix, _, _ := strings.Cut(segment, "_")

	return len(prefix) > 3 || strings.HasSuffix(segment, "s")
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)

	err := registerer.Register(collector)
	if err != nil {
		alreadyRegistered := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}

			return existing
		}

		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}

	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)

	err := registerer.Register(collector)
	if err != nil {
		alreadyRegistered := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}

			return existing
		}

		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}

	return collector
}
