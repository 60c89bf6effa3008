package metrics

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	requests, reqErr := meter.Int64Counter(
		namespace+"_http_requests_total",
		metric.WithDescription("HTTP requests by route, status and auth scheme"),
		metric.WithUnit("{request}"),
	)
	duration, durErr := meter.Float64Histogram(
		namespace+"_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	)
	if err := errors.Join(reqErr, durErr); err != nil {
		return nil, err
	}
	return &httpInstruments{requests: requests, duration: duration}, nil
}

// HTTPMetricsMiddleware counts and times requests. Labels are the matched
// route, never the raw path, so unknown URLs collapse into "unknown".
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	instruments, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		opt := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", route),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
			attribute.String("auth_scheme", authScheme(c.GetHeader("Authorization"))),
		)

		ctx := c.Request.Context()
		instruments.requests.Add(ctx, 1, opt)
		instruments.duration.Record(ctx, time.Since(start).Seconds(), opt)
	}
}

// authScheme reduces an Authorization header to a bounded label value.
func authScheme(header string) string {
	scheme, _, _ := strings.Cut(strings.TrimSpace(header), " ")
	switch scheme = strings.ToLower(scheme); scheme {
	case "":
		return "none"
	case "hawk", "mac":
		return scheme
	default:
		return "other"
	}
}
