package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	cartsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_carts_created_total",
			Help: "Carts created, by owner kind.",
		},
		[]string{"owner_kind"},
	)

	cartItemMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_item_mutations_total",
			Help: "Successful cart item mutations, by operation.",
		},
		[]string{"operation"},
	)

	cartMergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_merges_total",
			Help: "Guest cart merges, by outcome.",
		},
		[]string{"outcome"},
	)

	cartVersionConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_version_conflicts_total",
			Help: "Optimistic concurrency conflicts hit while writing a cart.",
		},
		[]string{"operation"},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

func CartCreated(ownerKind string) {
	cartsCreatedTotal.WithLabelValues(ownerKind).Inc()
}

func ItemMutated(operation string) {
	cartItemMutationsTotal.WithLabelValues(operation).Inc()
}

// CartMerged records a merge outcome: "merged", "empty_guest" or "failed".
func CartMerged(outcome string) {
	cartMergesTotal.WithLabelValues(outcome).Inc()
}

func VersionConflict(operation string) {
	cartVersionConflictsTotal.WithLabelValues(operation).Inc()
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)
		pathPattern := RouteLabel(r.URL.Path)

		defer func() {

			duration := time.Since(start)
			statusCodeStr := strconv.Itoa(rw.statusCode)

			httpRequestsTotal.WithLabelValues(statusCodeStr, r.Method, pathPattern).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, pathPattern).Observe(duration.Seconds())
			httpRequestsInFlight.Dec()

		}()

		next.ServeHTTP(rw, r)

	})
}

// RouteLabel collapses cart and product ids so the path label stays low-cardinality.
// /api/v1/cart/abc/items/p1 becomes /api/v1/cart/{cartId}/items/{productId}.
func RouteLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	for i := 1; i < len(segments); i++ {
		switch segments[i-1] {
		case "cart":
			if segments[i] != "merge" {
				segments[i] = "{cartId}"
			}
		case "items":
			segments[i] = "{productId}"
		}
	}

	return "/" + strings.Join(segments, "/")
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {

	return promhttp.Handler()
}
