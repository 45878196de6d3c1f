package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/minhtran-dev/vnshop-order-service/pkg/metrics"
)

// Metrics records per-route request counts and latency, labelled by the
// chi route pattern so path parameters don't explode the cardinality.
func Metrics(m *metrics.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			handler := r.Method + " " + pattern
			m.Requests.WithLabelValues(handler, strconv.Itoa(ww.Status())).Inc()
			m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
