package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPRecorder receives per-request measurements
type HTTPRecorder interface {
	IncrementInFlight()
	DecrementInFlight()
	RecordHTTPRequest(method, path, status string, duration time.Duration)
}

var knownPaths = map[string]bool{
	"/login":   true,
	"/nodes":   true,
	"/publish": true,
	"/metrics": true,
}

// Metrics records request counts and durations
func Metrics(recorder HTTPRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			recorder.IncrementInFlight()
			defer recorder.DecrementInFlight()

			next.ServeHTTP(rec, r)

			recorder.RecordHTTPRequest(
				strings.ToUpper(r.Method),
				canonicalPath(r.URL.Path),
				strconv.Itoa(rec.Status()),
				time.Since(start),
			)
		})
	}
}

// canonicalPath bounds label cardinality to the routed paths
func canonicalPath(raw string) string {
	if knownPaths[raw] {
		return raw
	}
	if strings.HasPrefix(raw, "/publish/") && !strings.Contains(raw[len("/publish/"):], "/") {
		return "/publish/{hash}"
	}
	return "other"
}
