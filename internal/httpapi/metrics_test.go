package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_EmitsRequestCounters verifies that wrapping a handler
// with MetricsMiddleware results in request metrics being exposed via the
// Prometheus /metrics handler.
func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	MetricsMiddleware(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	mrr := httptest.NewRecorder()
	mreq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	promhttp.Handler().ServeHTTP(mrr, mreq)
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	body := mrr.Body.Bytes()
	if !bytes.Contains(body, []byte("evtd_http_requests_total")) {
		previewLen := len(body)
		if previewLen > 200 {
			previewLen = 200
		}
		t.Fatalf("expected to find evtd_http_requests_total in metrics; got: %q", string(body[:previewLen]))
	}
}

func TestIncrementRejected_IncrementsCounter(t *testing.T) {
	baseline := testutil.ToFloat64(rejectedTotal.WithLabelValues("invalid_json"))
	IncrementRejected("invalid_json")
	IncrementRejected("invalid_json")
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues("invalid_json")); got != baseline+2 {
		t.Fatalf("expected %v, got %v", baseline+2, got)
	}

	before := testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified"))
	IncrementRejected("")
	if after := testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified")); after != before+1 {
		t.Fatalf("expected unspecified reason to increment: before=%v after=%v", before, after)
	}
}
