package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveInput(t *testing.T) {
	m := New()

	m.ObserveInput("text", OutcomeStructured, 200*time.Millisecond)
	m.ObserveInput("text", OutcomeStructured, time.Second)
	m.ObserveInput("URL", OutcomeError, time.Millisecond)

	if got := testutil.ToFloat64(m.inputs.WithLabelValues("text", OutcomeStructured)); got != 2 {
		t.Errorf("text/structured = %v, want 2", got)
	}

	if got := testutil.ToFloat64(m.inputs.WithLabelValues("URL", OutcomeError)); got != 1 {
		t.Errorf("URL/error = %v, want 1", got)
	}

	if got := testutil.CollectAndCount(m.latency); got != 2 {
		t.Errorf("latency series = %d, want 2", got)
	}
}

func TestObservePublish(t *testing.T) {
	m := New()

	m.ObservePublish(OutcomeSuccess)
	m.ObservePublish(OutcomeError)
	m.ObservePublish(OutcomeError)

	if got := testutil.ToFloat64(m.publishes.WithLabelValues(OutcomeError)); got != 2 {
		t.Errorf("publish errors = %v, want 2", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// Must not panic.
	m.ObserveInput("file", OutcomeText, time.Second)
	m.ObservePublish(OutcomeSuccess)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObservePublish(OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `jobposting_publishes_total{outcome="success"} 1`) {
		t.Errorf("metrics output missing publish counter:\n%s", body)
	}
}
