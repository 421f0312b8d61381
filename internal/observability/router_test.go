package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRouterServesMetricsAndSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordTap("morning", "advanced")
	m.RecordCompletion("morning")
	m.RecordRollover()
	m.RecordStorageError("write")
	m.RecordPersisted(time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))

	router := NewRouter(m, func() any { return map[string]int{"morning": 50} })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`sakina_counter_taps_total{outcome="advanced",section="morning"} 1`,
		`sakina_counter_completions_total{section="morning"} 1`,
		`sakina_progress_rollovers_total 1`,
		`sakina_storage_errors_total{op="write"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics body missing %q", want)
		}
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"morning":50`) {
		t.Fatalf("unexpected snapshot response: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordTap("tasbih", "completed")
	m.RecordCompletion("tasbih")
	m.RecordRollover()
	m.RecordStorageError("read")
	m.RecordPersisted(time.Now())

	router := NewRouter(m, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without registry, got %d", rec.Code)
	}
}
