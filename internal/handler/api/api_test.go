package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"xfin/internal/calendar"
	"xfin/internal/domain/models"
	"xfin/internal/movers"
	"xfin/internal/registry"
	internalrepo "xfin/internal/repository"
	"xfin/internal/scheduler"
	"xfin/pkg/cache"
	"xfin/pkg/config"
	"xfin/pkg/logger"
)

type stubCollector struct{ calls int }

func (s *stubCollector) Collect(context.Context, models.Category) error {
	s.calls++
	return nil
}

type stubMetrics struct{}

func (stubMetrics) RecordRun(string, string, string)  {}
func (stubMetrics) RecordRunDuration(string, float64) {}
func (stubMetrics) RecordRunning(string, bool)        {}
func (stubMetrics) RecordTriggerRejected(string)      {}
func (stubMetrics) RecordAggregation(string, float64) {}
func (stubMetrics) RecordDroppedRecords(string, int)  {}

type testHarness struct {
	echo      *echo.Echo
	store     *internalrepo.CacheStore
	collector *stubCollector
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	cfg := &config.Config{Timezone: "Asia/Kolkata"}
	cfg.Scheduler.TickInterval = 30 * time.Second
	cfg.Scheduler.JobTimeout = time.Minute
	cfg.Movers.BroadIndexSection = "NIFTY"
	cfg.Movers.SectorIndexSection = "BANKNIFTY"
	cfg.Movers.SectorRoster = []string{"HDFCBANK", "ICICIBANK", "SBIN"}

	log := logger.Nop()
	store := internalrepo.NewCacheStore(cache.NewMemoryCache())

	reg, err := registry.New(context.Background(), cfg, store, log)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	cal, err := calendar.New(context.Background(), store, log)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}

	coll := &stubCollector{}
	statuses := scheduler.NewStatusStore()
	sched := scheduler.New(cfg, reg, cal, statuses, coll, nil, stubMetrics{}, log)
	agg := movers.NewAggregator(
		cfg.Movers.BroadIndexSection,
		cfg.Movers.SectorIndexSection,
		cfg.Movers.SectorRoster,
		nil,
	)

	handler := New(
		NewSchedulerHandler(reg, cal, sched, log),
		NewMoversHandler(agg, store, internalrepo.NoopRecords{}, stubMetrics{}, log),
		NewStatusHandler(statuses, log),
		NewHealthHandler(internalrepo.NoopRecords{}),
	)

	e := echo.New()
	handler.RegisterRoutes(e)

	return &testHarness{echo: e, store: store, collector: coll}
}

func (h *testHarness) request(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	h.echo.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s: invalid JSON response: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, decoded
}

func TestGetConfigListsAllCategories(t *testing.T) {
	h := newHarness(t)

	rec, body := h.request(t, http.MethodGet, "/api/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	cfgs, ok := body["config"].(map[string]interface{})
	if !ok {
		t.Fatalf("no config key in response: %v", body)
	}
	for _, cat := range models.Categories() {
		if _, ok := cfgs[cat.String()]; !ok {
			t.Fatalf("config missing category %s", cat)
		}
	}
}

func TestUpdateConfigViaTabAlias(t *testing.T) {
	h := newHarness(t)

	rec, body := h.request(t, http.MethodPost, "/api/config",
		`{"scheduler_type":"top_gainers","config":{"interval_minutes":10}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["category"] != "gainers_losers" {
		t.Fatalf("tab alias resolved to %v", data["category"])
	}
	if data["interval_minutes"].(float64) != 10 {
		t.Fatalf("interval not updated: %v", data)
	}
}

func TestUpdateConfigRejectsInvalidPatch(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.request(t, http.MethodPost, "/api/config",
		`{"scheduler_type":"banks","config":{"interval_minutes":-5}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateConfigUnknownType(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.request(t, http.MethodPost, "/api/config",
		`{"scheduler_type":"crypto","config":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHolidayLifecycle(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.request(t, http.MethodPost, "/api/holidays", `{"date":"2025-01-26"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d", rec.Code)
	}

	_, body := h.request(t, http.MethodGet, "/api/holidays", "")
	dates, ok := body["holidays"].([]interface{})
	if !ok {
		t.Fatalf("no holidays key in response: %v", body)
	}
	if len(dates) != 1 || dates[0] != "2025-01-26" {
		t.Fatalf("holidays = %v", dates)
	}

	rec, _ = h.request(t, http.MethodDelete, "/api/holidays/2025-01-26", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	_, body = h.request(t, http.MethodGet, "/api/holidays", "")
	if dates := body["holidays"].([]interface{}); len(dates) != 0 {
		t.Fatalf("holidays after delete = %v", dates)
	}
}

func TestHolidayRejectsMalformedDate(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.request(t, http.MethodPost, "/api/holidays", `{"date":"26/01/2025"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTriggerRunsCollection(t *testing.T) {
	h := newHarness(t)

	rec, body := h.request(t, http.MethodPost, "/api/banks/trigger", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("trigger not accepted: %v", body)
	}
	if h.collector.calls != 1 {
		t.Fatalf("collector calls = %d, want 1", h.collector.calls)
	}

	data := body["data"].(map[string]interface{})
	if data["last_status"] != "success" {
		t.Fatalf("last_status = %v", data["last_status"])
	}
}

func TestTriggerUnknownCategory(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.request(t, http.MethodPost, "/api/crypto/trigger", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStatusEndpoints(t *testing.T) {
	h := newHarness(t)
	h.request(t, http.MethodPost, "/api/fiidii/trigger", "")

	rec, body := h.request(t, http.MethodGet, "/api/fiidii/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// The per-category status body is the bare RunStatus.
	if _, ok := body["running"]; !ok {
		t.Fatalf("no running key in response: %v", body)
	}
	if body["last_status"] != "success" {
		t.Fatalf("fiidii last_status = %v", body["last_status"])
	}

	_, body = h.request(t, http.MethodGet, "/api/status", "")
	all := body["data"].(map[string]interface{})
	if len(all) != len(models.Categories()) {
		t.Fatalf("status map has %d entries", len(all))
	}
}

func seedSnapshots(t *testing.T, h *testHarness) {
	t.Helper()
	ctx := context.Background()
	gainers := models.Snapshot{
		"NIFTY":     {{"symbol": "RELIANCE", "ltp": 2900.0, "pChange": 1.2}},
		"BANKNIFTY": {{"symbol": "HDFCBANK", "ltp": 1650.0, "pChange": 0.9}},
	}
	losers := models.Snapshot{
		"data": {{"symbol": "ZEEL", "ltp": 130.0, "pChange": -3.1}},
	}
	if err := h.store.PutSnapshot(ctx, models.CategoryGainersLosers, "gainers", gainers); err != nil {
		t.Fatalf("seed gainers: %v", err)
	}
	if err := h.store.PutSnapshot(ctx, models.CategoryGainersLosers, "losers", losers); err != nil {
		t.Fatalf("seed losers: %v", err)
	}
}

func TestMoversAggregation(t *testing.T) {
	h := newHarness(t)
	seedSnapshots(t, h)

	rec, body := h.request(t, http.MethodGet, "/api/movers?scope=all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := body["data"].([]interface{})
	if len(data) != 3 {
		t.Fatalf("expected 3 movers, got %d: %v", len(data), data)
	}
	first := data[0].(map[string]interface{})
	if first["symbol"] != "ZEEL" {
		t.Fatalf("expected ZEEL ranked first by |change|, got %v", first["symbol"])
	}
}

func TestMoversEmptyWithoutBothSnapshots(t *testing.T) {
	h := newHarness(t)

	_, body := h.request(t, http.MethodGet, "/api/movers", "")
	data := body["data"].([]interface{})
	if len(data) != 0 {
		t.Fatalf("expected empty result without snapshots, got %v", data)
	}
}

func TestMoversRejectsUnknownScope(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.request(t, http.MethodGet, "/api/movers?scope=planetary", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGainersDataPaginated(t *testing.T) {
	h := newHarness(t)

	rec, body := h.request(t, http.MethodGet, "/api/gainers/data?page=1&limit=25", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["page"].(float64) != 1 || body["total"].(float64) != 0 {
		t.Fatalf("pagination metadata missing: %v", body)
	}
	if _, ok := body["data"].([]interface{}); !ok {
		t.Fatalf("data must be a list: %v", body["data"])
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)

	rec, body := h.request(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("healthz body = %v", body)
	}
}
