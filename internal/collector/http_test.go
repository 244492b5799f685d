package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"xfin/internal/domain/models"
	"xfin/internal/repository"
	"xfin/pkg/cache"
	xhttp "xfin/pkg/http"
	"xfin/pkg/logger"
)

func TestDecodeSnapshotShapes(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		sections map[string]int
	}{
		{
			name:     "object of section lists",
			body:     `{"NIFTY":[{"symbol":"A","ltp":1,"pChange":0.5}],"BANKNIFTY":[{"symbol":"B","ltp":2,"pChange":-0.4}]}`,
			sections: map[string]int{"NIFTY": 1, "BANKNIFTY": 1},
		},
		{
			name:     "nested data sections",
			body:     `{"NIFTY":{"data":[{"symbol":"A","ltp":1,"pChange":0.5},{"symbol":"B","ltp":2,"pChange":1.1}]}}`,
			sections: map[string]int{"NIFTY": 2},
		},
		{
			name:     "bare array",
			body:     `[{"symbol":"A","ltp":1,"pChange":0.5}]`,
			sections: map[string]int{"data": 1},
		},
	}

	for _, tc := range cases {
		snap, err := decodeSnapshot([]byte(tc.body))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		for section, want := range tc.sections {
			if got := len(snap[section]); got != want {
				t.Fatalf("%s: section %s has %d tickers, want %d", tc.name, section, got, want)
			}
		}
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := decodeSnapshot([]byte(`"just a string"`)); err == nil {
		t.Fatalf("expected error for non-object, non-array payload")
	}
}

func TestCollectStoresSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"NIFTY":[{"symbol":"RELIANCE","ltp":2900.5,"pChange":1.2}]}`))
	}))
	defer srv.Close()

	store := repository.NewCacheStore(cache.NewMemoryCache())
	c := New(
		xhttp.NewClient(xhttp.WithTimeout(5*time.Second)),
		nil,
		map[string]string{"banks": srv.URL},
		store,
		nil,
		logger.Nop(),
	)

	if err := c.Collect(context.Background(), models.CategoryBanks); err != nil {
		t.Fatalf("collect: %v", err)
	}

	snap, err := store.GetSnapshot(context.Background(), models.CategoryBanks, LabelLatest)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if len(snap["NIFTY"]) != 1 {
		t.Fatalf("expected stored snapshot, got %+v", snap)
	}
}

func TestCollectGainersLosersFetchesBoth(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"data":[{"symbol":"A","ltp":10,"pChange":2.0}]}`))
	}))
	defer srv.Close()

	store := repository.NewCacheStore(cache.NewMemoryCache())
	c := New(
		xhttp.NewClient(),
		nil,
		map[string]string{
			"gainers": srv.URL + "/gainers",
			"losers":  srv.URL + "/losers",
		},
		store,
		nil,
		logger.Nop(),
	)

	if err := c.Collect(context.Background(), models.CategoryGainersLosers); err != nil {
		t.Fatalf("collect: %v", err)
	}

	mu.Lock()
	got := append([]string(nil), paths...)
	mu.Unlock()
	if len(got) != 2 || got[0] != "/gainers" || got[1] != "/losers" {
		t.Fatalf("expected both variants fetched in order, got %v", got)
	}
	for _, label := range []string{LabelGainers, LabelLosers} {
		snap, err := store.GetSnapshot(context.Background(), models.CategoryGainersLosers, label)
		if err != nil || snap == nil {
			t.Fatalf("missing %s snapshot: %v", label, err)
		}
	}
}

func TestCollectMissingEndpoint(t *testing.T) {
	store := repository.NewCacheStore(cache.NewMemoryCache())
	c := New(xhttp.NewClient(), nil, map[string]string{}, store, nil, logger.Nop())

	if err := c.Collect(context.Background(), models.CategoryNews); err == nil {
		t.Fatalf("expected error for unconfigured endpoint")
	}
}

func TestCollectUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	store := repository.NewCacheStore(cache.NewMemoryCache())
	c := New(xhttp.NewClient(), nil, map[string]string{"news": srv.URL}, store, nil, logger.Nop())

	if err := c.Collect(context.Background(), models.CategoryNews); err == nil {
		t.Fatalf("expected error for upstream 429")
	}
}
