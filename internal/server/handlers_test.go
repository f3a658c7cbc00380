package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tooxie/statista-demo-app/internal/config"
	"github.com/tooxie/statista-demo-app/internal/embedding"
	"github.com/tooxie/statista-demo-app/internal/ingest"
	"github.com/tooxie/statista-demo-app/internal/models"
	"github.com/tooxie/statista-demo-app/internal/search"
	"github.com/tooxie/statista-demo-app/internal/storage"
)

func newTestServer(t *testing.T, stats []*models.Statistic) *Server {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	emb := embedding.NewHashEmbedder(16)
	ctx := context.Background()
	for _, stat := range stats {
		vec, err := emb.Embed(ctx, stat.EmbeddingText())
		if err != nil {
			t.Fatal(err)
		}
		if err := store.PutStatistic(ctx, stat, vec); err != nil {
			t.Fatal(err)
		}
	}

	svc := search.NewService(store, emb, nil)
	if len(stats) > 0 {
		idx, err := ingest.BuildIndex(ctx, store)
		if err != nil {
			t.Fatal(err)
		}
		svc = search.NewService(store, emb, idx)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Dimensions = 16
	return NewServer(svc, store, cfg, zap.NewNop())
}

func sampleStats() []*models.Statistic {
	return []*models.Statistic{
		{ID: 1, Title: "Inflation", Subject: "Economy", Description: "CPI report"},
		{ID: 2, Title: "Rainfall", Subject: "Weather", Description: "Monthly totals"},
	}
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	return w
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t, sampleStats())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Statistics Search API") {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, sampleStats())
	for _, path := range []string{"/health", "/health/deep"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("%s status: got %d", path, w.Code)
		}
	}
}

func TestHandleFind(t *testing.T) {
	srv := newTestServer(t, sampleStats())
	w := postJSON(t, srv, "/find", models.SearchQuery{Query: "Inflation Economy CPI report", Limit: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var resp models.FindResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Fatalf("total: got %d", resp.Total)
	}
	if resp.Results[0].Statistic.ID != 1 {
		t.Errorf("top result: got id %d, want 1", resp.Results[0].Statistic.ID)
	}
}

func TestHandleFind_LimitLargerThanCorpus(t *testing.T) {
	srv := newTestServer(t, sampleStats())
	w := postJSON(t, srv, "/find", models.SearchQuery{Query: "consumer prices", Limit: 50})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp models.FindResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results: got %d, want 2", len(resp.Results))
	}
}

func TestHandleFind_BadRequests(t *testing.T) {
	srv := newTestServer(t, sampleStats())

	r := httptest.NewRequest(http.MethodPost, "/find", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d", w.Code)
	}

	if w := postJSON(t, srv, "/find", models.SearchQuery{Query: ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty query: got %d", w.Code)
	}
	if w := postJSON(t, srv, "/find", models.SearchQuery{Query: "x", Limit: -1}); w.Code != http.StatusBadRequest {
		t.Errorf("negative limit: got %d", w.Code)
	}
}

func TestHandleFind_IndexUnavailable(t *testing.T) {
	srv := newTestServer(t, nil)
	w := postJSON(t, srv, "/find", models.SearchQuery{Query: "anything"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestHandleStreamFind(t *testing.T) {
	srv := newTestServer(t, sampleStats())
	w := postJSON(t, srv, "/stream/find", models.SearchQuery{Query: "consumer prices"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type: got %q", ct)
	}

	var ids []int64
	for _, line := range strings.Split(w.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var stat models.Statistic
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &stat); err != nil {
			t.Fatalf("event not a complete record: %v (%s)", err, line)
		}
		ids = append(ids, stat.ID)
	}
	if len(ids) != 2 {
		t.Fatalf("events: got %d, want 2", len(ids))
	}

	// Stream order must match batch order for the same query.
	batch := postJSON(t, srv, "/find", models.SearchQuery{Query: "consumer prices", Limit: 10})
	var resp models.FindResponse
	if err := json.NewDecoder(batch.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	for i := range ids {
		if ids[i] != resp.Results[i].Statistic.ID {
			t.Errorf("position %d: stream id %d, batch id %d", i, ids[i], resp.Results[i].Statistic.ID)
		}
	}
}

func TestHandleStreamFind_IndexUnavailable(t *testing.T) {
	srv := newTestServer(t, nil)
	w := postJSON(t, srv, "/stream/find", models.SearchQuery{Query: "anything"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, sampleStats())
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Statistics int64 `json:"statistics"`
		IndexSize  int   `json:"index_size"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Statistics != 2 || out.IndexSize != 2 {
		t.Errorf("status counts: %+v", out)
	}
}
