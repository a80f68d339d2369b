package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	repotest "github.com/sayevvv/LearnUp-sub001/internal/data/repos/testutil"
	httpH "github.com/sayevvv/LearnUp-sub001/internal/http/handlers"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/recommend"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr: got %q", cfg.Addr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins: got %v", cfg.CORSOrigins)
	}
	if cfg.Classifier != classify.DefaultConfig() {
		t.Fatalf("classifier config: got %+v", cfg.Classifier)
	}
	if cfg.Feeds != recommend.DefaultConfig() {
		t.Fatalf("feed config: got %+v", cfg.Feeds)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "classifier weight", env: map[string]string{"CLASSIFIER_TITLE_WEIGHT": "0"}},
		{name: "feed limit", env: map[string]string{"FEED_POPULAR_LIMIT": "0"}},
		{name: "shutdown", env: map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(nil); err == nil {
				t.Fatalf("expected error for %v", tc.env)
			}
		})
	}
}

// newTestApp wires the full stack on in-memory SQLite without Redis or Neo4j.
func newTestApp(t *testing.T) (*App, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := httpH.RegisterValidators(); err != nil {
		t.Fatalf("validators: %v", err)
	}
	log := repotest.Logger(t)
	db := repotest.DB(t)
	cfg := Config{
		Addr:                     ":0",
		ServiceName:              "learnup-test",
		ShutdownTimeout:          time.Second,
		CatalogInvalidateChannel: "learnup:catalog:invalidate",
		Classifier:               classify.DefaultConfig(),
		Feeds:                    recommend.DefaultConfig(),
	}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	reposet := wireRepos(db, log)
	services, err := wireServices(db, log, cfg, metrics, reposet, Clients{})
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := seedCatalog(ctx, log, cfg, services); err != nil {
		t.Fatalf("seedCatalog: %v", err)
	}
	server := wireServer(log, cfg, metrics, wireHandlers(db, log, services))
	a := &App{Log: log, DB: db, Router: server.Engine, Cfg: cfg, Metrics: metrics, Repos: reposet, Services: services, server: server}
	return a, server.Engine
}

func do(t *testing.T, h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEndToEnd(t *testing.T) {
	a, h := newTestApp(t)
	if got := a.Services.Catalog.Current(); got.Version == 0 || len(got.Topics) == 0 {
		t.Fatalf("catalog not loaded: version=%d topics=%d", got.Version, len(got.Topics))
	}

	w := do(t, h, http.MethodGet, "/healthcheck", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("healthcheck: %d %s", w.Code, w.Body.String())
	}

	author := uuid.New()
	w = do(t, h, http.MethodPost, "/api/roadmaps", author.String(),
		`{"title":"Belajar React dan Next.js","summary":"REST API dengan PostgreSQL","published":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created topics.RoadmapLabels
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Classification.Primary != "frontend" {
		t.Fatalf("primary: got %q", created.Classification.Primary)
	}
	if len(created.Labels) == 0 || !created.Labels[0].IsPrimary || created.Labels[0].Topic.Slug != "frontend" {
		t.Fatalf("labels: %+v", created.Labels)
	}

	w = do(t, h, http.MethodPost, "/api/roadmaps", "", `{"title":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: got %d", w.Code)
	}

	viewer := uuid.New()
	w = do(t, h, http.MethodPost, "/api/roadmaps", viewer.String(), `{"title":"React hooks deep dive"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("viewer create: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/dashboard", viewer.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	var dash recommend.Dashboard
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if len(dash.Degraded) != 0 {
		t.Fatalf("unexpected degraded feeds: %v", dash.Degraded)
	}
	if len(dash.Popular) != 1 || dash.Popular[0].ID != created.Roadmap.ID {
		t.Fatalf("popular: %+v", dash.Popular)
	}
	if len(dash.ForYou) != 1 || dash.ForYou[0].ID != created.Roadmap.ID {
		t.Fatalf("for you: %+v", dash.ForYou)
	}
	if len(dash.TrendingTopics) == 0 || dash.TrendingTopics[0].Topic.Slug != "frontend" || dash.TrendingTopics[0].RoadmapCount != 2 {
		t.Fatalf("trending: %+v", dash.TrendingTopics)
	}

	path := "/api/roadmaps/" + created.Roadmap.ID.String() + "/topics"
	w = do(t, h, http.MethodDelete, path, viewer.String(), "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("clear by non-owner: got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "learnup_catalog_version") {
		t.Fatalf("metrics: %d", w.Code)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	a, _ := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
