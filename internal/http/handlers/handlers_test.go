package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
	httpMW "github.com/sayevvv/LearnUp-sub001/internal/http/middleware"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/recommend"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/apierr"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type fakeTopics struct {
	lastCreate   topics.CreateRoadmapInput
	lastSet      topics.SetAuthorTopicsInput
	lastVersion  *uuid.UUID
	lastEnsure   []string
	err          error
	classifyResp classify.Result
}

func (f *fakeTopics) ListTopics(ctx context.Context) ([]*types.Topic, error) {
	return []*types.Topic{{ID: uuid.New(), Slug: "frontend", Name: "Frontend"}}, f.err
}

func (f *fakeTopics) EnsureTopics(ctx context.Context, slugs []string) ([]string, error) {
	f.lastEnsure = slugs
	return nil, f.err
}

func (f *fakeTopics) Classify(ctx context.Context, in classify.Input) (classify.Result, error) {
	return f.classifyResp, f.err
}

func (f *fakeTopics) CreateRoadmap(ctx context.Context, in topics.CreateRoadmapInput) (topics.RoadmapLabels, error) {
	f.lastCreate = in
	if f.err != nil {
		return topics.RoadmapLabels{}, f.err
	}
	return topics.RoadmapLabels{Roadmap: &types.Roadmap{ID: uuid.New(), UserID: in.UserID, Title: in.Title}}, nil
}

func (f *fakeTopics) Reclassify(ctx context.Context, roadmapID uuid.UUID, versionID *uuid.UUID) (topics.RoadmapLabels, error) {
	f.lastVersion = versionID
	return topics.RoadmapLabels{}, f.err
}

func (f *fakeTopics) GetLabels(ctx context.Context, roadmapID uuid.UUID, versionID *uuid.UUID) ([]topics.Label, error) {
	f.lastVersion = versionID
	return []topics.Label{}, f.err
}

func (f *fakeTopics) SetAuthorTopics(ctx context.Context, in topics.SetAuthorTopicsInput) ([]topics.Label, error) {
	f.lastSet = in
	return []topics.Label{}, f.err
}

func (f *fakeTopics) ClearAuthorTopics(ctx context.Context, userID, roadmapID uuid.UUID) ([]topics.Label, error) {
	return []topics.Label{}, f.err
}

func (f *fakeTopics) DeleteRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) error {
	return f.err
}

type fakeFeeds struct {
	lastUser uuid.UUID
}

func (f *fakeFeeds) TrendingTopics(ctx context.Context) ([]recommend.TopicTrend, error) {
	return []recommend.TopicTrend{}, nil
}

func (f *fakeFeeds) Dashboard(ctx context.Context, userID uuid.UUID) (recommend.Dashboard, error) {
	f.lastUser = userID
	return recommend.Dashboard{Degraded: []string{recommend.FeedForYou}}, nil
}

func newTestRouter(t *testing.T, tp TopicsService, feeds FeedsService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		t.Fatalf("RegisterValidators: %v", err)
	}
	log := logger.Nop()
	th := NewTopicHandler(log, tp, feeds)
	rh := NewRoadmapHandler(log, tp)
	dh := NewDashboardHandler(log, feeds)

	r := gin.New()
	r.Use(httpMW.AttachRequestContext())
	r.GET("/healthcheck", NewHealthHandler(nil).HealthCheck)
	r.GET("/api/topics", th.ListTopics)
	r.POST("/api/topics", th.EnsureTopics)
	r.GET("/api/topics/trending", th.Trending)
	r.POST("/api/topics/classify", th.Classify)
	r.POST("/api/roadmaps", rh.CreateRoadmap)
	r.DELETE("/api/roadmaps/:id", rh.DeleteRoadmap)
	r.POST("/api/roadmaps/:id/reclassify", rh.Reclassify)
	r.GET("/api/roadmaps/:id/topics", rh.GetTopics)
	r.PUT("/api/roadmaps/:id/topics", rh.SetTopics)
	r.DELETE("/api/roadmaps/:id/topics", rh.ClearTopics)
	r.GET("/api/dashboard", dh.GetDashboard)
	return r
}

func do(r http.Handler, method, path, body string, user uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("X-User-Id", user.String())
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error.Code
}

func TestHealthAndTopics(t *testing.T) {
	r := newTestRouter(t, &fakeTopics{}, &fakeFeeds{})

	if rec := do(r, http.MethodGet, "/healthcheck", "", uuid.Nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
	rec := do(r, http.MethodGet, "/api/topics", "", uuid.Nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"slug":"frontend"`) {
		t.Fatalf("topics: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(r, http.MethodGet, "/api/topics/trending", "", uuid.Nil); rec.Code != http.StatusOK {
		t.Fatalf("trending: %d", rec.Code)
	}
}

func TestEnsureTopicsValidatesSlugs(t *testing.T) {
	fake := &fakeTopics{}
	r := newTestRouter(t, fake, &fakeFeeds{})

	cases := []struct {
		body string
		want int
	}{
		{`{"slugs":["quantum-computing","rust"]}`, http.StatusOK},
		{`{"slugs":["Quantum Computing"]}`, http.StatusBadRequest},
		{`{"slugs":["bad--slug"]}`, http.StatusBadRequest},
		{`{"slugs":[]}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := do(r, http.MethodPost, "/api/topics", tc.body, uuid.Nil)
		if rec.Code != tc.want {
			t.Fatalf("%s: got %d want %d (%s)", tc.body, rec.Code, tc.want, rec.Body.String())
		}
	}
	if len(fake.lastEnsure) != 2 || fake.lastEnsure[0] != "quantum-computing" {
		t.Fatalf("ensure input: %v", fake.lastEnsure)
	}
}

func TestClassify(t *testing.T) {
	fake := &fakeTopics{classifyResp: classify.Result{Primary: "other", Confidence: classify.Confidence{Primary: 0.05}}}
	r := newTestRouter(t, fake, &fakeFeeds{})

	rec := do(r, http.MethodPost, "/api/topics/classify", `{"title":""}`, uuid.Nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("classify: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"secondary":[]`) {
		t.Fatalf("secondary should be an empty list: %s", rec.Body.String())
	}
	if rec := do(r, http.MethodPost, "/api/topics/classify", `{"title":`, uuid.Nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: %d", rec.Code)
	}
}

func TestCreateRoadmap(t *testing.T) {
	fake := &fakeTopics{}
	r := newTestRouter(t, fake, &fakeFeeds{})
	user := uuid.New()

	rec := do(r, http.MethodPost, "/api/roadmaps", `{"title":"Belajar React","milestones":["JSX"]}`, user)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if fake.lastCreate.UserID != user || fake.lastCreate.Title != "Belajar React" || len(fake.lastCreate.Milestones) != 1 {
		t.Fatalf("create input: %+v", fake.lastCreate)
	}
	if rec := do(r, http.MethodPost, "/api/roadmaps", `{"summary":"x"}`, user); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing title: %d", rec.Code)
	}
}

func TestSetTopics(t *testing.T) {
	fake := &fakeTopics{}
	r := newTestRouter(t, fake, &fakeFeeds{})
	user, rm, a, b := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	body := fmt.Sprintf(`{"topic_ids":[%q,%q],"primary_id":%q}`, a, b, b)
	rec := do(r, http.MethodPut, "/api/roadmaps/"+rm.String()+"/topics", body, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("set topics: %d %s", rec.Code, rec.Body.String())
	}
	if fake.lastSet.RoadmapID != rm || fake.lastSet.UserID != user || len(fake.lastSet.TopicIDs) != 2 || *fake.lastSet.PrimaryID != b {
		t.Fatalf("set input: %+v", fake.lastSet)
	}

	if rec := do(r, http.MethodPut, "/api/roadmaps/"+rm.String()+"/topics", `{"topic_ids":["nope"]}`, user); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid: %d", rec.Code)
	}
	if rec := do(r, http.MethodPut, "/api/roadmaps/not-a-uuid/topics", `{"topic_ids":[]}`, user); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad path id: %d", rec.Code)
	}
}

func TestStoreErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"empty", apierr.FromError(domainagg.NewError(domainagg.CodeValidation, "op", "no topics", domainagg.ErrEmptySelection), "x"), http.StatusBadRequest, "empty_selection"},
		{"not found", apierr.New(http.StatusNotFound, "roadmap_not_found", nil), http.StatusNotFound, "roadmap_not_found"},
		{"retryable", apierr.FromError(domainagg.NewError(domainagg.CodeRetryable, "op", "locked", nil), "x"), http.StatusServiceUnavailable, "store_unavailable"},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "store_labels_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, &fakeTopics{err: tc.err}, &fakeFeeds{})
			rec := do(r, http.MethodPut, "/api/roadmaps/"+uuid.NewString()+"/topics", `{"topic_ids":[]}`, uuid.New())
			if rec.Code != tc.want {
				t.Fatalf("status: got %d want %d", rec.Code, tc.want)
			}
			if got := errorCode(t, rec); got != tc.code {
				t.Fatalf("code: got %q want %q", got, tc.code)
			}
			if tc.want >= 500 && strings.Contains(rec.Body.String(), "boom") {
				t.Fatalf("internal cause leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestVersionQuery(t *testing.T) {
	fake := &fakeTopics{}
	r := newTestRouter(t, fake, &fakeFeeds{})
	rm, v := uuid.New(), uuid.New()

	if rec := do(r, http.MethodGet, "/api/roadmaps/"+rm.String()+"/topics?version_id="+v.String(), "", uuid.Nil); rec.Code != http.StatusOK {
		t.Fatalf("get topics: %d", rec.Code)
	}
	if fake.lastVersion == nil || *fake.lastVersion != v {
		t.Fatalf("version not passed: %v", fake.lastVersion)
	}
	if rec := do(r, http.MethodPost, "/api/roadmaps/"+rm.String()+"/reclassify", "", uuid.Nil); rec.Code != http.StatusOK {
		t.Fatalf("reclassify: %d", rec.Code)
	}
	if fake.lastVersion != nil {
		t.Fatalf("current scope expected")
	}
	if rec := do(r, http.MethodGet, "/api/roadmaps/"+rm.String()+"/topics?version_id=x", "", uuid.Nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad version: %d", rec.Code)
	}
}

func TestDashboardAndDelete(t *testing.T) {
	feeds := &fakeFeeds{}
	r := newTestRouter(t, &fakeTopics{}, feeds)
	user := uuid.New()

	rec := do(r, http.MethodGet, "/api/dashboard", "", user)
	if rec.Code != http.StatusOK || feeds.lastUser != user {
		t.Fatalf("dashboard: %d user=%s", rec.Code, feeds.lastUser)
	}
	if !strings.Contains(rec.Body.String(), `"degraded":["for_you"]`) {
		t.Fatalf("degraded not reported: %s", rec.Body.String())
	}
	if rec := do(r, http.MethodDelete, "/api/roadmaps/"+uuid.NewString(), "", user); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := do(r, http.MethodDelete, "/api/roadmaps/"+uuid.NewString()+"/topics", "", user); rec.Code != http.StatusOK {
		t.Fatalf("clear: %d", rec.Code)
	}
}
