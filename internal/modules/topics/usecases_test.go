package topics

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	repotest "github.com/sayevvv/LearnUp-sub001/internal/data/repos/testutil"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/catalog"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/apierr"
)

type fixture struct {
	tx     *gorm.DB
	uc     Usecases
	cache  *catalog.Cache
	labels repos.RoadmapTopicRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	log := repotest.Logger(t)

	topicRepo := repos.NewTopicRepo(tx, log)
	roadmaps := repos.NewRoadmapRepo(tx, log)
	labels := repos.NewRoadmapTopicRepo(tx, log)

	cache := catalog.NewCache(catalog.CacheDeps{Log: log, Topics: topicRepo})
	cls, err := classify.New(classify.DefaultConfig())
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	agg := aggregates.NewRoadmapTopicsAggregate(aggregates.RoadmapTopicsAggregateDeps{
		Base:     aggregates.BaseDeps{DB: tx, Log: log, Runner: aggregates.NewGormTxRunner(tx)},
		Roadmaps: roadmaps,
		Progress: repos.NewRoadmapProgressRepo(tx, log),
		Labels:   labels,
		Topics:   topicRepo,
	})
	uc := New(UsecasesDeps{
		DB:         tx,
		Log:        log,
		Catalog:    cache,
		Classifier: cls,
		Topics:     topicRepo,
		Roadmaps:   roadmaps,
		Labels:     labels,
		Aggregate:  agg,
	})
	if _, err := uc.EnsureSeeds(ctx, catalog.Defaults()); err != nil {
		t.Fatalf("EnsureSeeds: %v", err)
	}
	return &fixture{tx: tx, uc: uc, cache: cache, labels: labels}
}

func statusOf(err error) int {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func slugs(labels []Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Topic.Slug)
	}
	return out
}

func TestListTopics(t *testing.T) {
	f := newFixture(t)
	got, err := f.uc.ListTopics(context.Background())
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(got) != len(catalog.Defaults()) || got[0].Slug != "frontend" || got[len(got)-1].Slug != "other" {
		t.Fatalf("unexpected catalog: %v", len(got))
	}
}

func TestEnsureTopicsReloadsCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.cache.Current().Version

	created, err := f.uc.EnsureTopics(ctx, []string{"backend", "Robotics"})
	if err != nil {
		t.Fatalf("EnsureTopics: %v", err)
	}
	if len(created) != 1 || created[0] != "robotics" {
		t.Fatalf("created: %v", created)
	}
	if f.cache.Current().Version <= before || f.cache.Current().BySlug("robotics") == nil {
		t.Fatalf("catalog not reloaded")
	}

	before = f.cache.Current().Version
	if created, err = f.uc.EnsureTopics(ctx, []string{"robotics"}); err != nil || len(created) != 0 {
		t.Fatalf("second EnsureTopics: %v %v", created, err)
	}
	if f.cache.Current().Version != before {
		t.Fatalf("no-op ensure should not reload")
	}
}

func TestClassifyPreview(t *testing.T) {
	f := newFixture(t)
	res, err := f.uc.Classify(context.Background(), classify.Input{Title: "Belajar React dan Next.js"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Primary != "frontend" {
		t.Fatalf("primary: %q", res.Primary)
	}

	res, err = f.uc.Classify(context.Background(), classify.Input{})
	if err != nil {
		t.Fatalf("Classify empty: %v", err)
	}
	if res.Primary != "other" || len(res.Secondary) != 0 || res.Confidence.Primary != 0.05 {
		t.Fatalf("empty input: %+v", res)
	}
}

func TestCreateRoadmapStoresAILabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	out, err := f.uc.CreateRoadmap(ctx, CreateRoadmapInput{
		UserID:     user,
		Title:      "Belajar React dan Next.js",
		Summary:    "Bangun REST API dengan Node.js lalu deploy pakai Docker",
		Milestones: []string{"PostgreSQL", " "},
	})
	if err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}
	if out.Roadmap == nil || out.Roadmap.UserID != user {
		t.Fatalf("roadmap not returned: %+v", out.Roadmap)
	}
	if out.Classification.Primary != "frontend" {
		t.Fatalf("primary: %q", out.Classification.Primary)
	}
	if len(out.Labels) == 0 || !out.Labels[0].IsPrimary || out.Labels[0].Topic.Slug != "frontend" {
		t.Fatalf("labels: %v", slugs(out.Labels))
	}
	for _, l := range out.Labels {
		if l.Source != types.SourceAI {
			t.Fatalf("expected ai source, got %q", l.Source)
		}
		if l.Topic.Slug == "other" {
			t.Fatalf("fallback topic in secondary labels")
		}
	}
	for i := 2; i < len(out.Labels); i++ {
		if out.Labels[i].Confidence > out.Labels[i-1].Confidence {
			t.Fatalf("labels not ordered by confidence: %v", slugs(out.Labels))
		}
	}

	if _, err := f.uc.CreateRoadmap(ctx, CreateRoadmapInput{UserID: user, Title: "  "}); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("blank title: %v", err)
	}
	if _, err := f.uc.CreateRoadmap(ctx, CreateRoadmapInput{Title: "Go"}); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %v", err)
	}
}

func TestAuthorPrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	created, err := f.uc.CreateRoadmap(ctx, CreateRoadmapInput{UserID: user, Title: "Belajar React dan Next.js"})
	if err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}
	rmID := created.Roadmap.ID
	snap := f.cache.Current()
	backend, database := snap.BySlug("backend"), snap.BySlug("database")

	got, err := f.uc.SetAuthorTopics(ctx, SetAuthorTopicsInput{
		UserID:    user,
		RoadmapID: rmID,
		TopicIDs:  []uuid.UUID{database.ID, backend.ID},
		PrimaryID: &backend.ID,
	})
	if err != nil {
		t.Fatalf("SetAuthorTopics: %v", err)
	}
	if len(got) != 2 || got[0].Topic.Slug != "backend" || !got[0].IsPrimary || got[1].Topic.Slug != "database" {
		t.Fatalf("author labels: %v", slugs(got))
	}
	for _, l := range got {
		if l.Source != types.SourceAuthor || l.Confidence != 1 {
			t.Fatalf("author label: %+v", l)
		}
	}

	// A later AI run must not resurface over the author's choice.
	if _, err := f.uc.Reclassify(ctx, rmID, nil); err != nil {
		t.Fatalf("Reclassify: %v", err)
	}
	got, err = f.uc.GetLabels(ctx, rmID, nil)
	if err != nil {
		t.Fatalf("GetLabels: %v", err)
	}
	if len(got) != 2 || got[0].Source != types.SourceAuthor {
		t.Fatalf("stale ai labels shown: %v", slugs(got))
	}

	got, err = f.uc.ClearAuthorTopics(ctx, user, rmID)
	if err != nil {
		t.Fatalf("ClearAuthorTopics: %v", err)
	}
	if len(got) == 0 || got[0].Source != types.SourceAI || got[0].Topic.Slug != "frontend" {
		t.Fatalf("clear should revert to ai labels: %v", slugs(got))
	}
}

func TestSetAuthorTopicsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	rm := repotest.SeedRoadmap(t, ctx, f.tx, owner, nil)
	backend := f.cache.Current().BySlug("backend")

	cases := []struct {
		name string
		in   SetAuthorTopicsInput
		want int
	}{
		{"empty", SetAuthorTopicsInput{UserID: owner, RoadmapID: rm.ID}, http.StatusBadRequest},
		{"unknown topic", SetAuthorTopicsInput{UserID: owner, RoadmapID: rm.ID, TopicIDs: []uuid.UUID{uuid.New()}}, http.StatusBadRequest},
		{"missing roadmap", SetAuthorTopicsInput{UserID: owner, RoadmapID: uuid.New(), TopicIDs: []uuid.UUID{backend.ID}}, http.StatusNotFound},
		{"not owner", SetAuthorTopicsInput{UserID: uuid.New(), RoadmapID: rm.ID, TopicIDs: []uuid.UUID{backend.ID}}, http.StatusForbidden},
		{"anonymous", SetAuthorTopicsInput{RoadmapID: rm.ID, TopicIDs: []uuid.UUID{backend.ID}}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.SetAuthorTopics(ctx, tc.in)
			if got := statusOf(err); got != tc.want {
				t.Fatalf("status: got %d want %d (err=%v)", got, tc.want, err)
			}
		})
	}
}

func TestGetLabelsVersionScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rm := repotest.SeedRoadmap(t, ctx, f.tx, uuid.New(), &repotest.RoadmapOpts{Title: "Docker dan Kubernetes"})
	version := uuid.New()

	if _, err := f.uc.Reclassify(ctx, rm.ID, &version); err != nil {
		t.Fatalf("Reclassify: %v", err)
	}
	got, err := f.uc.GetLabels(ctx, rm.ID, &version)
	if err != nil {
		t.Fatalf("GetLabels version: %v", err)
	}
	if len(got) != 1 || got[0].Topic.Slug != "devops" {
		t.Fatalf("version labels: %v", slugs(got))
	}
	current, err := f.uc.GetLabels(ctx, rm.ID, nil)
	if err != nil {
		t.Fatalf("GetLabels current: %v", err)
	}
	if len(current) != 0 {
		t.Fatalf("current scope should be empty, got %v", slugs(current))
	}

	if _, err := f.uc.GetLabels(ctx, uuid.New(), nil); statusOf(err) != http.StatusNotFound {
		t.Fatalf("missing roadmap: %v", err)
	}
	if _, err := f.uc.Reclassify(ctx, uuid.New(), nil); statusOf(err) != http.StatusNotFound {
		t.Fatalf("reclassify missing roadmap: %v", err)
	}
}

func TestDeleteRoadmap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	out, err := f.uc.CreateRoadmap(ctx, CreateRoadmapInput{UserID: user, Title: "Belajar Flutter"})
	if err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}
	if err := f.uc.DeleteRoadmap(ctx, uuid.New(), out.Roadmap.ID); statusOf(err) != http.StatusForbidden {
		t.Fatalf("delete by stranger: %v", err)
	}
	if err := f.uc.DeleteRoadmap(ctx, user, out.Roadmap.ID); err != nil {
		t.Fatalf("DeleteRoadmap: %v", err)
	}
	rows, err := f.labels.GetByScope(ctx, nil, out.Roadmap.ID, types.CurrentScope)
	if err != nil || len(rows) != 0 {
		t.Fatalf("labels survived delete: %d %v", len(rows), err)
	}
	if _, err := f.uc.GetLabels(ctx, out.Roadmap.ID, nil); statusOf(err) != http.StatusNotFound {
		t.Fatalf("deleted roadmap still visible: %v", err)
	}
}

func TestEffectiveRowsAndSort(t *testing.T) {
	ai := &types.RoadmapTopic{Source: types.SourceAI}
	author := &types.RoadmapTopic{Source: types.SourceAuthor}
	if got := EffectiveRows([]*types.RoadmapTopic{ai, author}); len(got) != 1 || got[0] != author {
		t.Fatalf("author should win")
	}
	if got := EffectiveRows([]*types.RoadmapTopic{ai}); len(got) != 1 || got[0] != ai {
		t.Fatalf("ai only")
	}

	a := &types.Topic{ID: uuid.New(), Slug: "a", Position: 0}
	b := &types.Topic{ID: uuid.New(), Slug: "b", Position: 1}
	c := &types.Topic{ID: uuid.New(), Slug: "c", Position: 2}
	labels := []Label{
		{Topic: c, Confidence: 0.5},
		{Topic: b, Confidence: 0.5},
		{Topic: a, Confidence: 0.9},
		{Topic: c, Confidence: 0.2, IsPrimary: true},
	}
	SortLabels(labels, nil)
	want := []string{"c", "a", "b", "c"}
	for i, l := range labels {
		if l.Topic.Slug != want[i] {
			t.Fatalf("order: got %v want %v", slugs(labels), want)
		}
	}
}

func TestAILabelsFromResult(t *testing.T) {
	res := classify.Result{
		Primary:   "frontend",
		Secondary: []string{"backend"},
		Confidence: classify.Confidence{
			Primary:   0.8,
			Secondary: map[string]float64{"backend": 0.5},
		},
	}
	got := AILabelsFromResult(res)
	if len(got) != 2 || !got[0].IsPrimary || got[1].Slug != "backend" || got[1].Confidence != 0.5 {
		t.Fatalf("labels: %+v", got)
	}
}

func TestGetLabelsSortsIndependentlyOfStoredOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rm := repotest.SeedRoadmap(t, ctx, f.tx, uuid.New(), nil)

	var tps []*types.Topic
	if err := f.tx.Where("slug IN ?", []string{"frontend", "backend", "devops"}).Find(&tps).Error; err != nil {
		t.Fatalf("load topics: %v", err)
	}
	ids := map[string]uuid.UUID{}
	for _, tp := range tps {
		ids[tp.Slug] = tp.ID
	}
	rows := []*types.RoadmapTopic{
		{RoadmapID: rm.ID, TopicID: ids["backend"], Source: types.SourceAI, Confidence: 0.4},
		{RoadmapID: rm.ID, TopicID: ids["frontend"], Source: types.SourceAI, Confidence: 0.4},
		{RoadmapID: rm.ID, TopicID: ids["devops"], Source: types.SourceAI, Confidence: 0.9, IsPrimary: true},
	}
	if _, err := f.labels.Create(ctx, f.tx, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.uc.GetLabels(ctx, rm.ID, nil)
	if err != nil {
		t.Fatalf("GetLabels: %v", err)
	}
	want := []string{"devops", "frontend", "backend"}
	if len(got) != len(want) {
		t.Fatalf("labels: %v", slugs(got))
	}
	for i := range want {
		if got[i].Topic.Slug != want[i] {
			t.Fatalf("order: got %v want %v", slugs(got), want)
		}
	}
}
