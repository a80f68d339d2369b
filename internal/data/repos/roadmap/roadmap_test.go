package roadmap

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sayevvv/LearnUp-sub001/internal/data/repos/testutil"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
)

func TestRoadmapRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRoadmapRepo(db, testutil.Logger(t))

	owner := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older := &types.Roadmap{UserID: owner, Title: "Go backend", Published: true, CreatedAt: base}
	newer := &types.Roadmap{
		UserID:     owner,
		Title:      "React",
		Published:  true,
		CreatedAt:  base.Add(time.Hour),
		Milestones: types.EncodeMilestones([]types.Milestone{{Topic: "hooks"}, {Topic: " "}, {Topic: "state"}}),
	}
	draft := &types.Roadmap{UserID: uuid.New(), Title: "Draft", CreatedAt: base.Add(2 * time.Hour)}
	if _, err := repo.Create(ctx, tx, []*types.Roadmap{older, newer, draft}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, newer.ID)
	if err != nil || got == nil || got.ID != newer.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if ms := got.MilestoneTopics(); len(ms) != 2 || ms[0] != "hooks" || ms[1] != "state" {
		t.Fatalf("MilestoneTopics: %v", ms)
	}
	if missing, err := repo.GetByID(ctx, tx, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", missing, err)
	}

	if locked, err := repo.LockByID(ctx, tx, older.ID); err != nil || locked == nil || locked.ID != older.ID {
		t.Fatalf("LockByID: got=%v err=%v", locked, err)
	}

	pub, err := repo.ListPublishedRecent(ctx, tx, 10)
	if err != nil || len(pub) != 2 {
		t.Fatalf("ListPublishedRecent: err=%v len=%d", err, len(pub))
	}
	if pub[0].ID != newer.ID || pub[1].ID != older.ID {
		t.Fatalf("ListPublishedRecent order: %s %s", pub[0].Title, pub[1].Title)
	}
	if pub, err := repo.ListPublishedRecent(ctx, tx, 1); err != nil || len(pub) != 1 {
		t.Fatalf("ListPublishedRecent limit: err=%v len=%d", err, len(pub))
	}

	if err := repo.FullDeleteByIDs(ctx, tx, []uuid.UUID{draft.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, draft.ID); err != nil || got != nil {
		t.Fatalf("after delete: got=%v err=%v", got, err)
	}
}

func TestRoadmapProgressRepo_ListInProgress(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRoadmapProgressRepo(db, testutil.Logger(t))

	user := uuid.New()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	zero := testutil.SeedRoadmap(t, ctx, tx, user, nil)
	done := testutil.SeedRoadmap(t, ctx, tx, user, nil)
	mid := testutil.SeedRoadmap(t, ctx, tx, user, nil)
	recent := testutil.SeedRoadmap(t, ctx, tx, user, nil)
	foreign := testutil.SeedRoadmap(t, ctx, tx, uuid.New(), nil)

	testutil.SeedProgress(t, ctx, tx, zero, 0, base.Add(5*time.Minute))
	testutil.SeedProgress(t, ctx, tx, done, 100, base.Add(6*time.Minute))
	testutil.SeedProgress(t, ctx, tx, mid, 45, base.Add(1*time.Minute))
	testutil.SeedProgress(t, ctx, tx, recent, 10, base.Add(2*time.Minute))
	testutil.SeedProgress(t, ctx, tx, foreign, 50, base.Add(9*time.Minute))

	rows, err := repo.ListInProgressByUserID(ctx, tx, user, 10)
	if err != nil {
		t.Fatalf("ListInProgressByUserID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 in-progress rows, got %d", len(rows))
	}
	if rows[0].RoadmapID != recent.ID || rows[1].RoadmapID != mid.ID {
		t.Fatalf("unexpected order: %v", rows)
	}
	if rows[1].Percent != 45 {
		t.Fatalf("percent: %v", rows[1].Percent)
	}

	if rows, err := repo.ListInProgressByUserID(ctx, tx, uuid.Nil, 10); err != nil || len(rows) != 0 {
		t.Fatalf("anonymous: err=%v rows=%v", err, rows)
	}

	if err := repo.FullDeleteByRoadmapIDs(ctx, tx, []uuid.UUID{mid.ID}); err != nil {
		t.Fatalf("FullDeleteByRoadmapIDs: %v", err)
	}
	rows, err = repo.ListInProgressByUserID(ctx, tx, user, 10)
	if err != nil || len(rows) != 1 || rows[0].RoadmapID != recent.ID {
		t.Fatalf("after delete: err=%v rows=%v", err, rows)
	}
}
