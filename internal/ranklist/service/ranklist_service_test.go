package service

import (
	"context"
	"testing"

	"rankview/internal/ranklist/model"
	"rankview/internal/ranklist/repository"
	appErr "rankview/pkg/errors"
)

type memRepo struct {
	snapshots map[string]*model.Ranklist
}

func newMemRepo() *memRepo {
	return &memRepo{snapshots: make(map[string]*model.Ranklist)}
}

func (r *memRepo) GetSnapshot(ctx context.Context, key string) (*model.Ranklist, error) {
	ranklist, ok := r.snapshots[key]
	if !ok {
		return nil, appErr.New(appErr.SnapshotNotFound).WithDetail("key", key)
	}
	return ranklist, nil
}

func (r *memRepo) PutSnapshot(ctx context.Context, key string, ranklist *model.Ranklist) error {
	r.snapshots[key] = ranklist
	return nil
}

func (r *memRepo) ListSnapshots(ctx context.Context, prefix string) ([]repository.SnapshotInfo, error) {
	var infos []repository.SnapshotInfo
	for key := range r.snapshots {
		infos = append(infos, repository.SnapshotInfo{Key: key})
	}
	return infos, nil
}

func (r *memRepo) InvalidateCache(ctx context.Context, key string) error {
	return nil
}

func solvedStatus(min float64, tries int) model.RankProblemStatus {
	t := model.TimeDuration{Value: min, Unit: model.UnitMinute}
	return model.RankProblemStatus{
		Result: model.ResultAccepted,
		Time:   &t,
		Tries:  tries,
	}
}

func testRanklist() *model.Ranklist {
	aliceTime := model.TimeDuration{Value: 55, Unit: model.UnitMinute}
	bobTime := model.TimeDuration{Value: 40, Unit: model.UnitMinute}
	return &model.Ranklist{
		Type:    model.TypeGeneral,
		Version: "0.3.4",
		Contest: model.Contest{
			Title:    model.NewText("Live Contest"),
			Duration: model.TimeDuration{Value: 5, Unit: model.UnitHour},
		},
		Problems: []model.Problem{{Alias: "A"}, {Alias: "B"}},
		Series:   []model.RankSeries{{Rule: &model.SeriesRule{Preset: model.PresetNormal}}},
		Rows: []model.RanklistRow{
			{
				User:     model.User{ID: "bob", Name: model.NewText("bob")},
				Score:    model.RankScore{Value: 1, Time: &bobTime},
				Statuses: []model.RankProblemStatus{{}, solvedStatus(40, 1)},
			},
			{
				User:     model.User{ID: "alice", Name: model.NewText("alice")},
				Score:    model.RankScore{Value: 1, Time: &aliceTime},
				Statuses: []model.RankProblemStatus{solvedStatus(15, 3), {}},
			},
		},
		Sorter: &model.Sorter{Algorithm: model.SorterICPC},
	}
}

func newTestService(t *testing.T) (*RanklistService, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc, err := NewRanklistService(repo, Config{})
	if err != nil {
		t.Fatalf("create service failed: %v", err)
	}
	return svc, repo
}

func TestGetStatic(t *testing.T) {
	svc, repo := newTestService(t)
	repo.snapshots["c1"] = testRanklist()

	static, err := svc.GetStatic(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get static failed: %v", err)
	}
	if len(static.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(static.Rows))
	}
	// Rows keep snapshot order; bob leads on the 40min tie-break.
	if static.Rows[0].User.ID != "bob" {
		t.Fatalf("leader = %s, want bob", static.Rows[0].User.ID)
	}
	if v := static.Rows[0].RankValues[0]; v.Rank == nil || *v.Rank != 1 {
		t.Fatalf("bob rank = %v, want 1", v.Rank)
	}
	if v := static.Rows[1].RankValues[0]; v.Rank == nil || *v.Rank != 2 {
		t.Fatalf("alice rank = %v, want 2", v.Rank)
	}
}

func TestGetStaticSchemaGate(t *testing.T) {
	svc, repo := newTestService(t)

	wrongType := testRanklist()
	wrongType.Type = "custom"
	repo.snapshots["bad-type"] = wrongType
	if _, err := svc.GetStatic(context.Background(), "bad-type"); !appErr.Is(err, appErr.UnsupportedSchema) {
		t.Fatalf("expected UnsupportedSchema, got %v", err)
	}

	futureVersion := testRanklist()
	futureVersion.Version = "9.0.0"
	repo.snapshots["too-new"] = futureVersion
	if _, err := svc.GetStatic(context.Background(), "too-new"); !appErr.Is(err, appErr.UnsupportedVersion) {
		t.Fatalf("expected UnsupportedVersion, got %v", err)
	}

	badVersion := testRanklist()
	badVersion.Version = "latest"
	repo.snapshots["bad-version"] = badVersion
	if _, err := svc.GetStatic(context.Background(), "bad-version"); !appErr.Is(err, appErr.UnsupportedVersion) {
		t.Fatalf("expected UnsupportedVersion, got %v", err)
	}

	if _, err := svc.GetStatic(context.Background(), "missing"); !appErr.Is(err, appErr.SnapshotNotFound) {
		t.Fatalf("expected SnapshotNotFound, got %v", err)
	}
}

func TestGetSolutionLogMemoized(t *testing.T) {
	svc, repo := newTestService(t)
	repo.snapshots["c1"] = testRanklist()

	first, err := svc.GetSolutionLog(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get log failed: %v", err)
	}
	// alice's summary synthesizes 2 rejections + 1 accept, bob adds 1.
	if len(first) != 4 {
		t.Fatalf("log length = %d, want 4", len(first))
	}

	// Memoized: the log survives the snapshot disappearing.
	delete(repo.snapshots, "c1")
	second, err := svc.GetSolutionLog(context.Background(), "c1")
	if err != nil {
		t.Fatalf("memoized get failed: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("memoized log length = %d, want %d", len(second), len(first))
	}

	svc.InvalidateLog("c1")
	if _, err := svc.GetSolutionLog(context.Background(), "c1"); !appErr.Is(err, appErr.SnapshotNotFound) {
		t.Fatalf("expected rebuild after invalidation to miss, got %v", err)
	}
}

func TestGetPlayback(t *testing.T) {
	svc, repo := newTestService(t)
	repo.snapshots["c1"] = testRanklist()

	// At 20min alice has solved A (15min + 2 wrong tries) and bob has
	// nothing yet.
	static, err := svc.GetPlayback(context.Background(), "c1", model.TimeDuration{Value: 20, Unit: model.UnitMinute})
	if err != nil {
		t.Fatalf("playback failed: %v", err)
	}
	if static.Rows[0].User.ID != "alice" {
		t.Fatalf("leader at 20min = %s, want alice", static.Rows[0].User.ID)
	}
	alice := static.Rows[0]
	if alice.Score.Value != 1 {
		t.Fatalf("alice score at 20min = %v, want 1", alice.Score.Value)
	}
	// 15min solve + 2 * 20min penalty.
	if alice.Score.Time == nil || alice.Score.Time.Millis() != 55*60*1000 {
		t.Fatalf("alice penalized time = %v, want 55min", alice.Score.Time)
	}
	bob := static.Rows[1]
	if bob.Score.Value != 0 {
		t.Fatalf("bob score at 20min = %v, want 0", bob.Score.Value)
	}

	// At full time both have solved.
	static, err = svc.GetPlayback(context.Background(), "c1", model.TimeDuration{Value: 5, Unit: model.UnitHour})
	if err != nil {
		t.Fatalf("playback failed: %v", err)
	}
	if static.Rows[0].Score.Value != 1 || static.Rows[1].Score.Value != 1 {
		t.Fatalf("scores at full time = %v/%v, want 1/1",
			static.Rows[0].Score.Value, static.Rows[1].Score.Value)
	}
}

func TestGetPlaybackInvalidCutoff(t *testing.T) {
	svc, repo := newTestService(t)
	repo.snapshots["c1"] = testRanklist()

	cutoff := model.TimeDuration{Value: 10, Unit: "lightyear"}
	if _, err := svc.GetPlayback(context.Background(), "c1", cutoff); !appErr.Is(err, appErr.InvalidCutoff) {
		t.Fatalf("expected InvalidCutoff, got %v", err)
	}
	negative := model.TimeDuration{Value: -1, Unit: model.UnitMinute}
	if _, err := svc.GetPlayback(context.Background(), "c1", negative); !appErr.Is(err, appErr.InvalidCutoff) {
		t.Fatalf("expected InvalidCutoff, got %v", err)
	}
}

func TestGetPlaybackReplayGate(t *testing.T) {
	svc, repo := newTestService(t)
	noSorter := testRanklist()
	noSorter.Sorter = nil
	repo.snapshots["c1"] = noSorter

	cutoff := model.TimeDuration{Value: 1, Unit: model.UnitHour}
	if _, err := svc.GetPlayback(context.Background(), "c1", cutoff); !appErr.Is(err, appErr.ReplayUnsupported) {
		t.Fatalf("expected ReplayUnsupported, got %v", err)
	}
}
