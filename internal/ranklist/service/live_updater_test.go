package service

import (
	"context"
	"encoding/json"
	"testing"

	"rankview/internal/common/mq"
	"rankview/internal/ranklist/model"
	appErr "rankview/pkg/errors"
)

type stubQueue struct {
	subscribed []string
	published  []*mq.Message
}

func (q *stubQueue) Publish(ctx context.Context, topic string, message *mq.Message) error {
	q.published = append(q.published, message)
	return nil
}

func (q *stubQueue) PublishBatch(ctx context.Context, topic string, messages []*mq.Message) error {
	q.published = append(q.published, messages...)
	return nil
}

func (q *stubQueue) Subscribe(ctx context.Context, topic string, handler mq.HandlerFunc) error {
	q.subscribed = append(q.subscribed, topic)
	return nil
}

func (q *stubQueue) SubscribeWithOptions(ctx context.Context, topic string, handler mq.HandlerFunc, opts *mq.SubscribeOptions) error {
	q.subscribed = append(q.subscribed, topic)
	return nil
}

func (q *stubQueue) Start() error { return nil }

func (q *stubQueue) Stop() error { return nil }

func (q *stubQueue) Ping(ctx context.Context) error { return nil }

func (q *stubQueue) Close() error { return nil }

func newTestUpdater(t *testing.T) (*LiveUpdater, *memRepo) {
	t.Helper()
	svc, repo := newTestService(t)
	updater, err := NewLiveUpdater(repo, svc, &stubQueue{}, LiveUpdaterConfig{})
	if err != nil {
		t.Fatalf("create updater failed: %v", err)
	}
	return updater, repo
}

func TestLiveUpdaterApply(t *testing.T) {
	updater, repo := newTestUpdater(t)
	repo.snapshots["c1"] = testRanklist()

	// carol is unknown; alice solving B moves her ahead of bob.
	batch := LiveEventBatch{
		RanklistKey: "c1",
		Events: []LiveSolutionEvent{
			{UserKey: "alice", ProblemIndex: 1, Result: model.ResultAccepted,
				Time: model.TimeDuration{Value: 70, Unit: model.UnitMinute}},
		},
	}
	if err := updater.Apply(context.Background(), batch); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	static, err := updater.GetCurrent(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get current failed: %v", err)
	}
	if static.Rows[0].User.ID != "alice" {
		t.Fatalf("live leader = %s, want alice", static.Rows[0].User.ID)
	}
	if static.Rows[0].Score.Value != 2 {
		t.Fatalf("alice live score = %v, want 2", static.Rows[0].Score.Value)
	}
	// 55min carried + 70min solve, no extra penalty.
	if static.Rows[0].Score.Time == nil || static.Rows[0].Score.Time.Millis() != 125*60*1000 {
		t.Fatalf("alice live time = %v, want 125min", static.Rows[0].Score.Time)
	}

	// The stored snapshot must be untouched.
	if repo.snapshots["c1"].Rows[1].Score.Value != 1 {
		t.Fatal("live update modified the stored snapshot")
	}
}

func TestLiveUpdaterApplyValidation(t *testing.T) {
	updater, repo := newTestUpdater(t)
	repo.snapshots["c1"] = testRanklist()

	missing := LiveEventBatch{Events: []LiveSolutionEvent{{UserKey: "alice"}}}
	if err := updater.Apply(context.Background(), missing); !appErr.Is(err, appErr.InvalidLiveEvent) {
		t.Fatalf("expected InvalidLiveEvent for empty key, got %v", err)
	}

	badProblem := LiveEventBatch{
		RanklistKey: "c1",
		Events:      []LiveSolutionEvent{{UserKey: "alice", ProblemIndex: 99}},
	}
	if err := updater.Apply(context.Background(), badProblem); !appErr.Is(err, appErr.InvalidLiveEvent) {
		t.Fatalf("expected InvalidLiveEvent for bad problem index, got %v", err)
	}
}

func TestLiveUpdaterApplyReplayGate(t *testing.T) {
	updater, repo := newTestUpdater(t)
	noSorter := testRanklist()
	noSorter.Sorter = nil
	repo.snapshots["c1"] = noSorter

	batch := LiveEventBatch{
		RanklistKey: "c1",
		Events:      []LiveSolutionEvent{{UserKey: "alice", ProblemIndex: 0, Result: model.ResultAccepted}},
	}
	if err := updater.Apply(context.Background(), batch); !appErr.Is(err, appErr.ReplayUnsupported) {
		t.Fatalf("expected ReplayUnsupported, got %v", err)
	}
}

func TestLiveUpdaterHandleMessageDropsMalformed(t *testing.T) {
	updater, _ := newTestUpdater(t)
	msg := &mq.Message{Body: []byte("{not json")}
	if err := updater.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("malformed message should be dropped, got %v", err)
	}
}

func TestLiveUpdaterReset(t *testing.T) {
	updater, repo := newTestUpdater(t)
	repo.snapshots["c1"] = testRanklist()

	batch := LiveEventBatch{
		RanklistKey: "c1",
		Events: []LiveSolutionEvent{
			{UserKey: "alice", ProblemIndex: 1, Result: model.ResultAccepted,
				Time: model.TimeDuration{Value: 70, Unit: model.UnitMinute}},
		},
	}
	if err := updater.Apply(context.Background(), batch); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	updater.Reset("c1")

	static, err := updater.GetCurrent(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get current failed: %v", err)
	}
	if static.Rows[0].Score.Value != 1 {
		t.Fatalf("score after reset = %v, want the snapshot value 1", static.Rows[0].Score.Value)
	}
}

func TestLiveEventBatchWireFormat(t *testing.T) {
	raw := `{"ranklistKey":"c1","events":[{"userKey":"alice","problemIndex":1,"result":"AC","time":[70,"min"]}]}`
	var batch LiveEventBatch
	if err := json.Unmarshal([]byte(raw), &batch); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if batch.RanklistKey != "c1" || len(batch.Events) != 1 {
		t.Fatalf("decoded batch = %+v", batch)
	}
	event := batch.Events[0]
	if event.UserKey != "alice" || event.Result != model.ResultAccepted || event.Time.Millis() != 70*60*1000 {
		t.Fatalf("decoded event = %+v", event)
	}
}
