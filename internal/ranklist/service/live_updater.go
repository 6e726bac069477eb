package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"rankview/internal/common/mq"
	"rankview/internal/ranklist/engine"
	"rankview/internal/ranklist/model"
	"rankview/internal/ranklist/repository"
	appErr "rankview/pkg/errors"
	"rankview/pkg/utils/logger"

	"go.uber.org/zap"
)

// DefaultLiveTopic is the topic live solution events arrive on.
const DefaultLiveTopic = "ranklist.solutions"

// LiveSolutionEvent is the wire form of one live submission event.
type LiveSolutionEvent struct {
	UserKey      string               `json:"userKey"`
	ProblemIndex int                  `json:"problemIndex"`
	Result       model.SolutionResult `json:"result"`
	Time         model.TimeDuration   `json:"time"`
}

// LiveEventBatch is the message payload for a batch of events targeting one
// ranklist.
type LiveEventBatch struct {
	RanklistKey string              `json:"ranklistKey"`
	Events      []LiveSolutionEvent `json:"events"`
}

// LiveUpdaterConfig holds live update pipeline settings.
type LiveUpdaterConfig struct {
	Topic         string
	ConsumerGroup string
}

// LiveUpdater keeps an in-memory current state per ranklist, advanced by
// incremental replay of solution events from the queue. The first event for
// a key pulls the base snapshot from the repository.
type LiveUpdater struct {
	repo    repository.SnapshotRepository
	service *RanklistService
	queue   mq.MessageQueue
	topic   string
	group   string

	mu     sync.RWMutex
	states map[string]*model.Ranklist
}

func NewLiveUpdater(repo repository.SnapshotRepository, svc *RanklistService, queue mq.MessageQueue, cfg LiveUpdaterConfig) (*LiveUpdater, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("ranklist service is required")
	}
	if queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultLiveTopic
	}
	return &LiveUpdater{
		repo:    repo,
		service: svc,
		queue:   queue,
		topic:   cfg.Topic,
		group:   cfg.ConsumerGroup,
		states:  make(map[string]*model.Ranklist),
	}, nil
}

// Start subscribes to the live event topic. Events are applied by a single
// worker; ordering across a ranklist's events is load-bearing for replay.
func (u *LiveUpdater) Start(ctx context.Context) error {
	opts := &mq.SubscribeOptions{
		ConsumerGroup: u.group,
		Concurrency:   1,
	}
	if err := u.queue.SubscribeWithOptions(ctx, u.topic, u.handleMessage, opts); err != nil {
		return err
	}
	return u.queue.Start()
}

// Stop stops consuming live events.
func (u *LiveUpdater) Stop() error {
	return u.queue.Stop()
}

// GetCurrent renders the live state of a ranklist. A key with no live events
// yet falls back to the stored snapshot.
func (u *LiveUpdater) GetCurrent(ctx context.Context, key string) (*model.StaticRanklist, error) {
	u.mu.RLock()
	state, ok := u.states[key]
	u.mu.RUnlock()
	if ok {
		return engine.ConvertToStaticRanklist(ctx, state), nil
	}
	return u.service.GetStatic(ctx, key)
}

func (u *LiveUpdater) handleMessage(ctx context.Context, message *mq.Message) error {
	var batch LiveEventBatch
	if err := json.Unmarshal(message.Body, &batch); err != nil {
		// Malformed payloads are dropped, not retried.
		logger.Error(ctx, "malformed live event batch", zap.Error(err), zap.String("message_id", message.ID))
		return nil
	}
	if err := u.Apply(ctx, batch); err != nil {
		if appErr.Is(err, appErr.InvalidLiveEvent) || appErr.Is(err, appErr.ReplayUnsupported) {
			logger.Error(ctx, "dropping unusable live event batch",
				zap.String("key", batch.RanklistKey), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// Apply advances the live state of one ranklist by a batch of events.
func (u *LiveUpdater) Apply(ctx context.Context, batch LiveEventBatch) error {
	if batch.RanklistKey == "" {
		return appErr.New(appErr.InvalidLiveEvent).WithMessage("ranklist key is empty")
	}
	if len(batch.Events) == 0 {
		return nil
	}

	base, err := u.state(ctx, batch.RanklistKey)
	if err != nil {
		return err
	}

	events := make([]engine.SolutionEvent, 0, len(batch.Events))
	for _, event := range batch.Events {
		if event.UserKey == "" || event.ProblemIndex < 0 || event.ProblemIndex >= len(base.Problems) {
			return appErr.New(appErr.InvalidLiveEvent).
				WithDetail("user", event.UserKey).
				WithDetail("problem", event.ProblemIndex)
		}
		events = append(events, engine.SolutionEvent{
			UserKey:      event.UserKey,
			ProblemIndex: event.ProblemIndex,
			Result:       event.Result,
			Time:         event.Time,
		})
	}

	rows, err := engine.RegenerateRowsIncremental(ctx, base, events)
	if err != nil {
		return err
	}
	next := *base
	next.Rows = rows

	u.mu.Lock()
	u.states[batch.RanklistKey] = &next
	u.mu.Unlock()

	// The stored snapshot's derived log no longer matches the live state.
	u.service.InvalidateLog(batch.RanklistKey)

	logger.Info(ctx, "live ranklist advanced",
		zap.String("key", batch.RanklistKey), zap.Int("events", len(events)))
	return nil
}

// Reset drops the live state of a key, falling back to the stored snapshot.
func (u *LiveUpdater) Reset(key string) {
	u.mu.Lock()
	delete(u.states, key)
	u.mu.Unlock()
}

func (u *LiveUpdater) state(ctx context.Context, key string) (*model.Ranklist, error) {
	u.mu.RLock()
	state, ok := u.states[key]
	u.mu.RUnlock()
	if ok {
		return state, nil
	}

	ranklist, err := u.repo.GetSnapshot(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := CheckSupported(ranklist); err != nil {
		return nil, err
	}
	if !engine.CanRegenerate(ranklist) {
		return nil, appErr.New(appErr.ReplayUnsupported).WithDetail("key", key)
	}
	return ranklist, nil
}
