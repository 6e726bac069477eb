package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-semver/semver"

	"rankview/internal/ranklist/engine"
	"rankview/internal/ranklist/model"
	"rankview/internal/ranklist/repository"
	appErr "rankview/pkg/errors"
	"rankview/pkg/utils/logger"

	"go.uber.org/zap"
)

// maxSupportedVersion is the newest srk schema version this service can
// render. Snapshots above it may carry fields with changed semantics.
var maxSupportedVersion = *semver.New("0.3.99")

// Config holds ranklist service settings.
type Config struct {
	// LogCacheSize bounds the per-instance solution log memo. Zero means
	// the default.
	LogCacheSize int
}

const defaultLogCacheSize = 64

// RanklistService renders static ranklists and replays playback states from
// snapshot data.
type RanklistService struct {
	repo repository.SnapshotRepository

	mu        sync.Mutex
	logCache  map[string][]engine.SolutionEvent
	logOrder  []string
	cacheSize int
}

func NewRanklistService(repo repository.SnapshotRepository, cfg Config) (*RanklistService, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository is required")
	}
	if cfg.LogCacheSize <= 0 {
		cfg.LogCacheSize = defaultLogCacheSize
	}
	return &RanklistService{
		repo:      repo,
		logCache:  make(map[string][]engine.SolutionEvent),
		cacheSize: cfg.LogCacheSize,
	}, nil
}

// CheckSupported validates the snapshot against the schema gate: the type
// must be "general" and the version must parse and not exceed the supported
// range.
func CheckSupported(ranklist *model.Ranklist) error {
	if ranklist == nil || ranklist.Type != model.TypeGeneral {
		return appErr.New(appErr.UnsupportedSchema)
	}
	version, err := semver.NewVersion(ranklist.Version)
	if err != nil {
		return appErr.Wrap(err, appErr.UnsupportedVersion).WithDetail("version", ranklist.Version)
	}
	if maxSupportedVersion.LessThan(*version) {
		return appErr.New(appErr.UnsupportedVersion).WithDetail("version", ranklist.Version)
	}
	return nil
}

// GetStatic loads a snapshot and renders it with per-series rank values.
func (s *RanklistService) GetStatic(ctx context.Context, key string) (*model.StaticRanklist, error) {
	ranklist, err := s.loadSupported(ctx, key)
	if err != nil {
		return nil, err
	}
	return engine.ConvertToStaticRanklist(ctx, ranklist), nil
}

// GetSolutionLog returns the chronological solution log of a snapshot. The
// log is memoized per key; live updates must call InvalidateLog.
func (s *RanklistService) GetSolutionLog(ctx context.Context, key string) ([]engine.SolutionEvent, error) {
	s.mu.Lock()
	if events, ok := s.logCache[key]; ok {
		s.mu.Unlock()
		return events, nil
	}
	s.mu.Unlock()

	ranklist, err := s.loadSupported(ctx, key)
	if err != nil {
		return nil, err
	}
	events := engine.BuildSolutionLog(ranklist.Rows)
	s.storeLog(key, events)
	return events, nil
}

// GetPlayback replays the ranklist state at the cutoff time: the solution
// log is truncated at the cutoff and a full rebuild runs on the prefix.
func (s *RanklistService) GetPlayback(ctx context.Context, key string, cutoff model.TimeDuration) (*model.StaticRanklist, error) {
	if cutoff.Millis() < 0 {
		return nil, appErr.New(appErr.InvalidCutoff).WithDetail("cutoff", cutoff)
	}
	ranklist, err := s.loadSupported(ctx, key)
	if err != nil {
		return nil, err
	}
	if !engine.CanRegenerate(ranklist) {
		return nil, appErr.New(appErr.ReplayUnsupported).WithDetail("key", key)
	}

	events, err := s.GetSolutionLog(ctx, key)
	if err != nil {
		return nil, err
	}
	replayed, err := engine.RegenerateFromLog(ctx, ranklist, engine.FilterSolutionLog(events, cutoff))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.ReplayFailed).WithDetail("key", key)
	}
	logger.Debug(ctx, "ranklist playback generated",
		zap.String("key", key), zap.Float64("cutoff_ms", cutoff.Millis()))
	return engine.ConvertToStaticRanklist(ctx, replayed), nil
}

// ListSnapshots lists the snapshot keys available to this service.
func (s *RanklistService) ListSnapshots(ctx context.Context, prefix string) ([]repository.SnapshotInfo, error) {
	return s.repo.ListSnapshots(ctx, prefix)
}

// InvalidateLog drops the memoized solution log for a key. Called when the
// underlying snapshot changes.
func (s *RanklistService) InvalidateLog(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logCache[key]; !ok {
		return
	}
	delete(s.logCache, key)
	for i, k := range s.logOrder {
		if k == key {
			s.logOrder = append(s.logOrder[:i], s.logOrder[i+1:]...)
			break
		}
	}
}

func (s *RanklistService) loadSupported(ctx context.Context, key string) (*model.Ranklist, error) {
	if key == "" {
		return nil, appErr.ValidationError("key", "required")
	}
	ranklist, err := s.repo.GetSnapshot(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := CheckSupported(ranklist); err != nil {
		return nil, err
	}
	return ranklist, nil
}

func (s *RanklistService) storeLog(key string, events []engine.SolutionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logCache[key]; !ok {
		s.logOrder = append(s.logOrder, key)
	}
	s.logCache[key] = events
	for len(s.logOrder) > s.cacheSize {
		oldest := s.logOrder[0]
		s.logOrder = s.logOrder[1:]
		delete(s.logCache, oldest)
	}
}
