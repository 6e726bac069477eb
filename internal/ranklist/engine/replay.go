package engine

import (
	"context"
	"sort"

	"rankview/internal/ranklist/model"
	appErr "rankview/pkg/errors"
	"rankview/pkg/utils/logger"

	"github.com/coreos/go-semver/semver"
	"go.uber.org/zap"
)

// minReplayVersion is the oldest srk version whose snapshots carry enough
// detail to be replayed.
var minReplayVersion = *semver.New("0.3.0")

// CanRegenerate reports whether the ranklist supports replay: its version
// must be at least minReplayVersion and its declared sorter must be
// ICPC-style. Every replay entry point fails fast when this is false.
func CanRegenerate(ranklist *model.Ranklist) bool {
	if ranklist == nil || ranklist.Sorter == nil || ranklist.Sorter.Algorithm != model.SorterICPC {
		return false
	}
	version, err := semver.NewVersion(ranklist.Version)
	if err != nil {
		return false
	}
	return !version.LessThan(minReplayVersion)
}

// resolveSorterConfig merges the snapshot's sorter config over the ICPC
// defaults, field by field.
func resolveSorterConfig(ranklist *model.Ranklist) model.SorterConfig {
	var cfg model.SorterConfig
	if ranklist.Sorter != nil {
		cfg = ranklist.Sorter.Config
	}
	if cfg.Penalty == nil {
		penalty := model.TimeDuration{Value: 20, Unit: model.UnitMinute}
		cfg.Penalty = &penalty
	}
	if cfg.NoPenaltyResults == nil {
		cfg.NoPenaltyResults = []model.SolutionResult{
			model.ResultFirstBlood,
			model.ResultAccepted,
			model.ResultFrozen,
			model.ResultCompileError,
			model.ResultUnknownError,
			model.ResultNone,
		}
	}
	if cfg.TimeRounding == "" {
		cfg.TimeRounding = model.RoundFloor
	}
	if cfg.TimePrecision == "" {
		cfg.TimePrecision = model.UnitMillisecond
	}
	return cfg
}

func containsResult(results []model.SolutionResult, result model.SolutionResult) bool {
	for _, r := range results {
		if r == result {
			return true
		}
	}
	return false
}

// roundedSolveMillis converts a solve time to the configured precision with
// the configured rounding, then back to milliseconds for accumulation.
func roundedSolveMillis(t model.TimeDuration, cfg model.SorterConfig) float64 {
	value := t.In(cfg.TimePrecision, cfg.TimeRounding)
	return model.TimeDuration{Value: value, Unit: cfg.TimePrecision}.Millis()
}

// SortRows orders rows by descending score value, then ascending penalized
// time. The sort is stable so equal rows keep their relative order and
// replay stays deterministic.
func SortRows(rows []model.RanklistRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score.Value != rows[j].Score.Value {
			return rows[i].Score.Value > rows[j].Score.Value
		}
		return scoreMillis(rows[i].Score) < scoreMillis(rows[j].Score)
	})
}

// RegenerateFromLog rebuilds the full ranklist from a solution log: one zero
// row per original user, every event appended to its target status, then the
// ICPC penalty rule applied per row and per problem in submission order.
// Problem statistics are recomputed from scratch onto copies; the input
// snapshot is never modified.
//
// An event referencing an unknown user aborts processing of the remaining
// log (already-applied events keep their effect) with a logged error.
func RegenerateFromLog(ctx context.Context, original *model.Ranklist, events []SolutionEvent) (*model.Ranklist, error) {
	if !CanRegenerate(original) {
		return nil, appErr.New(appErr.ReplayUnsupported)
	}
	cfg := resolveSorterConfig(original)
	problemCount := len(original.Problems)

	rows := make([]model.RanklistRow, 0, len(original.Rows))
	rowIndex := make(map[string]int, len(original.Rows))
	for _, row := range original.Rows {
		rowIndex[row.User.Key()] = len(rows)
		rows = append(rows, model.RanklistRow{
			User:     row.User,
			Score:    model.RankScore{},
			Statuses: make([]model.RankProblemStatus, problemCount),
		})
	}

	for _, event := range events {
		index, ok := rowIndex[event.UserKey]
		if !ok {
			logger.Error(ctx, "solution log references unknown user", zap.String("user", event.UserKey))
			break
		}
		if event.ProblemIndex < 0 || event.ProblemIndex >= problemCount {
			logger.Error(ctx, "solution log references unknown problem",
				zap.String("user", event.UserKey), zap.Int("problem", event.ProblemIndex))
			break
		}
		status := &rows[index].Statuses[event.ProblemIndex]
		status.Solutions = append(status.Solutions, model.Solution{Result: event.Result, Time: event.Time})
	}

	accepted := make([]int, problemCount)
	submitted := make([]int, problemCount)
	for i := range rows {
		row := &rows[i]
		var scoreValue float64
		var totalMillis float64
		for p := range row.Statuses {
			status := &row.Statuses[p]
			for _, solution := range status.Solutions {
				if solution.Result == model.ResultNone {
					continue
				}
				if solution.Result == model.ResultFrozen {
					status.Result = solution.Result
					status.Tries++
					submitted[p]++
					continue
				}
				if solution.Result.IsAccepted() {
					status.Result = solution.Result
					solveTime := solution.Time
					status.Time = &solveTime
					status.Tries++
					accepted[p]++
					submitted[p]++
					// First accept wins; later events are ignored.
					break
				}
				if containsResult(cfg.NoPenaltyResults, solution.Result) {
					continue
				}
				status.Result = model.ResultRejected
				status.Tries++
				submitted[p]++
			}
			if status.Result.IsAccepted() {
				scoreValue++
				totalMillis += roundedSolveMillis(*status.Time, cfg) +
					float64(status.Tries-1)*cfg.Penalty.Millis()
			}
		}
		scoreTime := model.Milliseconds(totalMillis)
		row.Score = model.RankScore{Value: scoreValue, Time: &scoreTime}
	}
	SortRows(rows)

	problems := make([]model.Problem, len(original.Problems))
	copy(problems, original.Problems)
	for i := range problems {
		problems[i].Statistics = &model.ProblemStatistics{
			Accepted:  accepted[i],
			Submitted: submitted[i],
		}
	}

	regenerated := *original
	regenerated.Rows = rows
	regenerated.Problems = problems
	return &regenerated, nil
}

type statusKey struct {
	user    string
	problem int
}

// rowBuilder implements copy on first write over a shared row slice. Each
// touched row and each touched status is cloned exactly once; everything
// else keeps pointing at the original snapshot's data.
type rowBuilder struct {
	rows           []model.RanklistRow
	index          map[string]int
	clonedRows     map[string]struct{}
	clonedStatuses map[statusKey]struct{}
}

func newRowBuilder(original []model.RanklistRow) *rowBuilder {
	rows := make([]model.RanklistRow, len(original))
	copy(rows, original)
	index := make(map[string]int, len(rows))
	for i := range rows {
		index[rows[i].User.Key()] = i
	}
	return &rowBuilder{
		rows:           rows,
		index:          index,
		clonedRows:     map[string]struct{}{},
		clonedStatuses: map[statusKey]struct{}{},
	}
}

func (b *rowBuilder) row(userKey string) (*model.RanklistRow, bool) {
	i, ok := b.index[userKey]
	if !ok {
		return nil, false
	}
	if _, cloned := b.clonedRows[userKey]; !cloned {
		statuses := make([]model.RankProblemStatus, len(b.rows[i].Statuses))
		copy(statuses, b.rows[i].Statuses)
		b.rows[i].Statuses = statuses
		b.clonedRows[userKey] = struct{}{}
	}
	return &b.rows[i], true
}

// status returns a writable status for the given row; row must have been
// fetched through row first.
func (b *rowBuilder) status(userKey string, problemIndex int) *model.RankProblemStatus {
	i := b.index[userKey]
	key := statusKey{user: userKey, problem: problemIndex}
	if _, cloned := b.clonedStatuses[key]; !cloned {
		status := b.rows[i].Statuses[problemIndex]
		solutions := make([]model.Solution, len(status.Solutions))
		copy(solutions, status.Solutions)
		status.Solutions = solutions
		b.rows[i].Statuses[problemIndex] = status
		b.clonedStatuses[key] = struct{}{}
	}
	return &b.rows[i].Statuses[problemIndex]
}

func (b *rowBuilder) finish() []model.RanklistRow {
	return b.rows
}

// RegenerateRowsIncremental applies a log suffix of new events on top of an
// existing row sequence, cloning each touched row and status at most once
// (copy on first write) so untouched rows keep their shared structure.
// Terminal statuses ignore further events. Problem statistics are not
// recomputed here; run a full rebuild when they matter.
func RegenerateRowsIncremental(ctx context.Context, original *model.Ranklist, events []SolutionEvent) ([]model.RanklistRow, error) {
	if !CanRegenerate(original) {
		return nil, appErr.New(appErr.ReplayUnsupported)
	}
	cfg := resolveSorterConfig(original)
	builder := newRowBuilder(original.Rows)

	for _, event := range events {
		row, ok := builder.row(event.UserKey)
		if !ok {
			logger.Error(ctx, "solution log references unknown user", zap.String("user", event.UserKey))
			break
		}
		if event.ProblemIndex < 0 || event.ProblemIndex >= len(row.Statuses) {
			logger.Error(ctx, "solution log references unknown problem",
				zap.String("user", event.UserKey), zap.Int("problem", event.ProblemIndex))
			break
		}
		status := builder.status(event.UserKey, event.ProblemIndex)
		status.Solutions = append(status.Solutions, model.Solution{Result: event.Result, Time: event.Time})

		if status.Result.IsAccepted() {
			// Terminal; the event is recorded in the history only.
			continue
		}
		if event.Result == model.ResultFrozen {
			status.Result = event.Result
			status.Tries++
			continue
		}
		if event.Result.IsAccepted() {
			status.Result = event.Result
			solveTime := event.Time
			status.Time = &solveTime
			status.Tries++

			row.Score.Value++
			total := scoreMillis(row.Score)
			scoreTime := model.Milliseconds(total +
				roundedSolveMillis(event.Time, cfg) +
				float64(status.Tries-1)*cfg.Penalty.Millis())
			row.Score.Time = &scoreTime
			continue
		}
		if containsResult(cfg.NoPenaltyResults, event.Result) {
			continue
		}
		status.Result = model.ResultRejected
		status.Tries++
	}

	rows := builder.finish()
	SortRows(rows)
	return rows, nil
}
