package engine

import (
	"sort"

	"rankview/internal/ranklist/model"
)

// SolutionEvent is one flattened submission event: the unit of replay input.
type SolutionEvent struct {
	UserKey      string
	ProblemIndex int
	Result       model.SolutionResult
	Time         model.TimeDuration
}

// BuildSolutionLog flattens every row's per-problem submission history into a
// single chronologically sorted log. When a status carries no detailed
// history but its summary result is accepted, the history is approximated as
// tries-1 rejections followed by the accept, all at the summary time.
// Summary-only statuses that never got accepted cannot be reconstructed and
// contribute nothing.
func BuildSolutionLog(rows []model.RanklistRow) []SolutionEvent {
	var events []SolutionEvent
	for _, row := range rows {
		userKey := row.User.Key()
		for index, status := range row.Statuses {
			if len(status.Solutions) > 0 {
				for _, solution := range status.Solutions {
					events = append(events, SolutionEvent{
						UserKey:      userKey,
						ProblemIndex: index,
						Result:       solution.Result,
						Time:         solution.Time,
					})
				}
				continue
			}
			if status.Result.IsAccepted() && status.Time != nil {
				for i := 1; i < status.Tries; i++ {
					events = append(events, SolutionEvent{
						UserKey:      userKey,
						ProblemIndex: index,
						Result:       model.ResultRejected,
						Time:         *status.Time,
					})
				}
				events = append(events, SolutionEvent{
					UserKey:      userKey,
					ProblemIndex: index,
					Result:       status.Result,
					Time:         *status.Time,
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		// Same unit compares raw values, mixed units normalize first.
		var timeComp float64
		if a.Time.Unit == b.Time.Unit {
			timeComp = a.Time.Value - b.Time.Value
		} else {
			timeComp = a.Time.Millis() - b.Time.Millis()
		}
		if timeComp != 0 {
			return timeComp < 0
		}
		return a.Result.LogPriority() < b.Result.LogPriority()
	})
	return events
}

// FilterSolutionLog returns the log prefix whose entries are at or before the
// cutoff, preserving order. The log must already be sorted by time ascending
// (BuildSolutionLog guarantees this); lookup is a binary search for the last
// qualifying index.
func FilterSolutionLog(events []SolutionEvent, cutoff model.TimeDuration) []SolutionEvent {
	limit := cutoff.Millis()
	lastIndex := -1
	low, high := 0, len(events)-1
	for low <= high {
		mid := (low + high) >> 1
		if events[mid].Time.Millis() <= limit {
			lastIndex = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return events[:lastIndex+1]
}
