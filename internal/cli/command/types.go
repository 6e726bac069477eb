package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	httpclient "rankview/internal/cli/http"
	"rankview/internal/cli/state"
	"rankview/internal/ranklist/model"
	"rankview/pkg/utils/format"
)

// Env is the shared inspector session: the loaded snapshot, the currently
// displayed state (base or a replayed prefix) and the persisted session.
type Env struct {
	Client    *httpclient.Client
	State     *state.SessionState
	StatePath string
	Out       io.Writer

	Source  string
	Base    *model.Ranklist
	Current *model.Ranklist
	Cutoff  *model.TimeDuration
}

func (e *Env) Printf(formatStr string, args ...interface{}) {
	_, _ = fmt.Fprintf(e.Out, formatStr+"\n", args...)
}

// SetBase installs a freshly loaded snapshot and resets the view to it.
func (e *Env) SetBase(source string, ranklist *model.Ranklist) {
	e.Source = source
	e.Base = ranklist
	e.Current = ranklist
	e.Cutoff = nil
	e.State.LastSnapshot = source
	e.State.LastCutoff = ""
	e.SaveState()
}

// SaveState persists the session state, ignoring write failures.
func (e *Env) SaveState() {
	if e.StatePath == "" {
		return
	}
	_ = state.Save(e.StatePath, *e.State)
}

func (e *Env) requireLoaded() error {
	if e.Base == nil {
		return fmt.Errorf("no snapshot loaded, use: open <file> or fetch <key>")
	}
	return nil
}

// ParseCutoff parses a "value,unit" cutoff expression such as "90,min".
func ParseCutoff(raw string) (model.TimeDuration, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return model.TimeDuration{}, fmt.Errorf("invalid cutoff %q, expected value,unit (e.g. 90,min)", raw)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || value < 0 {
		return model.TimeDuration{}, fmt.Errorf("invalid cutoff value %q", parts[0])
	}
	unit := model.TimeUnit(strings.TrimSpace(parts[1]))
	if !unit.Valid() {
		return model.TimeDuration{}, fmt.Errorf("invalid cutoff unit %q", parts[1])
	}
	return model.TimeDuration{Value: value, Unit: unit}, nil
}

// ProblemAlias returns the display alias of a problem, falling back to the
// alphabetic index when the snapshot does not define one.
func ProblemAlias(ranklist *model.Ranklist, index int) string {
	if index >= 0 && index < len(ranklist.Problems) && ranklist.Problems[index].Alias != "" {
		return ranklist.Problems[index].Alias
	}
	return format.NumberToAlphabet(index)
}

func clock(d *model.TimeDuration) string {
	if d == nil {
		return "--"
	}
	return format.SecondsToClock(int64(d.Millis()/1000), false)
}
