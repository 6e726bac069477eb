package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rankview/internal/ranklist/engine"
	"rankview/internal/ranklist/model"
	"rankview/internal/ranklist/repository"
	"rankview/internal/ranklist/service"
)

// Command is one inspector command.
type Command struct {
	Name    string
	Usage   string
	Summary string
	Run     func(ctx context.Context, env *Env, args []string) error
}

// Registry returns all inspector commands keyed by name.
func Registry() map[string]Command {
	commands := []Command{
		{
			Name:    "open",
			Usage:   "open <file>",
			Summary: "load a ranklist snapshot from a local file",
			Run:     runOpen,
		},
		{
			Name:    "fetch",
			Usage:   "fetch <key>",
			Summary: "load a ranklist from the service",
			Run:     runFetch,
		},
		{
			Name:    "info",
			Usage:   "info",
			Summary: "show contest metadata of the loaded snapshot",
			Run:     runInfo,
		},
		{
			Name:    "problems",
			Usage:   "problems",
			Summary: "list problems with their statistics",
			Run:     runProblems,
		},
		{
			Name:    "top",
			Usage:   "top [n]",
			Summary: "show the standings (default top 20)",
			Run:     runTop,
		},
		{
			Name:    "user",
			Usage:   "user <key>",
			Summary: "show a single row with per-problem detail",
			Run:     runUser,
		},
		{
			Name:    "log",
			Usage:   "log [n]",
			Summary: "show the chronological solution log",
			Run:     runLog,
		},
		{
			Name:    "seek",
			Usage:   "seek <value,unit>",
			Summary: "replay the standings at a cutoff time (e.g. seek 90,min)",
			Run:     runSeek,
		},
		{
			Name:    "reset",
			Usage:   "reset",
			Summary: "return to the full snapshot state",
			Run:     runReset,
		},
	}
	registry := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		registry[cmd.Name] = cmd
	}
	return registry
}

func runOpen(ctx context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <file>")
	}
	ranklist, err := repository.LoadSnapshotFile(args[0])
	if err != nil {
		return err
	}
	if err := service.CheckSupported(ranklist); err != nil {
		return err
	}
	env.SetBase(args[0], ranklist)
	env.Printf("loaded %s: %s (%d rows, %d problems)",
		args[0], ranklist.Contest.Title.String(), len(ranklist.Rows), len(ranklist.Problems))
	return nil
}

func runFetch(ctx context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: fetch <key>")
	}
	ranklist, err := env.Client.FetchRanklist(ctx, args[0])
	if err != nil {
		return err
	}
	if err := service.CheckSupported(ranklist); err != nil {
		return err
	}
	env.SetBase(args[0], ranklist)
	env.Printf("fetched %s: %s (%d rows, %d problems)",
		args[0], ranklist.Contest.Title.String(), len(ranklist.Rows), len(ranklist.Problems))
	return nil
}

func runInfo(ctx context.Context, env *Env, args []string) error {
	if err := env.requireLoaded(); err != nil {
		return err
	}
	ranklist := env.Current
	env.Printf("title:    %s", ranklist.Contest.Title.String())
	duration := ranklist.Contest.Duration
	env.Printf("duration: %s", clock(&duration))
	env.Printf("version:  %s", ranklist.Version)
	env.Printf("problems: %d", len(ranklist.Problems))
	env.Printf("rows:     %d", len(ranklist.Rows))
	for i, series := range ranklist.Series {
		preset := ""
		if series.Rule != nil {
			preset = series.Rule.Preset
		}
		env.Printf("series %d: title=%q preset=%q", i, series.Title, preset)
	}
	if ranklist.Sorter != nil {
		env.Printf("sorter:   %s", ranklist.Sorter.Algorithm)
	}
	env.Printf("replay:   %v", engine.CanRegenerate(env.Base))
	if env.Cutoff != nil {
		env.Printf("cutoff:   %s", clock(env.Cutoff))
	}
	return nil
}

func runProblems(ctx context.Context, env *Env, args []string) error {
	if err := env.requireLoaded(); err != nil {
		return err
	}
	for i, problem := range env.Current.Problems {
		accepted, submitted := 0, 0
		if problem.Statistics != nil {
			accepted = problem.Statistics.Accepted
			submitted = problem.Statistics.Submitted
		}
		title := problem.Title.String()
		env.Printf("%-4s %-30s accepted=%d submitted=%d", ProblemAlias(env.Current, i), title, accepted, submitted)
	}
	return nil
}

func runTop(ctx context.Context, env *Env, args []string) error {
	if err := env.requireLoaded(); err != nil {
		return err
	}
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: top [n]")
		}
		limit = n
	}

	static := engine.ConvertToStaticRanklist(ctx, env.Current)
	header := fmt.Sprintf("%-5s %-24s %6s %9s", "RANK", "USER", "SCORE", "TIME")
	for i := range static.Problems {
		header += fmt.Sprintf(" %4s", ProblemAlias(env.Current, i))
	}
	env.Printf("%s", header)

	for i, row := range static.Rows {
		if i >= limit {
			break
		}
		line := fmt.Sprintf("%-5s %-24s %6g %9s",
			rankCell(row.RankValues), truncate(row.User.Name.String(), 24), row.Score.Value, clock(row.Score.Time))
		for _, status := range row.Statuses {
			line += fmt.Sprintf(" %4s", statusCell(status))
		}
		env.Printf("%s", line)
	}
	return nil
}

func runUser(ctx context.Context, env *Env, args []string) error {
	if err := env.requireLoaded(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: user <key>")
	}
	key := args[0]
	for _, row := range env.Current.Rows {
		if row.User.Key() != key && !strings.EqualFold(row.User.Name.String(), key) {
			continue
		}
		env.Printf("user:  %s (%s)", row.User.Name.String(), row.User.Key())
		if org := row.User.Organization.String(); org != "" {
			env.Printf("org:   %s", org)
		}
		env.Printf("score: %g  time: %s", row.Score.Value, clock(row.Score.Time))
		for i, status := range row.Statuses {
			detail := fmt.Sprintf("%-4s %-4s tries=%d time=%s",
				ProblemAlias(env.Current, i), resultCell(status.Result), status.Tries, clock(status.Time))
			for _, solution := range status.Solutions {
				solutionTime := solution.Time
				detail += fmt.Sprintf("  [%s@%s]", resultCell(solution.Result), clock(&solutionTime))
			}
			env.Printf("%s", detail)
		}
		return nil
	}
	return fmt.Errorf("user %q not found", key)
}

func runLog(ctx context.Context, env *Env, args []string) error {
	if err := env.requireLoaded(); err != nil {
		return err
	}
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: log [n]")
		}
		limit = n
	}
	events := engine.BuildSolutionLog(env.Current.Rows)
	env.Printf("%d events", len(events))
	for i, event := range events {
		if i >= limit {
			break
		}
		eventTime := event.Time
		env.Printf("%9s %-4s %-4s %s",
			clock(&eventTime), ProblemAlias(env.Current, event.ProblemIndex), resultCell(event.Result), event.UserKey)
	}
	return nil
}

func runSeek(ctx context.Context, env *Env, args []string) error {
	if err := env.requireLoaded(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: seek <value,unit>")
	}
	cutoff, err := ParseCutoff(args[0])
	if err != nil {
		return err
	}
	if !engine.CanRegenerate(env.Base) {
		return fmt.Errorf("snapshot does not support replay")
	}
	events := engine.FilterSolutionLog(engine.BuildSolutionLog(env.Base.Rows), cutoff)
	replayed, err := engine.RegenerateFromLog(ctx, env.Base, events)
	if err != nil {
		return err
	}
	env.Current = replayed
	env.Cutoff = &cutoff
	env.State.LastCutoff = args[0]
	env.SaveState()
	env.Printf("replayed %d events up to %s", len(events), clock(&cutoff))
	return nil
}

func runReset(ctx context.Context, env *Env, args []string) error {
	if err := env.requireLoaded(); err != nil {
		return err
	}
	env.Current = env.Base
	env.Cutoff = nil
	env.State.LastCutoff = ""
	env.SaveState()
	env.Printf("back to full snapshot state")
	return nil
}

func rankCell(values []model.RankValue) string {
	if len(values) == 0 || values[0].Rank == nil {
		return "*"
	}
	return strconv.Itoa(*values[0].Rank)
}

// statusCell renders a per-problem cell in scoreboard shorthand: "+" solved
// first try, "+2" solved with two rejections before, "-3" three failed
// tries, "?1" pending, "." untouched.
func statusCell(status model.RankProblemStatus) string {
	switch status.Result {
	case model.ResultFirstBlood, model.ResultAccepted:
		if status.Tries <= 1 {
			return "+"
		}
		return fmt.Sprintf("+%d", status.Tries-1)
	case model.ResultFrozen:
		if status.Tries == 0 {
			return "?"
		}
		return fmt.Sprintf("?%d", status.Tries)
	case model.ResultNone:
		if status.Tries == 0 {
			return "."
		}
		return fmt.Sprintf("-%d", status.Tries)
	default:
		if status.Tries == 0 {
			return "-"
		}
		return fmt.Sprintf("-%d", status.Tries)
	}
}

func resultCell(result model.SolutionResult) string {
	if result == model.ResultNone {
		return "."
	}
	return string(result)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
