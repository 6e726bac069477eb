package command

import (
	"testing"

	"rankview/internal/ranklist/model"
)

func TestParseCutoff(t *testing.T) {
	cutoff, err := ParseCutoff("90,min")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cutoff.Value != 90 || cutoff.Unit != model.UnitMinute {
		t.Fatalf("cutoff = %+v, want 90 min", cutoff)
	}

	for _, raw := range []string{"", "90", "90,lightyear", "abc,min", "-1,min"} {
		if _, err := ParseCutoff(raw); err == nil {
			t.Fatalf("ParseCutoff(%q) succeeded, want error", raw)
		}
	}
}

func TestProblemAliasFallback(t *testing.T) {
	ranklist := &model.Ranklist{Problems: []model.Problem{{Alias: "X"}, {}}}
	if got := ProblemAlias(ranklist, 0); got != "X" {
		t.Fatalf("alias = %q, want X", got)
	}
	if got := ProblemAlias(ranklist, 1); got != "B" {
		t.Fatalf("fallback alias = %q, want B", got)
	}
}

func TestStatusCell(t *testing.T) {
	cases := []struct {
		status model.RankProblemStatus
		want   string
	}{
		{model.RankProblemStatus{Result: model.ResultAccepted, Tries: 1}, "+"},
		{model.RankProblemStatus{Result: model.ResultFirstBlood, Tries: 3}, "+2"},
		{model.RankProblemStatus{Result: model.ResultFrozen, Tries: 2}, "?2"},
		{model.RankProblemStatus{Result: model.ResultRejected, Tries: 4}, "-4"},
		{model.RankProblemStatus{}, "."},
	}
	for _, tc := range cases {
		if got := statusCell(tc.status); got != tc.want {
			t.Fatalf("statusCell(%+v) = %q, want %q", tc.status, got, tc.want)
		}
	}
}
