package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"rankview/internal/ranklist/model"
)

func orgRow(name, org string, value float64, minutes float64, official bool) model.RanklistRow {
	row := scoredRow(name, value, minutes, official)
	row.User.Organization = model.NewText(org)
	return row
}

func TestNormalSeriesOfficialOnly(t *testing.T) {
	rows := []model.RanklistRow{
		scoredRow("a", 3, 100, true),
		scoredRow("x", 2, 90, false),
		scoredRow("b", 1, 50, true),
	}
	ranks, officialRanks := GenRowRanks(rows)
	series := []model.RankSeries{{
		Title: "#",
		Rule:  &model.SeriesRule{Preset: model.PresetNormal, Options: model.SeriesRuleOptions{IncludeOfficialOnly: true}},
	}}
	funcs := genSeriesFuncs(context.Background(), series, rows, ranks, officialRanks)

	if v := funcs[0](rows[0], 0); v.Rank == nil || *v.Rank != 1 {
		t.Fatalf("official row 0 rank = %v, want 1", v.Rank)
	}
	if v := funcs[0](rows[1], 1); v.Rank != nil {
		t.Fatalf("unofficial row got rank %d, want excluded", *v.Rank)
	}
	if v := funcs[0](rows[2], 2); v.Rank == nil || *v.Rank != 2 {
		t.Fatalf("official row 2 rank = %v, want 2", v.Rank)
	}
}

func TestNormalSeriesIncludesEveryone(t *testing.T) {
	rows := []model.RanklistRow{
		scoredRow("a", 3, 100, true),
		scoredRow("x", 2, 90, false),
	}
	ranks, officialRanks := GenRowRanks(rows)
	series := []model.RankSeries{{Rule: &model.SeriesRule{Preset: model.PresetNormal}}}
	funcs := genSeriesFuncs(context.Background(), series, rows, ranks, officialRanks)

	if v := funcs[0](rows[1], 1); v.Rank == nil || *v.Rank != 2 {
		t.Fatalf("row 1 rank = %v, want 2", v.Rank)
	}
}

func TestUniqByUserFieldDedup(t *testing.T) {
	rows := []model.RanklistRow{
		orgRow("a", "MIT", 4, 100, true),
		orgRow("b", "MIT", 3, 90, true),
		orgRow("c", "CMU", 2, 80, true),
		orgRow("d", "CMU", 1, 70, true),
		orgRow("e", "UW", 1, 60, true),
	}
	ranks, officialRanks := GenRowRanks(rows)
	series := []model.RankSeries{{Rule: &model.SeriesRule{
		Preset:  model.PresetUniqByUserField,
		Options: model.SeriesRuleOptions{Field: "organization"},
	}}}
	fn := genSeriesFuncs(context.Background(), series, rows, ranks, officialRanks)[0]

	wantRanks := []*int{intPtr(1), nil, intPtr(2), nil, intPtr(3)}
	for i, row := range rows {
		got := fn(row, i)
		want := wantRanks[i]
		if (got.Rank == nil) != (want == nil) {
			t.Fatalf("row %d rank presence mismatch: got %v want %v", i, got.Rank, want)
		}
		if want != nil && *got.Rank != *want {
			t.Fatalf("row %d rank = %d, want %d", i, *got.Rank, *want)
		}
	}
}

func TestUniqByUserFieldTiedRowsShareSlot(t *testing.T) {
	// Two first-seen organizations on outer-tied rows collapse to one
	// counter slot; the counter advances only when the outer rank moves.
	rows := []model.RanklistRow{
		orgRow("a", "MIT", 3, 100, true),
		orgRow("b", "CMU", 3, 100, true),
		orgRow("c", "UW", 2, 90, true),
	}
	ranks, officialRanks := GenRowRanks(rows)
	series := []model.RankSeries{{Rule: &model.SeriesRule{
		Preset:  model.PresetUniqByUserField,
		Options: model.SeriesRuleOptions{Field: "organization"},
	}}}
	fn := genSeriesFuncs(context.Background(), series, rows, ranks, officialRanks)[0]

	for i, want := range []int{1, 1, 3} {
		got := fn(rows[i], i)
		if got.Rank == nil || *got.Rank != want {
			t.Fatalf("row %d rank = %v, want %d", i, got.Rank, want)
		}
	}
}

func TestRatioEndpointsExactAccumulation(t *testing.T) {
	rows := make([]model.RanklistRow, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, scoredRow(fmt.Sprintf("u%d", i), 1, float64(i), true))
	}
	ratio := &model.SegmentRatio{Value: []json.Number{"0.1", "0.2", "0.3"}}
	endpoints := ratioEndpoints(ratio, rows)

	// 0.1, 0.3 and 0.6 of 40 are exact; ceil must not push them up.
	want := []int{4, 12, 24}
	for i := range want {
		if endpoints[i] != want[i] {
			t.Fatalf("endpoint[%d] = %d, want %d", i, endpoints[i], want[i])
		}
	}
}

func TestRatioEndpointsRounding(t *testing.T) {
	rows := make([]model.RanklistRow, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, scoredRow(fmt.Sprintf("u%d", i), 1, float64(i), true))
	}
	ratio := &model.SegmentRatio{Value: []json.Number{"0.25"}}
	if got := ratioEndpoints(ratio, rows); got[0] != 3 {
		t.Fatalf("default ceil endpoint = %d, want 3", got[0])
	}
	ratio.Rounding = model.RoundFloor
	if got := ratioEndpoints(ratio, rows); got[0] != 2 {
		t.Fatalf("floor endpoint = %d, want 2", got[0])
	}
}

func TestRatioEndpointsSubmittedDenominator(t *testing.T) {
	rows := []model.RanklistRow{
		scoredRow("a", 1, 10, true),
		scoredRow("b", 0, 0, true),
		scoredRow("c", 0, 0, true),
		scoredRow("x", 1, 10, false),
	}
	rows[0].Statuses = []model.RankProblemStatus{{Result: model.ResultAccepted}}
	rows[1].Statuses = []model.RankProblemStatus{{Result: model.ResultRejected}}
	rows[2].Statuses = []model.RankProblemStatus{{Result: model.ResultNone}}
	rows[3].Statuses = []model.RankProblemStatus{{Result: model.ResultAccepted}}

	ratio := &model.SegmentRatio{Value: []json.Number{"0.5"}, Denominator: "submitted"}
	// Two official rows submitted anything; ceil(0.5*2) = 1.
	if got := ratioEndpoints(ratio, rows); got[0] != 1 {
		t.Fatalf("submitted-denominator endpoint = %d, want 1", got[0])
	}
}

func icpcSeries(opts model.SeriesRuleOptions, segmentCount int) model.RankSeries {
	segments := make([]model.RankSeriesSegment, segmentCount)
	return model.RankSeries{
		Rule:     &model.SeriesRule{Preset: model.PresetICPC, Options: opts},
		Segments: segments,
	}
}

func TestICPCSegmentsByCount(t *testing.T) {
	rows := []model.RanklistRow{
		scoredRow("a", 5, 100, true),
		scoredRow("b", 4, 90, true),
		scoredRow("x", 4, 90, false),
		scoredRow("c", 3, 80, true),
		scoredRow("d", 2, 70, true),
	}
	_, officialRanks := GenRowRanks(rows)
	cfg := icpcSeries(model.SeriesRuleOptions{
		Count: &model.SegmentCount{Value: []int{1, 2}},
	}, 2)
	fn := genICPCFunc(cfg, rows, officialRanks)

	checkSegment := func(index int, want *int) {
		t.Helper()
		got := fn(rows[index], index)
		if (got.SegmentIndex == nil) != (want == nil) {
			t.Fatalf("row %d segment presence mismatch: got %v want %v", index, got.SegmentIndex, want)
		}
		if want != nil && *got.SegmentIndex != *want {
			t.Fatalf("row %d segment = %d, want %d", index, *got.SegmentIndex, *want)
		}
	}
	checkSegment(0, intPtr(0)) // rank 1, inside quota 1
	checkSegment(1, intPtr(1)) // rank 2, inside cumulative quota 3
	checkSegment(2, nil)       // unofficial
	checkSegment(3, intPtr(1)) // rank 3
	checkSegment(4, nil)       // rank 4, beyond every quota
}

func TestICPCTiedRowsSpillIntoSegment(t *testing.T) {
	rows := []model.RanklistRow{
		scoredRow("a", 5, 100, true),
		scoredRow("b", 5, 100, true),
		scoredRow("c", 4, 90, true),
	}
	_, officialRanks := GenRowRanks(rows)

	// Competition ranks give both leaders rank 1, so a quota of 1 admits
	// them both.
	cfg := icpcSeries(model.SeriesRuleOptions{
		Count: &model.SegmentCount{Value: []int{1}},
	}, 1)
	fn := genICPCFunc(cfg, rows, officialRanks)
	for i := 0; i < 2; i++ {
		if got := fn(rows[i], i); got.SegmentIndex == nil || *got.SegmentIndex != 0 {
			t.Fatalf("tied row %d segment = %v, want 0", i, got.SegmentIndex)
		}
	}

	// noTied falls back to dense positions and enforces the quota exactly.
	cfg = icpcSeries(model.SeriesRuleOptions{
		Count: &model.SegmentCount{Value: []int{1}, NoTied: true},
	}, 1)
	fn = genICPCFunc(cfg, rows, officialRanks)
	if got := fn(rows[0], 0); got.SegmentIndex == nil || *got.SegmentIndex != 0 {
		t.Fatalf("noTied row 0 segment = %v, want 0", got.SegmentIndex)
	}
	if got := fn(rows[1], 1); got.SegmentIndex != nil {
		t.Fatalf("noTied row 1 segment = %d, want none", *got.SegmentIndex)
	}
}

func TestICPCRatioAndCountBothBind(t *testing.T) {
	rows := make([]model.RanklistRow, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, scoredRow(fmt.Sprintf("u%d", i), float64(10-i), float64(i), true))
	}
	_, officialRanks := GenRowRanks(rows)

	// Ratio admits ranks 1..5 to segment 0; count admits only ranks 1..2.
	// A row enters a segment only when every rule's endpoint admits it.
	cfg := icpcSeries(model.SeriesRuleOptions{
		Ratio: &model.SegmentRatio{Value: []json.Number{"0.5"}},
		Count: &model.SegmentCount{Value: []int{2}},
	}, 1)
	fn := genICPCFunc(cfg, rows, officialRanks)

	for i := 0; i < 2; i++ {
		if got := fn(rows[i], i); got.SegmentIndex == nil {
			t.Fatalf("row %d expected in segment 0", i)
		}
	}
	if got := fn(rows[2], 2); got.SegmentIndex != nil {
		t.Fatalf("row 2 segment = %d, want none", *got.SegmentIndex)
	}
}

func TestUnknownPresetDegrades(t *testing.T) {
	rows := []model.RanklistRow{scoredRow("a", 1, 10, true)}
	ranks, officialRanks := GenRowRanks(rows)
	series := []model.RankSeries{{Rule: &model.SeriesRule{Preset: "Lottery"}}}
	fn := genSeriesFuncs(context.Background(), series, rows, ranks, officialRanks)[0]

	if got := fn(rows[0], 0); got.Rank != nil || got.SegmentIndex != nil {
		t.Fatalf("unknown preset should produce an empty rank value, got %+v", got)
	}
}
