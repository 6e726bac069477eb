package engine

import (
	"context"
	"reflect"
	"testing"

	"rankview/internal/ranklist/model"
)

func sampleRanklist() *model.Ranklist {
	return &model.Ranklist{
		Type:    model.TypeGeneral,
		Version: "0.3.4",
		Contest: model.Contest{
			Title:    model.NewText("Sample Contest"),
			Duration: model.TimeDuration{Value: 5, Unit: model.UnitHour},
		},
		Problems: []model.Problem{{Alias: "A"}, {Alias: "B"}},
		Series: []model.RankSeries{
			{Title: "#", Rule: &model.SeriesRule{Preset: model.PresetNormal}},
			{Title: "R#", Rule: &model.SeriesRule{
				Preset:  model.PresetNormal,
				Options: model.SeriesRuleOptions{IncludeOfficialOnly: true},
			}},
		},
		Rows: []model.RanklistRow{
			scoredRow("alice", 2, 200, true),
			scoredRow("guest", 2, 200, false),
			scoredRow("bob", 1, 100, true),
		},
		Sorter: &model.Sorter{Algorithm: model.SorterICPC},
	}
}

func TestConvertToStaticRanklist(t *testing.T) {
	ranklist := sampleRanklist()
	static := ConvertToStaticRanklist(context.Background(), ranklist)

	if static == nil {
		t.Fatal("expected a static ranklist")
	}
	if len(static.Rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(static.Rows))
	}
	for i, row := range static.Rows {
		if len(row.RankValues) != len(ranklist.Series) {
			t.Fatalf("row %d has %d rank values, want %d", i, len(row.RankValues), len(ranklist.Series))
		}
	}

	// All-rows series ties the leaders, official-only series skips the guest.
	if v := static.Rows[0].RankValues[0]; v.Rank == nil || *v.Rank != 1 {
		t.Fatalf("alice overall rank = %v, want 1", v.Rank)
	}
	if v := static.Rows[1].RankValues[0]; v.Rank == nil || *v.Rank != 1 {
		t.Fatalf("guest overall rank = %v, want 1", v.Rank)
	}
	if v := static.Rows[1].RankValues[1]; v.Rank != nil {
		t.Fatalf("guest official rank = %d, want excluded", *v.Rank)
	}
	if v := static.Rows[2].RankValues[1]; v.Rank == nil || *v.Rank != 2 {
		t.Fatalf("bob official rank = %v, want 2", v.Rank)
	}
}

func TestConvertToStaticRanklistDoesNotMutateInput(t *testing.T) {
	ranklist := sampleRanklist()
	before := *ranklist
	beforeRows := make([]model.RanklistRow, len(ranklist.Rows))
	copy(beforeRows, ranklist.Rows)

	ConvertToStaticRanklist(context.Background(), ranklist)

	if !reflect.DeepEqual(*ranklist, before) {
		t.Fatal("conversion modified the snapshot header")
	}
	if !reflect.DeepEqual(ranklist.Rows, beforeRows) {
		t.Fatal("conversion modified the snapshot rows")
	}
}

func TestConvertToStaticRanklistDeterministic(t *testing.T) {
	ranklist := sampleRanklist()
	first := ConvertToStaticRanklist(context.Background(), ranklist)
	second := ConvertToStaticRanklist(context.Background(), ranklist)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two conversions of the same snapshot differ")
	}
}

func TestConvertToStaticRanklistNil(t *testing.T) {
	if got := ConvertToStaticRanklist(context.Background(), nil); got != nil {
		t.Fatalf("nil snapshot converted to %+v", got)
	}
}
