package engine

import (
	"context"

	"rankview/internal/ranklist/model"
)

// ConvertToStaticRanklist annotates every row with one RankValue per series:
// overall and official ranks are computed once, then each series' rule maps
// them into its own column. The input snapshot is not modified; the
// conversion is deterministic on (rows, series) and safe to memoize.
func ConvertToStaticRanklist(ctx context.Context, ranklist *model.Ranklist) *model.StaticRanklist {
	if ranklist == nil {
		return nil
	}
	ranks, officialRanks := GenRowRanks(ranklist.Rows)
	seriesFuncs := genSeriesFuncs(ctx, ranklist.Series, ranklist.Rows, ranks, officialRanks)

	rows := make([]model.StaticRow, len(ranklist.Rows))
	for i, row := range ranklist.Rows {
		values := make([]model.RankValue, len(seriesFuncs))
		for j, fn := range seriesFuncs {
			values[j] = fn(row, i)
		}
		rows[i] = model.StaticRow{RanklistRow: row, RankValues: values}
	}

	return &model.StaticRanklist{
		Type:         ranklist.Type,
		Version:      ranklist.Version,
		Contest:      ranklist.Contest,
		Problems:     ranklist.Problems,
		Series:       ranklist.Series,
		Markers:      ranklist.Markers,
		Rows:         rows,
		Sorter:       ranklist.Sorter,
		Contributors: ranklist.Contributors,
	}
}
