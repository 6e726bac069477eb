package engine

import (
	"context"
	"math/big"

	"rankview/internal/ranklist/model"
	"rankview/pkg/utils/logger"

	"go.uber.org/zap"
)

// rankValueFunc computes the RankValue of one (row, series) pair.
type rankValueFunc func(row model.RanklistRow, index int) model.RankValue

// fallbackRankValue is the degraded handler: no rank, no segment.
func fallbackRankValue(model.RanklistRow, int) model.RankValue {
	return model.RankValue{}
}

func intPtr(v int) *int {
	return &v
}

// genSeriesFuncs builds one rank function per series from its rule preset.
// An unknown preset degrades to the fallback handler with a logged warning,
// never a failure.
func genSeriesFuncs(ctx context.Context, series []model.RankSeries, rows []model.RanklistRow, ranks, officialRanks []int) []rankValueFunc {
	funcs := make([]rankValueFunc, len(series))
	for i, cfg := range series {
		if cfg.Rule == nil {
			funcs[i] = fallbackRankValue
			continue
		}
		switch cfg.Rule.Preset {
		case model.PresetNormal:
			funcs[i] = genNormalFunc(cfg.Rule.Options, ranks, officialRanks)
		case model.PresetUniqByUserField:
			funcs[i] = genUniqByUserFieldFunc(cfg.Rule.Options, rows, ranks, officialRanks)
		case model.PresetICPC:
			funcs[i] = genICPCFunc(cfg, rows, officialRanks)
		default:
			logger.Warn(ctx, "unknown series rule preset", zap.String("preset", cfg.Rule.Preset))
			funcs[i] = fallbackRankValue
		}
	}
	return funcs
}

func genNormalFunc(opts model.SeriesRuleOptions, ranks, officialRanks []int) rankValueFunc {
	return func(row model.RanklistRow, index int) model.RankValue {
		if opts.IncludeOfficialOnly && !row.User.IsOfficial() {
			return model.RankValue{}
		}
		rank := ranks[index]
		if opts.IncludeOfficialOnly {
			rank = officialRanks[index]
		}
		if rank == 0 {
			return model.RankValue{}
		}
		return model.RankValue{Rank: intPtr(rank)}
	}
}

// genUniqByUserFieldFunc assigns sequential ranks to the first row of each
// distinct user-field value, advancing the counter only when the underlying
// outer rank changes: outer-tied rows sharing a first-seen value collapse to
// one slot.
func genUniqByUserFieldFunc(opts model.SeriesRuleOptions, rows []model.RanklistRow, ranks, officialRanks []int) rankValueFunc {
	assigned := make(map[int]int)
	seen := make(map[string]struct{})
	lastOuterRank := 0
	lastRank := 0
	for index, row := range rows {
		if opts.IncludeOfficialOnly && !row.User.IsOfficial() {
			continue
		}
		value := row.User.Field(opts.Field)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		outerRank := ranks[index]
		if opts.IncludeOfficialOnly {
			outerRank = officialRanks[index]
		}
		seen[value] = struct{}{}
		if outerRank != lastOuterRank {
			lastOuterRank = outerRank
			lastRank = len(assigned) + 1
		}
		assigned[index] = lastRank
	}
	return func(row model.RanklistRow, index int) model.RankValue {
		rank, ok := assigned[index]
		if !ok {
			return model.RankValue{}
		}
		return model.RankValue{Rank: intPtr(rank)}
	}
}

// genICPCFunc computes cumulative segment endpoints from ratio and/or count
// quotas and assigns each official row the first segment whose endpoints all
// admit its rank.
func genICPCFunc(cfg model.RankSeries, rows []model.RanklistRow, officialRanks []int) rankValueFunc {
	opts := cfg.Rule.Options
	var endpointRules [][]int
	noTied := false

	if opts.Ratio != nil {
		endpointRules = append(endpointRules, ratioEndpoints(opts.Ratio, rows))
		if opts.Ratio.NoTied {
			noTied = true
		}
	}
	if opts.Count != nil {
		acc := make([]int, len(opts.Count.Value))
		for i, v := range opts.Count.Value {
			if i > 0 {
				acc[i] = acc[i-1] + v
			} else {
				acc[i] = v
			}
		}
		endpointRules = append(endpointRules, acc)
		if opts.Count.NoTied {
			noTied = true
		}
	}

	// De-tied official ranks: 1,2,3,... with no repeats, for exact quota
	// enforcement regardless of ties.
	officialRanksNoTied := make([]int, len(officialRanks))
	current := 0
	for i, rank := range officialRanks {
		if rank != 0 {
			current++
			officialRanksNoTied[i] = current
		}
	}

	segments := cfg.Segments
	return func(row model.RanklistRow, index int) model.RankValue {
		if !row.User.IsOfficial() {
			return model.RankValue{}
		}
		usingRanks := officialRanks
		if noTied {
			usingRanks = officialRanksNoTied
		}
		segmentIndex := -1
		for k := range segments {
			admitted := true
			for _, endpoints := range endpointRules {
				if k >= len(endpoints) || usingRanks[index] > endpoints[k] {
					admitted = false
					break
				}
			}
			if admitted {
				segmentIndex = k
				break
			}
		}
		value := model.RankValue{Rank: intPtr(officialRanks[index])}
		if segmentIndex > -1 {
			value.SegmentIndex = intPtr(segmentIndex)
		}
		return value
	}
}

// ratioEndpoints turns a list of proportions into cumulative rank cutoffs.
// Accumulation is exact rational arithmetic seeded from the decimal literals:
// repeatedly summing small fractions in floating point would drift endpoints
// across integer boundaries.
func ratioEndpoints(ratio *model.SegmentRatio, rows []model.RanklistRow) []int {
	rounding := ratio.Rounding
	if rounding == "" {
		rounding = model.RoundCeil
	}

	total := 0
	for _, row := range rows {
		if !row.User.IsOfficial() {
			continue
		}
		if ratio.Denominator == "submitted" && !hasAnySubmission(row) {
			continue
		}
		total++
	}

	acc := new(big.Rat)
	endpoints := make([]int, 0, len(ratio.Value))
	for _, v := range ratio.Value {
		part, ok := new(big.Rat).SetString(v.String())
		if !ok {
			part = new(big.Rat)
		}
		acc.Add(acc, part)
		scaled := new(big.Rat).Mul(acc, new(big.Rat).SetInt64(int64(total)))
		endpoints = append(endpoints, ratToInt(scaled, rounding))
	}
	return endpoints
}

func hasAnySubmission(row model.RanklistRow) bool {
	for _, status := range row.Statuses {
		if status.Result != model.ResultNone {
			return true
		}
	}
	return false
}

// ratToInt rounds a non-negative rational to an integer without a float64
// detour, keeping exact quotas exact.
func ratToInt(x *big.Rat, rounding model.Rounding) int {
	quo := new(big.Int)
	rem := new(big.Int)
	quo.QuoRem(x.Num(), x.Denom(), rem)
	switch rounding {
	case model.RoundCeil:
		if rem.Sign() != 0 {
			quo.Add(quo, big.NewInt(1))
		}
	case model.RoundRound:
		if new(big.Int).Lsh(rem, 1).Cmp(x.Denom()) >= 0 {
			quo.Add(quo, big.NewInt(1))
		}
	}
	return int(quo.Int64())
}
