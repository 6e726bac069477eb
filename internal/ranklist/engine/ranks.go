package engine

import "rankview/internal/ranklist/model"

// scoreMillis normalizes a score's penalized time for comparison. A missing
// time counts as zero.
func scoreMillis(s model.RankScore) float64 {
	if s.Time == nil {
		return 0
	}
	return s.Time.Millis()
}

func scoreEqual(a, b model.RankScore) bool {
	if a.Value != b.Value {
		return false
	}
	return scoreMillis(a) == scoreMillis(b)
}

func genRanks(rows []model.RanklistRow) []int {
	ranks := make([]int, len(rows))
	for i := range rows {
		if i == 0 {
			ranks[i] = 1
			continue
		}
		if scoreEqual(rows[i].Score, rows[i-1].Score) {
			ranks[i] = ranks[i-1]
		} else {
			ranks[i] = i + 1
		}
	}
	return ranks
}

// GenRowRanks computes competition ranks ("1224" style: tied rows share the
// lower rank number, the next distinct row takes its 1-based position) over
// rows already sorted by descending score value then ascending penalized
// time. Sorting is the caller's responsibility.
//
// ranks covers every row. officialRanks ranks only the official subsequence,
// mapped back to original row indexes; entries for unofficial rows are 0.
func GenRowRanks(rows []model.RanklistRow) (ranks []int, officialRanks []int) {
	ranks = genRanks(rows)

	officialRows := make([]model.RanklistRow, 0, len(rows))
	backIndex := make([]int, len(rows))
	for i, row := range rows {
		backIndex[i] = -1
		if row.User.IsOfficial() {
			backIndex[i] = len(officialRows)
			officialRows = append(officialRows, row)
		}
	}
	partialRanks := genRanks(officialRows)

	officialRanks = make([]int, len(rows))
	for i := range rows {
		if backIndex[i] >= 0 {
			officialRanks[i] = partialRanks[backIndex[i]]
		}
	}
	return ranks, officialRanks
}
