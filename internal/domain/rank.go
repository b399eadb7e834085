// v0
// internal/domain/rank.go
package domain

import "sort"

// RankScores orders scores by total descending and assigns 1-based contiguous
// ranks in place. The sort is stable so ties keep the caller's discovery
// order, which makes the leaderboard reproducible across runs with identical
// inputs.
func RankScores(scores []RegionScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
}

// RankPredictions applies the same ordering discipline to forecast output.
func RankPredictions(preds []RegionPrediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].TotalScore > preds[j].TotalScore
	})
	for i := range preds {
		preds[i].Rank = i + 1
	}
}
