package model

import (
	"sort"
)

// rocAUC computes ROC-AUC via the rank-sum formulation with average ranks
// for tied scores. Returns nil when fewer than 2 samples or a single class
// is present.
func rocAUC(yTrue []int, score []float64) *float64 {
	if len(yTrue) < 2 || len(yTrue) != len(score) {
		return nil
	}
	pos, neg := classCounts(yTrue)
	if pos == 0 || neg == 0 {
		return nil
	}

	idx := make([]int, len(score))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return score[idx[a]] < score[idx[b]] })

	// Sum of positive-class ranks, averaging ranks within tie groups.
	rankSum := 0.0
	i := 0
	for i < len(idx) {
		j := i
		for j < len(idx) && score[idx[j]] == score[idx[i]] {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			if yTrue[idx[k]] == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	p := float64(pos)
	n := float64(neg)
	auc := (rankSum - p*(p+1)/2) / (p * n)
	return &auc
}

// prAUC computes average precision: sum over recall steps of precision at
// each threshold. Returns nil when the validation set is degenerate.
func prAUC(yTrue []int, score []float64) *float64 {
	if len(yTrue) < 2 || len(yTrue) != len(score) {
		return nil
	}
	pos, neg := classCounts(yTrue)
	if pos == 0 || neg == 0 {
		return nil
	}

	idx := make([]int, len(score))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return score[idx[a]] > score[idx[b]] })

	ap := 0.0
	tp := 0
	prevRecall := 0.0
	i := 0
	for i < len(idx) {
		// Advance through a tie group as one threshold.
		j := i
		for j < len(idx) && score[idx[j]] == score[idx[i]] {
			if yTrue[idx[j]] == 1 {
				tp++
			}
			j++
		}
		precision := float64(tp) / float64(j)
		recall := float64(tp) / float64(pos)
		ap += (recall - prevRecall) * precision
		prevRecall = recall
		i = j
	}
	return &ap
}

func classCounts(y []int) (pos, neg int) {
	for _, v := range y {
		if v == 1 {
			pos++
		} else {
			neg++
		}
	}
	return pos, neg
}
