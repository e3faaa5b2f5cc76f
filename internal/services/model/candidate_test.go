package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable builds a two-class set where feature 0 carries the signal and
// the rest is noise.
func separable(n int, seed int64) (x [][]float64, y []int) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		label := i % 4
		cls := 0
		if label == 0 {
			cls = 1
		}
		row := make([]float64, 5)
		if cls == 1 {
			row[0] = 2 + rng.Float64()
		} else {
			row[0] = -2 - rng.Float64()
		}
		for j := 1; j < 5; j++ {
			row[j] = rng.NormFloat64()
		}
		x = append(x, row)
		y = append(y, cls)
	}
	return x, y
}

func TestFitLogisticSeparatesClasses(t *testing.T) {
	x, y := separable(80, 1)
	sc := fitScaler(x)
	m := fitLogistic(x, y, 1.0, sc)

	posRow := []float64{2.5, 0, 0, 0, 0}
	negRow := []float64{-2.5, 0, 0, 0, 0}
	assert.Greater(t, m.PredictProba(posRow), 0.8)
	assert.Less(t, m.PredictProba(negRow), 0.2)
}

func TestLogisticContributionsFollowSignal(t *testing.T) {
	x, y := separable(80, 2)
	sc := fitScaler(x)
	m := fitLogistic(x, y, 1.0, sc)

	contrib, err := m.Contributions([]float64{3, 0, 0, 0, 0})
	require.NoError(t, err)
	require.Len(t, contrib, 5)

	// Feature 0 dominates and pushes toward the positive class.
	for j := 1; j < 5; j++ {
		assert.Greater(t, math.Abs(contrib[0]), math.Abs(contrib[j]))
	}
	assert.Greater(t, contrib[0], 0.0)
}

func TestFitGBTSeparatesClasses(t *testing.T) {
	x, y := separable(120, 3)
	m, err := fitGBT(x, y, gbtParamsFor(100))
	require.NoError(t, err)

	assert.Greater(t, m.PredictProba([]float64{2.5, 0, 0, 0, 0}), 0.7)
	assert.Less(t, m.PredictProba([]float64{-2.5, 0, 0, 0, 0}), 0.3)
}

func TestFitGBTDeterministic(t *testing.T) {
	x, y := separable(60, 4)
	a, err := fitGBT(x, y, gbtParamsFor(100))
	require.NoError(t, err)
	b, err := fitGBT(x, y, gbtParamsFor(100))
	require.NoError(t, err)

	row := []float64{1.5, 0.2, -0.3, 0.1, 0}
	assert.Equal(t, a.PredictProba(row), b.PredictProba(row))
}

func TestFitGBTEmptyInput(t *testing.T) {
	_, err := fitGBT(nil, nil, gbtParamsFor(100))
	assert.Error(t, err)
}

func TestGBTContributionsAdditive(t *testing.T) {
	x, y := separable(120, 5)
	m, err := fitGBT(x, y, gbtParamsFor(100))
	require.NoError(t, err)

	row := []float64{1.8, -0.4, 0.3, 0.6, -0.1}
	contrib, err := m.Contributions(row)
	require.NoError(t, err)
	require.Len(t, contrib, 5)

	// Path attributions telescope: raw score = base + sum of per-tree root
	// expectations + sum of contributions.
	bias := m.base
	for i := range m.trees {
		bias += m.lr * m.trees[i].nodes[0].value
	}
	total := bias
	for _, c := range contrib {
		total += c
	}

	rawScore := m.base
	for i := range m.trees {
		rawScore += m.lr * m.trees[i].leafValue(row)
	}
	assert.InDelta(t, rawScore, total, 1e-9)
}

func TestGBTParamsScaleWithHistory(t *testing.T) {
	short := gbtParamsFor(100)
	assert.Equal(t, 3, short.maxDepth)
	assert.Equal(t, 8, short.maxLeaves)

	long := gbtParamsFor(200)
	assert.Equal(t, 5, long.maxDepth)
	assert.Equal(t, 31, long.maxLeaves)

	assert.Equal(t, 100, short.nEstimators)
	assert.Equal(t, 0.1, short.learnRate)
	assert.Equal(t, 5, short.minLeafSamples)
}

func TestScalerZeroVarianceColumn(t *testing.T) {
	x := [][]float64{{1, 5}, {2, 5}, {3, 5}}
	sc := fitScaler(x)

	row := sc.transformRow([]float64{2, 5})
	assert.InDelta(t, 0.0, row[0], 1e-12)
	// Constant column: std forced to 1 so the value maps to 0, not NaN.
	assert.InDelta(t, 0.0, row[1], 1e-12)
	assert.False(t, math.IsNaN(row[1]))
}
