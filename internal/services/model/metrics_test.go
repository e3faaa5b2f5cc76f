package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRocAUCPerfectSeparation(t *testing.T) {
	y := []int{0, 0, 0, 1, 1}
	s := []float64{0.1, 0.2, 0.3, 0.8, 0.9}
	auc := rocAUC(y, s)
	require.NotNil(t, auc)
	assert.InDelta(t, 1.0, *auc, 1e-12)
}

func TestRocAUCInverted(t *testing.T) {
	y := []int{1, 1, 0, 0}
	s := []float64{0.1, 0.2, 0.8, 0.9}
	auc := rocAUC(y, s)
	require.NotNil(t, auc)
	assert.InDelta(t, 0.0, *auc, 1e-12)
}

func TestRocAUCTiesAverageRanks(t *testing.T) {
	// All scores equal: chance-level discrimination.
	y := []int{0, 1, 0, 1}
	s := []float64{0.5, 0.5, 0.5, 0.5}
	auc := rocAUC(y, s)
	require.NotNil(t, auc)
	assert.InDelta(t, 0.5, *auc, 1e-12)
}

func TestRocAUCSingleClassUndefined(t *testing.T) {
	assert.Nil(t, rocAUC([]int{1, 1, 1}, []float64{0.1, 0.5, 0.9}))
	assert.Nil(t, rocAUC([]int{0, 0}, []float64{0.1, 0.9}))
	assert.Nil(t, rocAUC([]int{1}, []float64{0.9}))
}

func TestPrAUCPerfectRanking(t *testing.T) {
	y := []int{0, 0, 1, 1}
	s := []float64{0.1, 0.2, 0.8, 0.9}
	ap := prAUC(y, s)
	require.NotNil(t, ap)
	assert.InDelta(t, 1.0, *ap, 1e-12)
}

func TestPrAUCWorstRanking(t *testing.T) {
	// The single positive is ranked last: precision at its recall step is
	// 1/4.
	y := []int{1, 0, 0, 0}
	s := []float64{0.1, 0.5, 0.7, 0.9}
	ap := prAUC(y, s)
	require.NotNil(t, ap)
	assert.InDelta(t, 0.25, *ap, 1e-12)
}

func TestPrAUCSingleClassUndefined(t *testing.T) {
	assert.Nil(t, prAUC([]int{0, 0, 0}, []float64{0.1, 0.5, 0.9}))
}

func TestRegularizationTiers(t *testing.T) {
	assert.Equal(t, 0.1, regularizationC(20))
	assert.Equal(t, 0.1, regularizationC(59))
	assert.Equal(t, 0.5, regularizationC(60))
	assert.Equal(t, 0.5, regularizationC(149))
	assert.Equal(t, 1.0, regularizationC(150))
	assert.Equal(t, 1.0, regularizationC(400))
}
