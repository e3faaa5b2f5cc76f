package model

import (
	"gonum.org/v1/gonum/stat"
)

// scaler standardizes features to zero mean and unit variance, fit on the
// training portion only.
type scaler struct {
	mean []float64
	std  []float64
}

func fitScaler(x [][]float64) *scaler {
	if len(x) == 0 {
		return &scaler{}
	}
	nf := len(x[0])
	s := &scaler{
		mean: make([]float64, nf),
		std:  make([]float64, nf),
	}
	col := make([]float64, len(x))
	for j := 0; j < nf; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || len(x) < 2 {
			std = 1
		}
		s.mean[j] = mean
		s.std[j] = std
	}
	return s
}

func (s *scaler) transformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j := range row {
		out[j] = (row[j] - s.mean[j]) / s.std[j]
	}
	return out
}

func (s *scaler) transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range x {
		out[i] = s.transformRow(x[i])
	}
	return out
}
