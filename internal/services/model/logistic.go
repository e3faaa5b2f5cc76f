package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"wellpulse/internal/domain/models"
)

const (
	logisticIterations = 1500
	logisticLearnRate  = 0.5
)

// logisticCandidate is an L2-regularized logistic regression trained by
// full-batch gradient descent on standardized features. Deterministic: no
// random initialization, fixed iteration budget.
type logisticCandidate struct {
	weights []float64
	bias    float64
	scaler  *scaler
}

// regularizationC mirrors sklearn's C (inverse strength), scaled down on
// sparse histories so a few weeks of data cannot overfit.
func regularizationC(daysCollected int) float64 {
	switch {
	case daysCollected < 60:
		return 0.1
	case daysCollected < 150:
		return 0.5
	default:
		return 1.0
	}
}

// fitLogistic trains on raw rows; standardization is fit on the training
// portion and kept for prediction/attribution time.
func fitLogistic(xTrain [][]float64, yTrain []int, c float64, sc *scaler) *logisticCandidate {
	xs := sc.transform(xTrain)
	n := len(xs)
	nf := len(xs[0])

	x := mat.NewDense(n, nf, nil)
	for i, row := range xs {
		x.SetRow(i, row)
	}

	w := make([]float64, nf)
	bias := 0.0
	logits := make([]float64, n)
	resid := make([]float64, n)
	grad := make([]float64, nf)

	wVec := mat.NewVecDense(nf, w)
	logitVec := mat.NewVecDense(n, logits)
	residVec := mat.NewVecDense(n, resid)
	gradVec := mat.NewVecDense(nf, grad)

	invN := 1.0 / float64(n)
	for iter := 0; iter < logisticIterations; iter++ {
		logitVec.MulVec(x, wVec)
		biasGrad := 0.0
		for i := 0; i < n; i++ {
			p := sigmoid(logits[i] + bias)
			resid[i] = p - float64(yTrain[i])
			biasGrad += resid[i]
		}

		// grad = X^T (p - y) / n + w / (C n)
		gradVec.MulVec(x.T(), residVec)
		floats.Scale(invN, grad)
		floats.AddScaled(grad, invN/c, w)

		floats.AddScaled(w, -logisticLearnRate, grad)
		bias -= logisticLearnRate * biasGrad * invN
	}

	return &logisticCandidate{weights: w, bias: bias, scaler: sc}
}

func (m *logisticCandidate) Kind() models.ModelKind { return models.KindLogistic }

func (m *logisticCandidate) PredictProba(row []float64) float64 {
	z := m.bias + floats.Dot(m.weights, m.scaler.transformRow(row))
	return sigmoid(z)
}

// Contributions: standardized coefficient times standardized feature value.
func (m *logisticCandidate) Contributions(row []float64) ([]float64, error) {
	xs := m.scaler.transformRow(row)
	out := make([]float64, len(xs))
	for i := range xs {
		out[i] = m.weights[i] * xs[i]
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
