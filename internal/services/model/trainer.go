package model

import (
	"math"
	"sort"

	"wellpulse/internal/domain/models"
	"wellpulse/pkg/logger"
)

// Config gates training and validation. MinDays is the minimum valid-row
// count to attempt any fit; TreeMinDays/TreeMinUnhealthy gate the secondary
// tree candidate.
type Config struct {
	MinDays          int
	ValidationDays   int
	TreeMinDays      int
	TreeMinUnhealthy int
}

// Trainer fits the candidate classifiers for one user and one target label,
// selects by validation ROC-AUC and predicts the most recent row.
type Trainer struct {
	cfg Config
	log *logger.Logger
}

func NewTrainer(cfg Config, log *logger.Logger) *Trainer {
	return &Trainer{cfg: cfg, log: log}
}

// TrainAndPredict runs the full train/select/predict pass. target is aligned
// with rows; NaN entries mean the label is undefined for that row. Returns
// a nil Probability when history is insufficient, and a deterministic 0.0
// when no positive labels exist.
func (t *Trainer) TrainAndPredict(rows []models.FeatureRow, target []float64, daysCollected, unhealthyCount int) *models.ModelResult {
	x, y := validRows(rows, target)

	res := &models.ModelResult{
		ModelKind:     models.KindLogistic,
		Contributions: []models.Contribution{},
	}
	if len(x) < t.cfg.MinDays {
		return res
	}

	pos, _ := classCounts(y)
	if pos == 0 {
		zero := 0.0
		res.Probability = &zero
		return res
	}

	xTrain, yTrain, xVal, yVal := t.split(x, y)
	sc := fitScaler(xTrain)

	selected := candidate(fitLogistic(xTrain, yTrain, regularizationC(daysCollected), sc))
	auc, pr := evaluate(selected, xVal, yVal)

	if daysCollected >= t.cfg.TreeMinDays && unhealthyCount >= t.cfg.TreeMinUnhealthy {
		gbt, err := fitGBT(xTrain, yTrain, gbtParamsFor(daysCollected))
		if err != nil {
			t.log.Warn("tree candidate fit failed, keeping logistic",
				logger.Error(err),
				logger.Int("days_collected", daysCollected))
		} else {
			gbtAUC, gbtPR := evaluate(gbt, xVal, yVal)
			if gbtAUC != nil && (auc == nil || *gbtAUC > *auc) {
				selected = gbt
				auc, pr = gbtAUC, gbtPR
			}
		}
	}

	last := x[len(x)-1]
	p := selected.PredictProba(last)
	res.Probability = &p
	res.ModelKind = selected.Kind()
	res.AUC = auc
	res.PRAUC = pr

	contrib, err := selected.Contributions(last)
	if err != nil {
		t.log.Warn("attribution failed, returning no contributions",
			logger.Error(err),
			logger.String("model_kind", string(selected.Kind())))
		return res
	}
	res.Contributions = topContributions(contrib, 3)
	return res
}

// validRows keeps rows where the target and every feature are defined,
// preserving chronological order.
func validRows(rows []models.FeatureRow, target []float64) ([][]float64, []int) {
	var x [][]float64
	var y []int
	for i := range rows {
		if i >= len(target) || math.IsNaN(target[i]) {
			continue
		}
		ok := true
		for _, v := range rows[i].Values {
			if math.IsNaN(v) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		row := make([]float64, models.NumFeatures)
		copy(row, rows[i].Values[:])
		x = append(x, row)
		y = append(y, int(target[i]))
	}
	return x, y
}

// split takes the trailing validation window: min(configured days, a third
// of the valid rows), at least 1. A split whose training side has no
// positive labels is discarded and the whole set trains unvalidated.
func (t *Trainer) split(x [][]float64, y []int) (xTrain [][]float64, yTrain []int, xVal [][]float64, yVal []int) {
	n := len(x)
	nVal := t.cfg.ValidationDays
	if third := n / 3; third < nVal {
		nVal = third
	}
	if nVal < 1 {
		nVal = 1
	}

	cut := n - nVal
	pos, _ := classCounts(y[:cut])
	if pos == 0 {
		return x, y, nil, nil
	}
	return x[:cut], y[:cut], x[cut:], y[cut:]
}

func evaluate(c candidate, xVal [][]float64, yVal []int) (auc, pr *float64) {
	if len(xVal) == 0 {
		return nil, nil
	}
	scores := make([]float64, len(xVal))
	for i, row := range xVal {
		scores[i] = c.PredictProba(row)
	}
	return rocAUC(yVal, scores), prAUC(yVal, scores)
}

// topContributions ranks attributions by absolute magnitude and keeps the
// strongest k, signed.
func topContributions(values []float64, k int) []models.Contribution {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		return math.Abs(values[idx[a]]) > math.Abs(values[idx[b]])
	})
	if len(idx) > k {
		idx = idx[:k]
	}
	out := make([]models.Contribution, 0, len(idx))
	for _, i := range idx {
		out = append(out, models.Contribution{
			Feature: models.FeatureColumns[i],
			Value:   values[i],
		})
	}
	return out
}
