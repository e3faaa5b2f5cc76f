package model

import (
	"fmt"
	"math"
	"sort"

	"wellpulse/internal/domain/models"
)

// gbtParams are the tree-candidate hyperparameters. Depth and leaf count
// scale with history length so short histories get shallow trees.
type gbtParams struct {
	nEstimators    int
	learnRate      float64
	maxDepth       int
	maxLeaves      int
	minLeafSamples int
}

func gbtParamsFor(daysCollected int) gbtParams {
	p := gbtParams{
		nEstimators:    100,
		learnRate:      0.1,
		minLeafSamples: 5,
	}
	if daysCollected < 150 {
		p.maxDepth = 3
		p.maxLeaves = 8
	} else {
		p.maxDepth = 5
		p.maxLeaves = 31
	}
	return p
}

// treeNode is one node of a regression tree. Leaf nodes have left == -1.
// value holds the Newton step of the node's training samples; for internal
// nodes it is kept for path attribution.
type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

type regTree struct {
	nodes []treeNode
}

func (t *regTree) leafValue(row []float64) float64 {
	i := 0
	for t.nodes[i].left != -1 {
		n := &t.nodes[i]
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].value
}

// gbtCandidate boosts shallow regression trees on the logistic loss.
// Deterministic: greedy exact splits, no subsampling.
type gbtCandidate struct {
	base  float64
	lr    float64
	trees []regTree
}

// fitGBT trains on unstandardized rows. Any panic out of the tree builder
// is converted to an error so the caller can fall back to the primary
// candidate.
func fitGBT(x [][]float64, y []int, params gbtParams) (m *gbtCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("gbt fit: %v", r)
		}
	}()

	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("gbt fit: empty training set")
	}

	pos := 0
	for _, v := range y {
		if v == 1 {
			pos++
		}
	}
	p0 := clamp(float64(pos)/float64(n), 1e-6, 1-1e-6)
	base := math.Log(p0 / (1 - p0))

	f := make([]float64, n)
	for i := range f {
		f[i] = base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	model := &gbtCandidate{base: base, lr: params.learnRate}
	for round := 0; round < params.nEstimators; round++ {
		for i := 0; i < n; i++ {
			p := sigmoid(f[i])
			grad[i] = float64(y[i]) - p
			hess[i] = p * (1 - p)
		}

		tree := buildTree(x, grad, hess, all, params)
		model.trees = append(model.trees, tree)

		for i := 0; i < n; i++ {
			f[i] += params.learnRate * tree.leafValue(x[i])
		}
	}
	return model, nil
}

type treeBuilder struct {
	x      [][]float64
	grad   []float64
	hess   []float64
	params gbtParams
	splits int // splits still allowed by the leaf budget
	nodes  []treeNode
}

func buildTree(x [][]float64, grad, hess []float64, samples []int, params gbtParams) regTree {
	b := &treeBuilder{
		x:      x,
		grad:   grad,
		hess:   hess,
		params: params,
		splits: params.maxLeaves - 1,
	}
	b.grow(samples, 0)
	return regTree{nodes: b.nodes}
}

func (b *treeBuilder) grow(samples []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{left: -1, right: -1, value: b.newtonStep(samples)})

	if depth >= b.params.maxDepth || b.splits < 1 || len(samples) < 2*b.params.minLeafSamples {
		return id
	}

	feature, threshold, ok := b.bestSplit(samples)
	if !ok {
		return id
	}
	b.splits--

	var left, right []int
	for _, s := range samples {
		if b.x[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	b.nodes[id].feature = feature
	b.nodes[id].threshold = threshold
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id].left = l
	b.nodes[id].right = r
	return id
}

// newtonStep is the second-order leaf value: sum(grad) / sum(hess).
func (b *treeBuilder) newtonStep(samples []int) float64 {
	var g, h float64
	for _, s := range samples {
		g += b.grad[s]
		h += b.hess[s]
	}
	return g / (h + 1e-16)
}

// bestSplit scans every feature for the threshold maximizing the standard
// second-order gain G_L^2/H_L + G_R^2/H_R - G^2/H.
func (b *treeBuilder) bestSplit(samples []int) (feature int, threshold float64, ok bool) {
	var gTotal, hTotal float64
	for _, s := range samples {
		gTotal += b.grad[s]
		hTotal += b.hess[s]
	}
	parentScore := gTotal * gTotal / (hTotal + 1e-16)

	bestGain := 1e-12
	order := make([]int, len(samples))

	nf := len(b.x[samples[0]])
	for j := 0; j < nf; j++ {
		copy(order, samples)
		sort.Slice(order, func(a, c int) bool { return b.x[order[a]][j] < b.x[order[c]][j] })

		var gl, hl float64
		for k := 0; k < len(order)-1; k++ {
			s := order[k]
			gl += b.grad[s]
			hl += b.hess[s]

			cur, next := b.x[s][j], b.x[order[k+1]][j]
			if cur == next {
				continue
			}
			nl, nr := k+1, len(order)-k-1
			if nl < b.params.minLeafSamples || nr < b.params.minLeafSamples {
				continue
			}

			gr := gTotal - gl
			hr := hTotal - hl
			gain := gl*gl/(hl+1e-16) + gr*gr/(hr+1e-16) - parentScore
			if gain > bestGain {
				bestGain = gain
				feature = j
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (m *gbtCandidate) Kind() models.ModelKind { return models.KindGBT }

func (m *gbtCandidate) PredictProba(row []float64) float64 {
	f := m.base
	for i := range m.trees {
		f += m.lr * m.trees[i].leafValue(row)
	}
	return sigmoid(f)
}

// Contributions walks each tree's decision path and credits every split's
// change in expected value to the split feature. Additive in log-odds:
// base + sum(contributions) equals the raw score.
func (m *gbtCandidate) Contributions(row []float64) ([]float64, error) {
	if len(m.trees) == 0 {
		return nil, fmt.Errorf("gbt attribution: no trees")
	}
	nf := len(row)
	out := make([]float64, nf)
	for ti := range m.trees {
		t := &m.trees[ti]
		i := 0
		for t.nodes[i].left != -1 {
			n := &t.nodes[i]
			if n.feature < 0 || n.feature >= nf {
				return nil, fmt.Errorf("gbt attribution: feature index %d out of range", n.feature)
			}
			next := n.left
			if row[n.feature] > n.threshold {
				next = n.right
			}
			out[n.feature] += m.lr * (t.nodes[next].value - n.value)
			i = next
		}
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
