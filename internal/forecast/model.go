// v0
// internal/forecast/model.go
package forecast

import (
	"math"
	"math/rand"
)

// modelConfig sizes the network and its training schedule. Seed makes weight
// initialization and dropout masks reproducible.
type modelConfig struct {
	InputSize    int
	HiddenSize   int
	Epochs       int
	LearningRate float64
	Dropout      float64
	Seed         int64
}

func defaultModelConfig(inputSize int) modelConfig {
	return modelConfig{
		InputSize:    inputSize,
		HiddenSize:   16,
		Epochs:       120,
		LearningRate: 0.005,
		Dropout:      0.2,
		Seed:         1,
	}
}

// recurrentModel is a two-layer network with a linear head, trained on
// single-period windows: each row is a sample whose target is the following
// row, and every sample starts from fresh zero state. With a one-step window
// the state-to-state terms vanish, leaving the input projections, so the
// forecast is a function of the most recent period alone. The first layer's
// output passes through inverted dropout during training; updates use Adam
// with a mean squared error loss.
type recurrentModel struct {
	cfg modelConfig
	rng *rand.Rand

	wx1  *matParam
	b1   *vecParam
	wx2  *matParam
	b2   *vecParam
	wOut *matParam
	bOut *vecParam

	step int
}

func newRecurrentModel(cfg modelConfig) *recurrentModel {
	rng := rand.New(rand.NewSource(cfg.Seed))
	h, in := cfg.HiddenSize, cfg.InputSize
	return &recurrentModel{
		cfg:  cfg,
		rng:  rng,
		wx1:  newMatParam(h, in, rng),
		b1:   newVecParam(h),
		wx2:  newMatParam(h, h, rng),
		b2:   newVecParam(h),
		wOut: newMatParam(in, h, rng),
		bOut: newVecParam(in),
	}
}

// fit trains on consecutive pairs of the scaled sequence: the row at each
// step is the input, the following row the target. Pairs are independent
// samples; nothing carries over between them. rows must hold at least two
// entries.
func (m *recurrentModel) fit(rows [][]float64) {
	inputs := rows[:len(rows)-1]
	targets := rows[1:]
	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		m.trainEpoch(inputs, targets)
	}
}

// predictNext runs only the most recent period through the network without
// dropout and returns the next-period estimate, still in scaled space.
func (m *recurrentModel) predictNext(rows [][]float64) []float64 {
	x := rows[len(rows)-1]
	h1 := tanhVec(addVec(m.wx1.mul(x), m.b1.w))
	h2 := tanhVec(addVec(m.wx2.mul(h1), m.b2.w))
	return addVec(m.wOut.mul(h2), m.bOut.w)
}

func (m *recurrentModel) trainEpoch(inputs, targets [][]float64) {
	keep := 1 - m.cfg.Dropout

	m.zeroGrads()
	norm := 1 / float64(len(inputs)*m.cfg.InputSize)
	for t, x := range inputs {
		h1 := tanhVec(addVec(m.wx1.mul(x), m.b1.w))
		mask := make([]float64, len(h1))
		d1 := make([]float64, len(h1))
		for i, v := range h1 {
			if m.rng.Float64() < keep {
				mask[i] = 1 / keep
			}
			d1[i] = v * mask[i]
		}
		h2 := tanhVec(addVec(m.wx2.mul(d1), m.b2.w))
		y := addVec(m.wOut.mul(h2), m.bOut.w)

		dy := make([]float64, len(y))
		for i := range dy {
			dy[i] = 2 * (y[i] - targets[t][i]) * norm
		}
		m.wOut.addOuter(dy, h2)
		m.bOut.add(dy)

		dz2 := tanhGrad(m.wOut.mulT(dy), h2)
		m.wx2.addOuter(dz2, d1)
		m.b2.add(dz2)

		dd1 := m.wx2.mulT(dz2)
		dh1 := make([]float64, len(dd1))
		for i := range dh1 {
			dh1[i] = dd1[i] * mask[i]
		}
		dz1 := tanhGrad(dh1, h1)
		m.wx1.addOuter(dz1, x)
		m.b1.add(dz1)
	}

	m.step++
	for _, p := range []*matParam{m.wx1, m.wx2, m.wOut} {
		p.adam(m.cfg.LearningRate, m.step)
	}
	for _, p := range []*vecParam{m.b1, m.b2, m.bOut} {
		p.adam(m.cfg.LearningRate, m.step)
	}
}

func (m *recurrentModel) zeroGrads() {
	for _, p := range []*matParam{m.wx1, m.wx2, m.wOut} {
		p.zeroGrad()
	}
	for _, p := range []*vecParam{m.b1, m.b2, m.bOut} {
		p.zeroGrad()
	}
}

// Adam moment decay rates.
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

type matParam struct {
	rows, cols       int
	w, g, mMom, vMom []float64
}

func newMatParam(rows, cols int, rng *rand.Rand) *matParam {
	p := &matParam{
		rows: rows,
		cols: cols,
		w:    make([]float64, rows*cols),
		g:    make([]float64, rows*cols),
		mMom: make([]float64, rows*cols),
		vMom: make([]float64, rows*cols),
	}
	scale := 1 / math.Sqrt(float64(cols))
	for i := range p.w {
		p.w[i] = (rng.Float64()*2 - 1) * scale
	}
	return p
}

func (p *matParam) mul(x []float64) []float64 {
	out := make([]float64, p.rows)
	for i := 0; i < p.rows; i++ {
		row := p.w[i*p.cols : (i+1)*p.cols]
		var sum float64
		for j, v := range x {
			sum += row[j] * v
		}
		out[i] = sum
	}
	return out
}

// mulT multiplies the transpose, propagating gradients back to the input.
func (p *matParam) mulT(d []float64) []float64 {
	out := make([]float64, p.cols)
	for i := 0; i < p.rows; i++ {
		row := p.w[i*p.cols : (i+1)*p.cols]
		for j := range out {
			out[j] += row[j] * d[i]
		}
	}
	return out
}

func (p *matParam) addOuter(d, x []float64) {
	for i, dv := range d {
		row := p.g[i*p.cols : (i+1)*p.cols]
		for j, xv := range x {
			row[j] += dv * xv
		}
	}
}

func (p *matParam) zeroGrad() {
	for i := range p.g {
		p.g[i] = 0
	}
}

func (p *matParam) adam(lr float64, step int) {
	adamUpdate(p.w, p.g, p.mMom, p.vMom, lr, step)
}

type vecParam struct {
	w, g, mMom, vMom []float64
}

func newVecParam(n int) *vecParam {
	return &vecParam{
		w:    make([]float64, n),
		g:    make([]float64, n),
		mMom: make([]float64, n),
		vMom: make([]float64, n),
	}
}

func (p *vecParam) add(d []float64) {
	for i, v := range d {
		p.g[i] += v
	}
}

func (p *vecParam) zeroGrad() {
	for i := range p.g {
		p.g[i] = 0
	}
}

func (p *vecParam) adam(lr float64, step int) {
	adamUpdate(p.w, p.g, p.mMom, p.vMom, lr, step)
}

func adamUpdate(w, g, mMom, vMom []float64, lr float64, step int) {
	c1 := 1 - math.Pow(adamBeta1, float64(step))
	c2 := 1 - math.Pow(adamBeta2, float64(step))
	for i := range w {
		mMom[i] = adamBeta1*mMom[i] + (1-adamBeta1)*g[i]
		vMom[i] = adamBeta2*vMom[i] + (1-adamBeta2)*g[i]*g[i]
		mHat := mMom[i] / c1
		vHat := vMom[i] / c2
		w[i] -= lr * mHat / (math.Sqrt(vHat) + adamEps)
	}
}

func tanhVec(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Tanh(v)
	}
	return out
}

// tanhGrad applies the tanh derivative at activation h to upstream d.
func tanhGrad(d, h []float64) []float64 {
	out := make([]float64, len(d))
	for i := range d {
		out[i] = d[i] * (1 - h[i]*h[i])
	}
	return out
}

func addVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}
