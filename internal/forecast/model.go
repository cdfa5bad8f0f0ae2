package forecast

import (
	"math"
	"math/rand"
)

// Model is a single-cell gated recurrent layer over the input window,
// followed by a scalar linear head. The cell starts from a zero state,
// gates the 20-dimensional window through input, forget, candidate and
// output gates with a hidden width of 50, and emits one normalized
// next-step price.
type Model struct {
	In     int
	Hidden int

	// gate kernels, one row per hidden unit
	Wi, Wf, Wg, Wo [][]float64
	Bi, Bf, Bg, Bo []float64

	// linear head
	Wd []float64
	Bd float64
}

// NewModel initializes kernels with Glorot-uniform draws from rng and
// biases at zero, except the forget gate bias which starts at one.
func NewModel(in, hidden int, rng *rand.Rand) *Model {
	m := &Model{
		In:     in,
		Hidden: hidden,
		Wi:     glorot(hidden, in, rng),
		Wf:     glorot(hidden, in, rng),
		Wg:     glorot(hidden, in, rng),
		Wo:     glorot(hidden, in, rng),
		Bi:     make([]float64, hidden),
		Bf:     make([]float64, hidden),
		Bg:     make([]float64, hidden),
		Bo:     make([]float64, hidden),
		Wd:     glorotVec(hidden, 1, rng),
	}
	for h := 0; h < hidden; h++ {
		m.Bf[h] = 1
	}
	return m
}

func glorot(rows, cols int, rng *rand.Rand) [][]float64 {
	limit := math.Sqrt(6.0 / float64(rows+cols))
	w := make([][]float64, rows)
	for r := range w {
		w[r] = make([]float64, cols)
		for c := range w[r] {
			w[r][c] = (rng.Float64()*2 - 1) * limit
		}
	}
	return w
}

func glorotVec(fanIn, fanOut int, rng *rand.Rand) []float64 {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	v := make([]float64, fanIn)
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * limit
	}
	return v
}

// Clone deep-copies the model, used for per-epoch weight snapshots.
func (m *Model) Clone() *Model {
	cp := &Model{
		In:     m.In,
		Hidden: m.Hidden,
		Wi:     cloneMat(m.Wi),
		Wf:     cloneMat(m.Wf),
		Wg:     cloneMat(m.Wg),
		Wo:     cloneMat(m.Wo),
		Bi:     cloneVec(m.Bi),
		Bf:     cloneVec(m.Bf),
		Bg:     cloneVec(m.Bg),
		Bo:     cloneVec(m.Bo),
		Wd:     cloneVec(m.Wd),
		Bd:     m.Bd,
	}
	return cp
}

func cloneMat(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = cloneVec(row)
	}
	return out
}

func cloneVec(src []float64) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// cellState caches gate activations for the backward pass.
type cellState struct {
	ag []float64 // candidate pre-activation
	i  []float64
	g  []float64
	o  []float64
	c  []float64
	h  []float64
}

func newCellState(hidden int) *cellState {
	return &cellState{
		ag: make([]float64, hidden),
		i:  make([]float64, hidden),
		g:  make([]float64, hidden),
		o:  make([]float64, hidden),
		c:  make([]float64, hidden),
		h:  make([]float64, hidden),
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// forward runs the cell from a zero state and fills st.
func (m *Model) forward(x []float64, st *cellState) {
	for h := 0; h < m.Hidden; h++ {
		ai := m.Bi[h]
		af := m.Bf[h]
		ag := m.Bg[h]
		ao := m.Bo[h]
		for j, v := range x {
			ai += m.Wi[h][j] * v
			af += m.Wf[h][j] * v
			ag += m.Wg[h][j] * v
			ao += m.Wo[h][j] * v
		}
		// the forget gate multiplies a zero initial cell state, so it
		// is computed but does not contribute
		_ = af
		st.ag[h] = ag
		st.i[h] = sigmoid(ai)
		st.g[h] = relu(ag)
		st.o[h] = sigmoid(ao)
		st.c[h] = st.i[h] * st.g[h]
		st.h[h] = st.o[h] * relu(st.c[h])
	}
}

// Predict runs inference with dropout disabled.
func (m *Model) Predict(x []float64) float64 {
	st := newCellState(m.Hidden)
	m.forward(x, st)
	y := m.Bd
	for h := 0; h < m.Hidden; h++ {
		y += m.Wd[h] * st.h[h]
	}
	return y
}
