package fa

// BoolMatrix is a dense boolean adjacency matrix. No sparse-matrix
// library appears anywhere in the retrieval pack, so this is a small
// hand-written type rather than a third-party dependency (see
// DESIGN.md); it backs the tensor product and the reachability
// fixed-point, mirroring the scipy.sparse.dok_matrix usage of
// automata.py's nfa_get_matrix/nfa_reachability_matrix.
type BoolMatrix struct {
	rows, cols int
	data       []bool
}

// NewBoolMatrix builds a rows x cols matrix of all-false entries.
func NewBoolMatrix(rows, cols int) *BoolMatrix {
	return &BoolMatrix{rows: rows, cols: cols, data: make([]bool, rows*cols)}
}

func (m *BoolMatrix) at(i, j int) int { return i*m.cols + j }

// Get returns the entry at (i, j).
func (m *BoolMatrix) Get(i, j int) bool { return m.data[m.at(i, j)] }

// Set writes the entry at (i, j).
func (m *BoolMatrix) Set(i, j int, v bool) { m.data[m.at(i, j)] = v }

// Or returns the elementwise disjunction of m and other, which must
// share dimensions.
func (m *BoolMatrix) Or(other *BoolMatrix) *BoolMatrix {
	out := NewBoolMatrix(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] || other.data[i]
	}
	return out
}

// Mul computes the boolean-semiring product m*other (OR-of-ANDs). m
// must be rows x k and other k x cols.
func (m *BoolMatrix) Mul(other *BoolMatrix) *BoolMatrix {
	out := NewBoolMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			if !m.Get(i, k) {
				continue
			}
			for j := 0; j < other.cols; j++ {
				if other.Get(k, j) {
					out.Set(i, j, true)
				}
			}
		}
	}
	return out
}

// NonZeroCount returns the number of true entries.
func (m *BoolMatrix) NonZeroCount() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Kron computes the Kronecker product of a (n x n) and b (m x m),
// yielding an (n*m) x (n*m) matrix: result[(i,i2),(j,j2)] = a[i,j] &&
// b[i2,j2]. Indices into the result decompose as row = i*m+i2.
func Kron(a, b *BoolMatrix) *BoolMatrix {
	n, m := a.rows, b.rows
	out := NewBoolMatrix(n*m, n*m)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			if !a.Get(i, j) {
				continue
			}
			for i2 := 0; i2 < b.rows; i2++ {
				for j2 := 0; j2 < b.cols; j2++ {
					if b.Get(i2, j2) {
						out.Set(i*m+i2, j*m+j2, true)
					}
				}
			}
		}
	}
	return out
}

// TransitiveClosure computes the fixed point of R := R | R*R, the
// reference algorithm named in §4.3 and §9, shared by Reachable and
// (conceptually) available to any future path-query built on top.
func TransitiveClosure(r *BoolMatrix) *BoolMatrix {
	prev := -1
	cur := r
	for {
		count := cur.NonZeroCount()
		if count == prev {
			return cur
		}
		prev = count
		cur = cur.Or(cur.Mul(cur))
	}
}
