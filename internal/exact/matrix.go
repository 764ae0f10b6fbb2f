package exact

import (
	"fmt"
	"math/big"
	"strings"
)

// Matrix is a dense matrix of rational numbers. The zero dimensions are
// legal; a 0×n or n×0 matrix participates in products as usual.
type Matrix struct {
	rows, cols int
	data       []*big.Rat // row-major
}

// New returns a zero matrix of the given shape.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic("exact: negative dimension")
	}
	data := make([]*big.Rat, rows*cols)
	for i := range data {
		data[i] = new(big.Rat)
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i].SetInt64(1)
	}
	return m
}

// Ones returns a matrix of the given shape filled with ones.
func Ones(rows, cols int) *Matrix {
	m := New(rows, cols)
	for _, v := range m.data {
		v.SetInt64(1)
	}
	return m
}

// FromInt builds a matrix from integer rows. The rows must be rectangular.
func FromInt(a [][]int) *Matrix {
	rows := len(a)
	cols := 0
	if rows > 0 {
		cols = len(a[0])
	}
	m := New(rows, cols)
	for i, row := range a {
		if len(row) != cols {
			panic("exact: ragged rows")
		}
		for j, v := range row {
			m.data[i*cols+j].SetInt64(int64(v))
		}
	}
	return m
}

// FromRatVec builds a single-column matrix from a rational vector.
func FromRatVec(v []*big.Rat) *Matrix {
	m := New(len(v), 1)
	for i, x := range v {
		m.data[i].Set(x)
	}
	return m
}

// FromRatRow builds a single-row matrix from a rational vector.
func FromRatRow(v []*big.Rat) *Matrix {
	m := New(1, len(v))
	for j, x := range v {
		m.data[j].Set(x)
	}
	return m
}

// Diag returns a square matrix with v on the diagonal.
func Diag(v []*big.Rat) *Matrix {
	n := len(v)
	m := New(n, n)
	for i, x := range v {
		m.data[i*n+i].Set(x)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the entry at row i, column j. The returned value must be
// treated as read-only; use Set to modify entries.
func (m *Matrix) At(i, j int) *big.Rat {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

// Set copies v into the entry at row i, column j.
func (m *Matrix) Set(i, j int, v *big.Rat) {
	m.check(i, j)
	m.data[i*m.cols+j].Set(v)
}

// SetInt sets the entry at row i, column j to the integer v.
func (m *Matrix) SetInt(i, j int, v int64) {
	m.check(i, j)
	m.data[i*m.cols+j].SetInt64(v)
}

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("exact: index (%d,%d) out of range for %d×%d matrix", i, j, m.rows, m.cols))
	}
}

// Clone returns an independent copy of m.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, data: make([]*big.Rat, len(m.data))}
	for i, v := range m.data {
		out.data[i] = new(big.Rat).Set(v)
	}
	return out
}

// T returns the transpose of m.
func (m *Matrix) T() *Matrix {
	out := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*out.cols+i].Set(m.data[i*m.cols+j])
		}
	}
	return out
}

// Mul returns the product m·b.
func (m *Matrix) Mul(b *Matrix) *Matrix {
	if m.cols != b.rows {
		panic(fmt.Sprintf("exact: cannot multiply %d×%d by %d×%d", m.rows, m.cols, b.rows, b.cols))
	}
	out := New(m.rows, b.cols)
	t := new(big.Rat)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < b.cols; j++ {
			s := out.data[i*out.cols+j]
			for k := 0; k < m.cols; k++ {
				t.Mul(m.data[i*m.cols+k], b.data[k*b.cols+j])
				s.Add(s, t)
			}
		}
	}
	return out
}

// Add returns m + b.
func (m *Matrix) Add(b *Matrix) *Matrix {
	m.sameShape(b)
	out := m.Clone()
	for i, v := range b.data {
		out.data[i].Add(out.data[i], v)
	}
	return out
}

// Sub returns m − b.
func (m *Matrix) Sub(b *Matrix) *Matrix {
	m.sameShape(b)
	out := m.Clone()
	for i, v := range b.data {
		out.data[i].Sub(out.data[i], v)
	}
	return out
}

func (m *Matrix) sameShape(b *Matrix) {
	if m.rows != b.rows || m.cols != b.cols {
		panic(fmt.Sprintf("exact: shape mismatch %d×%d vs %d×%d", m.rows, m.cols, b.rows, b.cols))
	}
}

// Scale returns m multiplied entrywise by s.
func (m *Matrix) Scale(s *big.Rat) *Matrix {
	out := m.Clone()
	for _, v := range out.data {
		v.Mul(v, s)
	}
	return out
}

// HStack returns [m | b].
func (m *Matrix) HStack(b *Matrix) *Matrix {
	if m.rows != b.rows {
		panic(fmt.Sprintf("exact: cannot hstack %d×%d with %d×%d", m.rows, m.cols, b.rows, b.cols))
	}
	out := New(m.rows, m.cols+b.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[i*out.cols+j].Set(m.data[i*m.cols+j])
		}
		for j := 0; j < b.cols; j++ {
			out.data[i*out.cols+m.cols+j].Set(b.data[i*b.cols+j])
		}
	}
	return out
}

// VStack returns m stacked on top of b.
func (m *Matrix) VStack(b *Matrix) *Matrix {
	if m.cols != b.cols {
		panic(fmt.Sprintf("exact: cannot vstack %d×%d with %d×%d", m.rows, m.cols, b.rows, b.cols))
	}
	out := New(m.rows+b.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[i*out.cols+j].Set(m.data[i*m.cols+j])
		}
	}
	for i := 0; i < b.rows; i++ {
		for j := 0; j < b.cols; j++ {
			out.data[(m.rows+i)*out.cols+j].Set(b.data[i*b.cols+j])
		}
	}
	return out
}

// Slice returns a copy of the submatrix with rows [i0, i1) and columns
// [j0, j1).
func (m *Matrix) Slice(i0, i1, j0, j1 int) *Matrix {
	if i0 < 0 || i1 > m.rows || j0 < 0 || j1 > m.cols || i0 > i1 || j0 > j1 {
		panic(fmt.Sprintf("exact: bad slice [%d:%d, %d:%d] of %d×%d matrix", i0, i1, j0, j1, m.rows, m.cols))
	}
	out := New(i1-i0, j1-j0)
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			out.data[(i-i0)*out.cols+(j-j0)].Set(m.data[i*m.cols+j])
		}
	}
	return out
}

// Col returns column j as an n×1 matrix.
func (m *Matrix) Col(j int) *Matrix {
	return m.Slice(0, m.rows, j, j+1)
}

// IsZero reports whether every entry of m is zero.
func (m *Matrix) IsZero() bool {
	for _, v := range m.data {
		if v.Sign() != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether m and b have the same shape and entries.
func (m *Matrix) Equal(b *Matrix) bool {
	if m.rows != b.rows || m.cols != b.cols {
		return false
	}
	for i, v := range m.data {
		if v.Cmp(b.data[i]) != 0 {
			return false
		}
	}
	return true
}

// Float64 returns the entries of m as a float64 row-major slice of rows.
func (m *Matrix) Float64() [][]float64 {
	out := make([][]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = make([]float64, m.cols)
		for j := 0; j < m.cols; j++ {
			f, _ := m.data[i*m.cols+j].Float64()
			out[i][j] = f
		}
	}
	return out
}

// String renders m row by row, mostly for tests and error messages.
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(m.data[i*m.cols+j].RatString())
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}
