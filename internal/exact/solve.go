package exact

import (
	"errors"
	"math/big"
)

// ErrSingular is returned when an inverse of a singular matrix is requested.
var ErrSingular = errors.New("exact: singular matrix")

// RREF returns the reduced row echelon form of m and its pivot columns.
func (m *Matrix) RREF() (*Matrix, []int) {
	r := m.Clone()
	var pivots []int
	row := 0
	t := new(big.Rat)
	for lead := 0; lead < r.cols && row < r.rows; lead++ {
		p := -1
		for i := row; i < r.rows; i++ {
			if r.data[i*r.cols+lead].Sign() != 0 {
				p = i
				break
			}
		}
		if p < 0 {
			continue
		}
		r.swapRows(p, row)
		inv := new(big.Rat).Inv(r.data[row*r.cols+lead])
		for j := lead; j < r.cols; j++ {
			v := r.data[row*r.cols+j]
			v.Mul(v, inv)
		}
		for i := 0; i < r.rows; i++ {
			if i == row {
				continue
			}
			f := new(big.Rat).Set(r.data[i*r.cols+lead])
			if f.Sign() == 0 {
				continue
			}
			for j := lead; j < r.cols; j++ {
				t.Mul(f, r.data[row*r.cols+j])
				r.data[i*r.cols+j].Sub(r.data[i*r.cols+j], t)
			}
		}
		pivots = append(pivots, lead)
		row++
	}
	return r, pivots
}

func (m *Matrix) swapRows(a, b int) {
	if a == b {
		return
	}
	for j := 0; j < m.cols; j++ {
		m.data[a*m.cols+j], m.data[b*m.cols+j] = m.data[b*m.cols+j], m.data[a*m.cols+j]
	}
}

// Rank returns the rank of m.
func (m *Matrix) Rank() int {
	_, pivots := m.RREF()
	return len(pivots)
}

// Inverse returns m⁻¹, or ErrSingular when m has no inverse.
func (m *Matrix) Inverse() (*Matrix, error) {
	if m.rows != m.cols {
		panic("exact: inverse of a non-square matrix")
	}
	n := m.rows
	r, pivots := m.HStack(Identity(n)).RREF()
	if len(pivots) != n {
		return nil, ErrSingular
	}
	for i, p := range pivots {
		if p != i {
			return nil, ErrSingular
		}
	}
	return r.Slice(0, n, n, 2*n), nil
}

// Nullspace returns a basis of the kernel of m as the columns of a
// cols×k matrix. Free variables are set to one in turn, matching the
// usual echelon construction.
func (m *Matrix) Nullspace() *Matrix {
	r, pivots := m.RREF()
	isPivot := make(map[int]bool, len(pivots))
	for _, p := range pivots {
		isPivot[p] = true
	}
	var free []int
	for j := 0; j < m.cols; j++ {
		if !isPivot[j] {
			free = append(free, j)
		}
	}
	out := New(m.cols, len(free))
	neg := new(big.Rat)
	for fi, f := range free {
		out.data[f*out.cols+fi].SetInt64(1)
		for row, p := range pivots {
			neg.Neg(r.data[row*r.cols+f])
			out.data[p*out.cols+fi].Set(neg)
		}
	}
	return out
}

// Pinv returns the Moore-Penrose pseudoinverse of m, computed through a
// rank factorization so it is exact for any shape and rank.
func (m *Matrix) Pinv() *Matrix {
	r, pivots := m.RREF()
	k := len(pivots)
	if k == 0 {
		return New(m.cols, m.rows)
	}
	c := New(m.rows, k)
	for j, p := range pivots {
		for i := 0; i < m.rows; i++ {
			c.data[i*k+j].Set(m.data[i*m.cols+p])
		}
	}
	f := r.Slice(0, k, 0, m.cols)
	ffInv, err := f.Mul(f.T()).Inverse()
	if err != nil {
		panic("exact: rank factorization produced a singular gram matrix")
	}
	ccInv, err := c.T().Mul(c).Inverse()
	if err != nil {
		panic("exact: rank factorization produced a singular gram matrix")
	}
	return f.T().Mul(ffInv).Mul(ccInv).Mul(c.T())
}
