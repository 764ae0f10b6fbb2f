package exact

import "math/big"

// Integer lattice reductions. Column reduction against an appended
// identity yields saturated kernel bases; row-style Hermite reduction
// gives the unique canonical basis of a full-rank row lattice.

// KernelZ returns a saturated basis of the integer kernel of a as the
// columns of an n×k matrix, where n is the column count of a. The basis
// comes out of a unimodular column reduction, so any integer vector in
// the kernel is an integer combination of the returned columns.
func KernelZ(a [][]int) [][]int {
	m := len(a)
	n := 0
	if m > 0 {
		n = len(a[0])
	}
	b := newBigMat(a)
	id := identityBig(n)
	// Column-reduce b, mirroring every operation on id.
	lead := 0
	for row := 0; row < m && lead < n; row++ {
		col := reduceRowCols(b, id, row, lead)
		if col >= 0 {
			lead++
		}
	}
	// Columns at or past lead are zero in b; their id parts span the kernel.
	out := make([][]int, n)
	for i := range out {
		out[i] = make([]int, n-lead)
		for j := lead; j < n; j++ {
			out[i][j-lead] = bigToInt(id[i][j])
		}
	}
	return out
}

// Antinullspace returns the saturated integer matrix whose kernel is
// spanned by the columns of k. For an n×c input of rank c the result
// has n−c rows of length n.
func Antinullspace(k [][]int) [][]int {
	n := len(k)
	if n > 0 && len(k[0]) == 0 {
		// empty kernel: the whole lattice survives
		out := make([][]int, n)
		for i := range out {
			out[i] = make([]int, n)
			out[i][i] = 1
		}
		return out
	}
	return transposeInt(KernelZ(transposeInt(k)))
}

// Saturate replaces the row lattice of a with its saturation: the set
// of all integer vectors in the rational row span. Common factors and
// torsion disappear; the result has rank(a) rows.
func Saturate(a [][]int) [][]int {
	return Antinullspace(KernelZ(a))
}

// HermiteRow returns the row-style Hermite normal form of a: pivots
// positive and strictly right of the pivots above them, with entries
// above each pivot reduced into [0, pivot). Rows of zeros are dropped,
// so the result is the canonical basis of the row lattice.
func HermiteRow(a [][]int) [][]int {
	m := len(a)
	n := 0
	if m > 0 {
		n = len(a[0])
	}
	h := newBigMat(a)
	row := 0
	for col := 0; col < n && row < m; col++ {
		if !clearBelow(h, row, col, m) {
			continue
		}
		if h[row][col].Sign() < 0 {
			negateRow(h, row)
		}
		reduceAbove(h, row, col)
		row++
	}
	out := make([][]int, row)
	for i := 0; i < row; i++ {
		out[i] = make([]int, n)
		for j := 0; j < n; j++ {
			out[i][j] = bigToInt(h[i][j])
		}
	}
	return out
}

// reduceRowCols zeroes row entries right of position lead using
// Euclidean column operations, mirrored on id. It returns the pivot
// column index, or -1 when the row is already zero from lead on.
func reduceRowCols(b, id [][]*big.Int, row, lead int) int {
	n := len(id)
	for {
		p := -1
		for j := lead; j < n; j++ {
			if b[row][j].Sign() == 0 {
				continue
			}
			if p < 0 || absCmp(b[row][j], b[row][p]) < 0 {
				p = j
			}
		}
		if p < 0 {
			return -1
		}
		swapCols(b, lead, p)
		swapCols(id, lead, p)
		done := true
		q := new(big.Int)
		r := new(big.Int)
		for j := lead + 1; j < n; j++ {
			if b[row][j].Sign() == 0 {
				continue
			}
			q.QuoRem(b[row][j], b[row][lead], r)
			if q.Sign() != 0 {
				subScaledCol(b, j, lead, q)
				subScaledCol(id, j, lead, q)
			}
			if r.Sign() != 0 {
				done = false
			}
		}
		if done {
			if b[row][lead].Sign() < 0 {
				negateCol(b, lead)
				negateCol(id, lead)
			}
			return lead
		}
	}
}

// clearBelow zeroes column entries under position row via Euclidean row
// operations. It reports whether a pivot was found in this column.
func clearBelow(h [][]*big.Int, row, col, m int) bool {
	for {
		p := -1
		for i := row; i < m; i++ {
			if h[i][col].Sign() == 0 {
				continue
			}
			if p < 0 || absCmp(h[i][col], h[p][col]) < 0 {
				p = i
			}
		}
		if p < 0 {
			return false
		}
		h[row], h[p] = h[p], h[row]
		done := true
		q := new(big.Int)
		r := new(big.Int)
		for i := row + 1; i < m; i++ {
			if h[i][col].Sign() == 0 {
				continue
			}
			q.QuoRem(h[i][col], h[row][col], r)
			if q.Sign() != 0 {
				subScaledRow(h, i, row, q)
			}
			if r.Sign() != 0 {
				done = false
			}
		}
		if done {
			return true
		}
	}
}

// reduceAbove brings entries above the pivot at (row, col) into
// [0, pivot) by subtracting floor multiples of the pivot row.
func reduceAbove(h [][]*big.Int, row, col int) {
	q := new(big.Int)
	m := new(big.Int)
	for i := 0; i < row; i++ {
		if h[i][col].Sign() == 0 {
			continue
		}
		// floor division keeps the remainder nonnegative
		q.Div(h[i][col], h[row][col])
		if q.Sign() == 0 {
			continue
		}
		for j := range h[i] {
			m.Mul(q, h[row][j])
			h[i][j].Sub(h[i][j], m)
		}
	}
}

func newBigMat(a [][]int) [][]*big.Int {
	out := make([][]*big.Int, len(a))
	for i, row := range a {
		out[i] = make([]*big.Int, len(row))
		for j, v := range row {
			out[i][j] = big.NewInt(int64(v))
		}
	}
	return out
}

func identityBig(n int) [][]*big.Int {
	out := make([][]*big.Int, n)
	for i := range out {
		out[i] = make([]*big.Int, n)
		for j := range out[i] {
			out[i][j] = new(big.Int)
		}
		out[i][i].SetInt64(1)
	}
	return out
}

func transposeInt(a [][]int) [][]int {
	rows := len(a)
	cols := 0
	if rows > 0 {
		cols = len(a[0])
	}
	out := make([][]int, cols)
	for j := range out {
		out[j] = make([]int, rows)
		for i := 0; i < rows; i++ {
			out[j][i] = a[i][j]
		}
	}
	return out
}

func swapCols(a [][]*big.Int, x, y int) {
	if x == y {
		return
	}
	for i := range a {
		a[i][x], a[i][y] = a[i][y], a[i][x]
	}
}

func subScaledCol(a [][]*big.Int, dst, src int, q *big.Int) {
	t := new(big.Int)
	for i := range a {
		t.Mul(q, a[i][src])
		a[i][dst].Sub(a[i][dst], t)
	}
}

func subScaledRow(a [][]*big.Int, dst, src int, q *big.Int) {
	t := new(big.Int)
	for j := range a[dst] {
		t.Mul(q, a[src][j])
		a[dst][j].Sub(a[dst][j], t)
	}
}

func negateCol(a [][]*big.Int, j int) {
	for i := range a {
		a[i][j].Neg(a[i][j])
	}
}

func negateRow(a [][]*big.Int, i int) {
	for j := range a[i] {
		a[i][j].Neg(a[i][j])
	}
}

func absCmp(x, y *big.Int) int {
	return x.CmpAbs(y)
}

func bigToInt(v *big.Int) int {
	if !v.IsInt64() {
		panic("exact: lattice entry overflows int64")
	}
	return int(v.Int64())
}
