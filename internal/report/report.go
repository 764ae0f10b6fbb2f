// Package report renders temperaments, tunings and measures for the
// terminal. All numeric formatting choices live here, away from the
// solvers.
package report

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/spectrum"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/temperament"
	"github.com/tuneforge/regtemp/internal/tuner"
)

// Val renders a mapping row in bra notation, ⟨12 19 28].
func Val(row []int) string {
	return "⟨" + joinInts(row) + "]"
}

// Monzo renders a monzo in ket notation, [-4 4 -1⟩.
func Monzo(m interval.Monzo) string {
	return "[" + joinInts(m) + "⟩"
}

// Mapping renders mapping rows one val per line.
func Mapping(rows [][]int) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = Val(row)
	}
	return strings.Join(lines, "\n")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

// Cents renders a cent value to four decimals.
func Cents(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// CentsVector renders a cent-valued vector, [1201.3969 1898.4462].
func CentsVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = Cents(x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Ratio renders a frequency ratio, 3/2 or 2 for whole numbers.
func Ratio(q *big.Rat) string {
	return interval.Format(q)
}

// Norm names a norm profile, like tenney-euclidean or
// equilateral-weil[2]-chebyshevian. Weight amounts other than one show
// bracketed after the weighting.
func Norm(p norm.Profile) string {
	p, _ = p.Resolve()
	var sb strings.Builder
	sb.WriteString(string(p.Weighting))
	if p.Amount != 1 {
		fmt.Fprintf(&sb, "[%g]", p.Amount)
	}
	if p.Skew != 0 {
		sb.WriteString("-weil")
		if p.Skew != 1 {
			fmt.Fprintf(&sb, "[%g]", p.Skew)
		}
	}
	switch {
	case p.Order == 1:
		sb.WriteString("-manhattan")
	case p.Order == 2:
		sb.WriteString("-euclidean")
	case math.IsInf(p.Order, 1):
		sb.WriteString("-chebyshevian")
	default:
		fmt.Fprintf(&sb, "-L%g", p.Order)
	}
	return sb.String()
}

// Enforce describes an enforcement shorthand against a subgroup, like
// 2-constrained or 2.3-constrained 5-destretched. Empty or unparsable
// text reads none.
func Enforce(spec string, sg *subgroup.Subgroup) string {
	cons, des, err := tuner.ParseEnforce(spec, sg.Len())
	if err != nil || len(cons)+len(des) == 0 {
		return "none"
	}
	var parts []string
	if len(cons) > 0 {
		parts = append(parts, constraintNames(cons, sg)+"-constrained")
	}
	if len(des) > 0 {
		parts = append(parts, constraintNames(des, sg)+"-destretched")
	}
	return strings.Join(parts, " ")
}

func constraintNames(cs []tuner.Constraint, sg *subgroup.Subgroup) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		if c.Equivalence {
			names[i] = "Xj"
		} else {
			names[i] = intervalText(c.Monzo, sg)
		}
	}
	return strings.Join(names, ".")
}

// intervalText prefers the ratio form of a monzo and falls back to ket
// notation when the monzo runs past the subgroup.
func intervalText(m interval.Monzo, sg *subgroup.Subgroup) string {
	if len(m) > sg.Len() {
		return Monzo(m)
	}
	return Ratio(interval.Value(m, sg.Ratios()))
}

// Describe renders the header shown before every result.
func Describe(t *temperament.Temperament) string {
	return "Subgroup: " + t.Subgroup().String() + "\nMapping:\n" + Mapping(t.Mapping())
}

// Tuning renders a solved tuning: generators, the tempered and error
// maps, then the graded error and bias.
func Tuning(res *tuner.Result, sg *subgroup.Subgroup) string {
	lines := []string{
		"Generators: " + CentsVector(res.Gen) + " (¢)",
		"Tuning map: " + CentsVector(res.TuningMap) + " (¢)",
		"Error map: " + CentsVector(res.ErrorMap) + " (¢)",
		fmt.Sprintf("Tuning error: %.6f (¢)", res.Error),
		fmt.Sprintf("Tuning bias: %.6f (¢)", res.Bias),
	}
	if len(res.Unchanged) > 0 {
		names := make([]string, len(res.Unchanged))
		for i, m := range res.Unchanged {
			names[i] = intervalText(m, sg)
		}
		lines = append(lines, "Unchanged intervals: "+strings.Join(names, " "))
	}
	return strings.Join(lines, "\n")
}

// Measures renders the measure table. Badness values are scaled, by
// 1000 conventionally, to land in a readable range.
func Measures(m *temperament.Measures, scale float64) string {
	return strings.Join([]string{
		fmt.Sprintf("Complexity: %.6f", m.Complexity),
		fmt.Sprintf("Error: %.6f (¢)", m.Error),
		fmt.Sprintf("Badness (simple): %.6f (oct/%g)", m.Badness*scale, scale),
		fmt.Sprintf("Badness (logflat): %.6f (oct/%g)", m.BadnessLogflat*scale, scale),
	}, "\n")
}

// Wedgie renders wedgie coefficients, trimmed so equilateral wedgies
// read as whole numbers.
func Wedgie(w []float64) string {
	parts := make([]string, len(w))
	for i, x := range w {
		s := strconv.FormatFloat(x, 'f', 4, 64)
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
		parts[i] = s
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Commas renders a comma basis, one monzo and its ratio per line.
func Commas(ms []interval.Monzo, sg *subgroup.Subgroup) string {
	lines := make([]string, len(ms))
	for i, m := range ms {
		lines[i] = Monzo(m) + "\t" + intervalText(m, sg)
	}
	return strings.Join(lines, "\n")
}

// Spectrum renders spectrum entries, one ratio and norm per line.
func Spectrum(entries []spectrum.Entry, sg *subgroup.Subgroup) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s\t%.4f", intervalText(e.Monzo, sg), e.Norm)
	}
	return strings.Join(lines, "\n")
}
