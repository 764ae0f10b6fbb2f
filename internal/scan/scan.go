// Package scan sweeps equal divisions of the octave, measuring the
// patent val of each division as a rank-one temperament and tracking
// the best one found.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/temperament"
)

// Metric names accepted by Run and Series.
const (
	MetricBadness    = "badness"
	MetricLogflat    = "logflat"
	MetricError      = "error"
	MetricComplexity = "complexity"
)

// Point is one equal division's showing under the sweep's norm.
type Point struct {
	Divisions  int
	Val        []int
	Error      float64
	Complexity float64
	Badness    float64
	Logflat    float64
}

// Result holds the swept points in division order and the best one
// under the requested metric.
type Result struct {
	Points []Point
	Best   Point
}

// Sweep scans a closed range of equal divisions.
type Sweep struct {
	From, To int
	NType    temperament.NType
	Profile  norm.Profile
	Logger   *slog.Logger
}

// NewSweep scans divisions from through to, inclusive, with default
// normalizer and norm.
func NewSweep(from, to int) *Sweep {
	return &Sweep{From: from, To: to}
}

// Run measures every division's patent val over sg and returns the
// points with the best one under metric, the lowest value winning.
// Divisions are measured concurrently. An empty metric ranks by
// badness.
func (s *Sweep) Run(ctx context.Context, sg *subgroup.Subgroup, metric string) (*Result, error) {
	if s.From < 1 || s.To < s.From {
		return nil, fmt.Errorf("scan: bad division range %d..%d", s.From, s.To)
	}
	if metric == "" {
		metric = MetricBadness
	}
	switch metric {
	case MetricBadness, MetricLogflat, MetricError, MetricComplexity:
	default:
		return nil, fmt.Errorf("scan: unknown metric %q", metric)
	}
	p, _ := s.Profile.Resolve()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Order != 2 {
		return nil, temperament.ErrNonEuclidean
	}
	if sg == nil {
		sg = subgroup.Default(3)
	}

	points := make([]*Point, s.To-s.From+1)

	var wg sync.WaitGroup
	for i := range points {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			d := s.From + idx
			val := sg.PatentVal(d)
			tp, err := temperament.New([][]int{val}, sg, temperament.Options{Logger: s.Logger})
			if err != nil {
				if s.Logger != nil {
					s.Logger.Debug("skipping division", "divisions", d, "err", err)
				}
				return
			}
			m, err := tp.Measures(s.NType, p)
			if err != nil {
				if s.Logger != nil {
					s.Logger.Debug("skipping division", "divisions", d, "err", err)
				}
				return
			}
			points[idx] = &Point{
				Divisions:  d,
				Val:        val,
				Error:      m.Error,
				Complexity: m.Complexity,
				Badness:    m.Badness,
				Logflat:    m.BadnessLogflat,
			}
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	best := math.Inf(1)
	for _, pt := range points {
		if pt == nil {
			continue
		}
		res.Points = append(res.Points, *pt)
		if v := pt.metric(metric); v < best {
			best = v
			res.Best = *pt
		}
	}
	if len(res.Points) == 0 {
		return nil, fmt.Errorf("scan: no measurable division in %d..%d", s.From, s.To)
	}
	return res, nil
}

// Series extracts one metric across the points, in division order.
func (r *Result) Series(metric string) []float64 {
	if metric == "" {
		metric = MetricBadness
	}
	out := make([]float64, len(r.Points))
	for i, pt := range r.Points {
		out[i] = pt.metric(metric)
	}
	return out
}

func (pt Point) metric(name string) float64 {
	switch name {
	case MetricLogflat:
		return pt.Logflat
	case MetricError:
		return pt.Error
	case MetricComplexity:
		return pt.Complexity
	case MetricBadness:
		return pt.Badness
	}
	return math.NaN()
}
