// Package export serializes tuning and sweep results for machine
// consumption, as indented JSON or a standalone SVG chart.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tuneforge/regtemp/internal/scan"
	"github.com/tuneforge/regtemp/internal/temperament"
	"github.com/tuneforge/regtemp/internal/tuner"
)

// TuningData is the JSON form of one solved tuning.
type TuningData struct {
	Mapping   [][]int   `json:"mapping"`
	Subgroup  string    `json:"subgroup"`
	Norm      string    `json:"norm"`
	Optimizer string    `json:"optimizer"`
	Enforce   string    `json:"enforce,omitempty"`
	Gen       []float64 `json:"gen"`
	TuningMap []float64 `json:"tuning_map"`
	ErrorMap  []float64 `json:"error_map"`
	Error     float64   `json:"error"`
	Bias      float64   `json:"bias"`
	Unchanged [][]int   `json:"unchanged,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// Tuning flattens a solved temperament into its JSON form. The norm,
// optimizer and enforce strings describe the request that produced res.
func Tuning(t *temperament.Temperament, res *tuner.Result, normDesc, optimizer, enforce string) TuningData {
	data := TuningData{
		Mapping:   t.Mapping(),
		Subgroup:  t.Subgroup().String(),
		Norm:      normDesc,
		Optimizer: optimizer,
		Enforce:   enforce,
		Gen:       res.Gen,
		TuningMap: res.TuningMap,
		ErrorMap:  res.ErrorMap,
		Error:     res.Error,
		Bias:      res.Bias,
		Warnings:  res.Warnings,
	}
	for _, m := range res.Unchanged {
		data.Unchanged = append(data.Unchanged, []int(m.Copy()))
	}
	return data
}

// ScanPoint is the JSON form of one swept division. Logflat is omitted
// where it is undefined.
type ScanPoint struct {
	Divisions  int      `json:"divisions"`
	Val        []int    `json:"val"`
	Error      float64  `json:"error"`
	Complexity float64  `json:"complexity"`
	Badness    float64  `json:"badness"`
	Logflat    *float64 `json:"logflat,omitempty"`
}

// ScanData is the JSON form of one sweep.
type ScanData struct {
	Subgroup string      `json:"subgroup"`
	Metric   string      `json:"metric"`
	Points   []ScanPoint `json:"points"`
	Best     ScanPoint   `json:"best"`
}

// Scan flattens a sweep result into its JSON form.
func Scan(res *scan.Result, subgroup, metric string) ScanData {
	data := ScanData{
		Subgroup: subgroup,
		Metric:   metric,
		Points:   make([]ScanPoint, len(res.Points)),
		Best:     scanPoint(res.Best),
	}
	for i, pt := range res.Points {
		data.Points[i] = scanPoint(pt)
	}
	return data
}

func scanPoint(pt scan.Point) ScanPoint {
	out := ScanPoint{
		Divisions:  pt.Divisions,
		Val:        pt.Val,
		Error:      pt.Error,
		Complexity: pt.Complexity,
		Badness:    pt.Badness,
	}
	if !math.IsNaN(pt.Logflat) {
		lf := pt.Logflat
		out.Logflat = &lf
	}
	return out
}

// JSON writes v to w as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSONFile writes v to a file as indented JSON.
func JSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	return JSON(f, v)
}
