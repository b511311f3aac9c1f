// Package ml implements the random forest regression used by the trainer.
package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptyInput is returned when a fit receives no rows.
var ErrEmptyInput = errors.New("ml: empty input")

// StandardScaler centres each column and scales it to unit population
// variance. Columns with zero variance keep a scale of 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes column statistics of x.
func FitScaler(x [][]float64) (*StandardScaler, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	cols := len(x[0])
	s := &StandardScaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}
	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = 1
		if variance > 0 {
			s.Scale[j] = math.Sqrt(variance)
		}
	}
	return s, nil
}

// Transform returns a scaled copy of x.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out
}
