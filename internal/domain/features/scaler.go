package features

import (
	"errors"
	"fmt"
	"math"
)

// ErrScalerNotFitted is returned by Transform on a scaler with no fitted state.
var ErrScalerNotFitted = errors.New("scaler is not fitted")

// Scaler applies a fitted per-feature standardization: (x - mean) / scale.
// A nil Mean centers nothing and a nil Scale divides by one.
type Scaler struct {
	mean  []float64
	scale []float64
	width int
}

// NewScaler validates fitted parameters. Zero scales are replaced by one.
func NewScaler(mean, scale []float64) (*Scaler, error) {
	if len(mean) == 0 && len(scale) == 0 {
		return nil, errors.New("scaler needs mean or scale")
	}
	if len(mean) > 0 && len(scale) > 0 && len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler mean has %d values but scale has %d", len(mean), len(scale))
	}
	width := max(len(mean), len(scale))
	s := &Scaler{width: width}
	if len(mean) > 0 {
		s.mean = make([]float64, width)
		for i, m := range mean {
			if math.IsNaN(m) || math.IsInf(m, 0) {
				return nil, fmt.Errorf("scaler mean[%d] is not finite", i)
			}
			s.mean[i] = m
		}
	}
	if len(scale) > 0 {
		s.scale = make([]float64, width)
		for i, sc := range scale {
			if math.IsNaN(sc) || math.IsInf(sc, 0) {
				return nil, fmt.Errorf("scaler scale[%d] is not finite", i)
			}
			if sc == 0 {
				sc = 1
			}
			s.scale[i] = sc
		}
	}
	return s, nil
}

// Fitted reports whether Transform can succeed for some input width.
func (s *Scaler) Fitted() bool {
	return s != nil && s.width > 0
}

// Width is the number of features the scaler was fitted on.
func (s *Scaler) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

// Transform returns a standardized copy of x.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if !s.Fitted() {
		return nil, ErrScalerNotFitted
	}
	if len(x) != s.width {
		return nil, fmt.Errorf("input has %d features, but scaler is expecting %d", len(x), s.width)
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if s.mean != nil {
			v -= s.mean[i]
		}
		if s.scale != nil {
			v /= s.scale[i]
		}
		out[i] = v
	}
	return out, nil
}
