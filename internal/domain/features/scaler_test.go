package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalerTransform(t *testing.T) {
	s, err := NewScaler([]float64{1, 10, 0}, []float64{2, 5, 0})
	require.NoError(t, err)
	require.True(t, s.Fitted())
	require.Equal(t, 3, s.Width())

	out, err := s.Transform([]float64{3, 0, 7})
	require.NoError(t, err)
	require.Equal(t, []float64{1, -2, 7}, out)
}

func TestScalerMeanOnly(t *testing.T) {
	s, err := NewScaler([]float64{1, 1}, nil)
	require.NoError(t, err)
	out, err := s.Transform([]float64{4, 0})
	require.NoError(t, err)
	require.Equal(t, []float64{3, -1}, out)
}

func TestScalerWidthMismatch(t *testing.T) {
	s, err := NewScaler([]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	_, err = s.Transform([]float64{1, 2, 3})
	require.ErrorContains(t, err, "expecting 2")
}

func TestScalerUnfitted(t *testing.T) {
	var s *Scaler
	require.False(t, s.Fitted())
	_, err := s.Transform([]float64{1})
	require.ErrorIs(t, err, ErrScalerNotFitted)
}

func TestNewScalerValidates(t *testing.T) {
	_, err := NewScaler(nil, nil)
	require.Error(t, err)
	_, err = NewScaler([]float64{0}, []float64{1, 1})
	require.Error(t, err)
	_, err = NewScaler([]float64{math.NaN()}, nil)
	require.Error(t, err)
}
