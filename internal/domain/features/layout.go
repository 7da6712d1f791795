package features

import (
	"errors"
	"fmt"
)

// Column names of the assembled feature row, in assembly order.
const (
	ColLocationID   = "location_id"
	ColLocationName = "location_name"
	ColParameter    = "parameter"
	ColUnit         = "unit"
	ColLatitude     = "latitude"
	ColLongitude    = "longitude"
	ColHour         = "hour"
	ColDayOfWeek    = "day_of_week"
	ColDayOfMonth   = "day_of_month"
	ColMonth        = "month"
	ColYear         = "year"
	ColIsWeekend    = "is_weekend"
)

// CategoricalColumns are label encoded before assembly.
var CategoricalColumns = []string{ColLocationID, ColLocationName, ColParameter, ColUnit}

// DefaultColumns is the full assembled row.
var DefaultColumns = []string{
	ColLocationID, ColLocationName, ColParameter, ColUnit,
	ColLatitude, ColLongitude,
	ColHour, ColDayOfWeek, ColDayOfMonth, ColMonth, ColYear, ColIsWeekend,
}

var columnIndex = func() map[string]int {
	idx := make(map[string]int, len(DefaultColumns))
	for i, name := range DefaultColumns {
		idx[name] = i
	}
	return idx
}()

// ErrLayoutMismatch means the model width cannot be mapped onto assembled columns.
var ErrLayoutMismatch = errors.New("model input width does not match the assembled feature columns and no feature names were provided")

// Layout selects and orders assembled columns to match a model's input.
type Layout struct {
	width   int
	columns []string
	index   []int
}

// NewLayout builds the layout for a model of the given input width. When names
// is empty the default column order is used if its width matches; otherwise the
// layout is unaligned and every projection fails with ErrLayoutMismatch.
func NewLayout(names []string, width int) (Layout, error) {
	if width <= 0 {
		return Layout{}, fmt.Errorf("model input width must be positive, got %d", width)
	}
	if len(names) == 0 {
		if width != len(DefaultColumns) {
			return Layout{width: width}, nil
		}
		names = DefaultColumns
	}
	if len(names) != width {
		return Layout{}, fmt.Errorf("model lists %d feature names for input width %d", len(names), width)
	}
	index := make([]int, len(names))
	for i, name := range names {
		pos, ok := columnIndex[name]
		if !ok {
			return Layout{}, fmt.Errorf("unknown feature column %q", name)
		}
		index[i] = pos
	}
	cols := make([]string, len(names))
	copy(cols, names)
	return Layout{width: width, columns: cols, index: index}, nil
}

// DefaultLayout is the 12-column layout in assembly order.
func DefaultLayout() Layout {
	layout, _ := NewLayout(nil, len(DefaultColumns))
	return layout
}

// Width is the number of values the model expects.
func (l Layout) Width() int {
	return l.width
}

// Aligned reports whether projections can succeed.
func (l Layout) Aligned() bool {
	return l.width > 0 && len(l.index) == l.width
}

// Columns returns the model's column order.
func (l Layout) Columns() []string {
	out := make([]string, len(l.columns))
	copy(out, l.columns)
	return out
}

func (l Layout) project(row []float64) ([]float64, error) {
	if !l.Aligned() {
		return nil, ErrLayoutMismatch
	}
	if len(row) != len(DefaultColumns) {
		return nil, fmt.Errorf("assembled row has %d columns, want %d", len(row), len(DefaultColumns))
	}
	out := make([]float64, l.width)
	for i, pos := range l.index {
		out[i] = row[pos]
	}
	return out, nil
}
