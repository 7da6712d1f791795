package features

import (
	"fmt"
	"time"

	"github.com/yanqian/aq-predictor/pkg/util"
)

// WarningKind classifies a recoverable preprocessing anomaly.
type WarningKind string

const (
	WarnInvalidNumber     WarningKind = "invalid_number"
	WarnTimestampFallback WarningKind = "timestamp_fallback"
	WarnUnseenLabel       WarningKind = "unseen_label"
	WarnEncoderFitted     WarningKind = "encoder_fitted"
	WarnScalingSkipped    WarningKind = "scaling_skipped"
)

// Warning records one anomaly and the fallback applied to it.
type Warning struct {
	Kind  WarningKind
	Field string
	Value string
	Err   error
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnInvalidNumber:
		return fmt.Sprintf("invalid %s value, using 0: %v", w.Field, w.Err)
	case WarnTimestampFallback:
		return fmt.Sprintf("could not parse %s, using current time: %v", w.Field, w.Err)
	case WarnUnseenLabel:
		return fmt.Sprintf("unseen label in %q: %q", w.Field, w.Value)
	case WarnEncoderFitted:
		return fmt.Sprintf("no encoder for %q, fitted on %q", w.Field, w.Value)
	case WarnScalingSkipped:
		return fmt.Sprintf("scaling skipped, using unscaled features: %v", w.Err)
	default:
		return string(w.Kind)
	}
}

// Result is the outcome of Encode. When Fallback is set, Vector is all zeros
// and Err holds the cause.
type Result struct {
	Vector   []float64
	Fallback bool
	Err      error
	Warnings []Warning
	UTC      time.Time
	Local    time.Time
}

// Encoder turns requests into model input vectors.
type Encoder struct {
	labels   *LabelRegistry
	scaler   *Scaler
	layout   Layout
	nowUTC   util.Clock
	nowLocal util.Clock
}

// NewEncoder wires the fitted state. A nil registry behaves as one with no mappings.
func NewEncoder(labels *LabelRegistry, scaler *Scaler, layout Layout) *Encoder {
	if labels == nil {
		labels = NewLabelRegistry(nil)
	}
	return &Encoder{
		labels:   labels,
		scaler:   scaler,
		layout:   layout,
		nowUTC:   util.NowUTC,
		nowLocal: util.NowLocal,
	}
}

// WithClock overrides the wall clock used for timestamp fallback.
func (e *Encoder) WithClock(utc, local util.Clock) *Encoder {
	e.nowUTC = utc
	e.nowLocal = local
	return e
}

// Width is the length of every vector Encode returns.
func (e *Encoder) Width() int {
	return e.layout.Width()
}

// Encode never fails: pipeline errors yield a zero vector marked as fallback.
func (e *Encoder) Encode(req Request) Result {
	var res Result
	vec, err := e.encode(req, &res)
	if err != nil {
		res.Vector = make([]float64, e.layout.Width())
		res.Fallback = true
		res.Err = err
		return res
	}
	res.Vector = vec
	return res
}

func (e *Encoder) encode(req Request, res *Result) ([]float64, error) {
	row := make([]float64, len(DefaultColumns))

	for _, col := range CategoricalColumns {
		value := req.Category(col)
		code, status := e.labels.Encode(col, value)
		switch status {
		case LabelUnseen:
			res.Warnings = append(res.Warnings, Warning{Kind: WarnUnseenLabel, Field: col, Value: value})
		case LabelFitted:
			res.Warnings = append(res.Warnings, Warning{Kind: WarnEncoderFitted, Field: col, Value: value})
		}
		row[columnIndex[col]] = float64(code)
	}

	for _, col := range []string{ColLatitude, ColLongitude} {
		v, err := req.Coordinate(col)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Kind: WarnInvalidNumber, Field: col, Err: err})
			v = 0
		}
		row[columnIndex[col]] = v
	}

	res.UTC = e.resolveTime(KeyDatetimeUTC, req.UTCTimestamp(), e.nowUTC, res)
	res.Local = e.resolveTime(KeyDatetimeLocal, req.LocalTimestamp(), e.nowLocal, res)

	tf := DeriveTimeFeatures(res.UTC)
	row[columnIndex[ColHour]] = float64(tf.Hour)
	row[columnIndex[ColDayOfWeek]] = float64(tf.DayOfWeek)
	row[columnIndex[ColDayOfMonth]] = float64(tf.DayOfMonth)
	row[columnIndex[ColMonth]] = float64(tf.Month)
	row[columnIndex[ColYear]] = float64(tf.Year)
	if tf.IsWeekend {
		row[columnIndex[ColIsWeekend]] = 1
	}

	// A scaler fitted on the full assembled row runs before projection so
	// models trained on a column subset still get standardized inputs.
	assembledScaled := false
	if e.scaler.Width() == len(row) {
		if scaled, err := e.scaler.Transform(row); err == nil {
			row = scaled
			assembledScaled = true
		}
	}

	vec, err := e.layout.project(row)
	if err != nil {
		return nil, err
	}

	if !assembledScaled {
		scaled, err := e.scaler.Transform(vec)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Kind: WarnScalingSkipped, Err: err})
		} else {
			vec = scaled
		}
	}
	if len(vec) != e.layout.Width() {
		return nil, fmt.Errorf("encoded %d features, model expects %d", len(vec), e.layout.Width())
	}
	return vec, nil
}

func (e *Encoder) resolveTime(field, raw string, now util.Clock, res *Result) time.Time {
	ts, err := ParseTimestamp(raw)
	if err != nil {
		res.Warnings = append(res.Warnings, Warning{Kind: WarnTimestampFallback, Field: field, Value: raw, Err: err})
		return now()
	}
	return ts
}
