package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Request keys understood by the encoder.
const (
	KeyLocationID    = "location_id"
	KeyLocationName  = "location_name"
	KeyParameter     = "parameter"
	KeyUnit          = "unit"
	KeyLatitude      = "latitude"
	KeyLongitude     = "longitude"
	KeyDatetimeUTC   = "datetimeUTC"
	KeyDatetimeUTCv2 = "datetime_utc"
	KeyDatetimeLocal = "datetime_local"
)

// UnknownLabel replaces absent categorical values.
const UnknownLabel = "unknown"

// Request is the loosely structured prediction payload as decoded from JSON.
type Request map[string]any

// Has reports whether key is present, regardless of its value.
func (r Request) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Category returns the value of key as a label, or UnknownLabel when absent or null.
func (r Request) Category(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return UnknownLabel
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Coordinate parses key as a float. Absent keys yield 0 without error.
func (r Request) Coordinate(key string) (float64, error) {
	v, ok := r[key]
	if !ok {
		return 0, nil
	}
	var (
		out float64
		err error
	)
	switch val := v.(type) {
	case float64:
		out = val
	case float32:
		out = float64(val)
	case int:
		out = float64(val)
	case int64:
		out = float64(val)
	case json.Number:
		out, err = val.Float64()
	case string:
		out, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
	case bool:
		if val {
			out = 1
		}
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("non-finite value %v", out)
	}
	return out, nil
}

// UTCTimestamp returns the first non-empty of datetimeUTC and datetime_utc.
func (r Request) UTCTimestamp() string {
	if s := r.text(KeyDatetimeUTC); s != "" {
		return s
	}
	return r.text(KeyDatetimeUTCv2)
}

// LocalTimestamp returns datetime_local, defaulting to the UTC timestamp.
func (r Request) LocalTimestamp() string {
	if r.Has(KeyDatetimeLocal) {
		return r.text(KeyDatetimeLocal)
	}
	return r.UTCTimestamp()
}

func (r Request) text(key string) string {
	s, _ := r[key].(string)
	return strings.TrimSpace(s)
}
