package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	fixedUTC   = time.Date(2025, 1, 4, 8, 15, 0, 0, time.UTC) // Saturday
	fixedLocal = time.Date(2025, 1, 4, 13, 45, 0, 0, time.FixedZone("IST", 19800))
)

func sampleRequest() Request {
	return Request{
		KeyLocationID:   "L1",
		KeyLocationName: "Station A",
		KeyParameter:    "pm25",
		KeyUnit:         "µg/m3",
		KeyLatitude:     "12.9",
		KeyLongitude:    77.6,
		KeyDatetimeUTC:  "2024-03-10T14:30:00Z",
	}
}

func sampleRegistry() *LabelRegistry {
	return NewLabelRegistry(map[string][]string{
		ColLocationID:   {"L0", "L1"},
		ColLocationName: {"Station A", "Station B"},
		ColParameter:    {"no2", "pm10", "pm25"},
		ColUnit:         {"ppm", "µg/m3"},
	})
}

func newTestEncoder(labels *LabelRegistry, scaler *Scaler, layout Layout) *Encoder {
	return NewEncoder(labels, scaler, layout).WithClock(
		func() time.Time { return fixedUTC },
		func() time.Time { return fixedLocal },
	)
}

func TestEncodeDefaultLayoutUnscaled(t *testing.T) {
	enc := newTestEncoder(sampleRegistry(), nil, DefaultLayout())

	res := enc.Encode(sampleRequest())
	require.False(t, res.Fallback)
	require.NoError(t, res.Err)
	// 2024-03-10 is a Sunday.
	require.Equal(t, []float64{1, 0, 2, 1, 12.9, 77.6, 14, 6, 10, 3, 2024, 1}, res.Vector)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, WarnScalingSkipped, res.Warnings[0].Kind)
	require.ErrorIs(t, res.Warnings[0].Err, ErrScalerNotFitted)
}

func TestEncodeScaled(t *testing.T) {
	mean := make([]float64, 12)
	scale := make([]float64, 12)
	for i := range scale {
		scale[i] = 2
	}
	mean[10] = 2000
	scaler, err := NewScaler(mean, scale)
	require.NoError(t, err)

	res := newTestEncoder(sampleRegistry(), scaler, DefaultLayout()).Encode(sampleRequest())
	require.False(t, res.Fallback)
	require.Empty(t, res.Warnings)
	require.Equal(t, 12.0, res.Vector[10])
	require.Equal(t, 7.0, res.Vector[6])
}

func TestEncodeProjectsNamedColumns(t *testing.T) {
	layout, err := NewLayout([]string{
		ColLocationID, ColParameter, ColUnit, ColLatitude, ColLongitude,
		ColHour, ColDayOfWeek, ColMonth, ColIsWeekend,
	}, 9)
	require.NoError(t, err)

	res := newTestEncoder(sampleRegistry(), nil, layout).Encode(sampleRequest())
	require.False(t, res.Fallback)
	require.Equal(t, []float64{1, 2, 1, 12.9, 77.6, 14, 6, 3, 1}, res.Vector)
}

func TestEncodeScalesAssembledRowBeforeProjection(t *testing.T) {
	mean := make([]float64, len(DefaultColumns))
	scale := make([]float64, len(DefaultColumns))
	for i := range mean {
		mean[i] = 1
		scale[i] = 2
	}
	scaler, err := NewScaler(mean, scale)
	require.NoError(t, err)
	layout, err := NewLayout([]string{
		ColLocationID, ColParameter, ColUnit, ColLatitude, ColLongitude,
		ColHour, ColDayOfWeek, ColMonth, ColIsWeekend,
	}, 9)
	require.NoError(t, err)

	res := newTestEncoder(sampleRegistry(), scaler, layout).Encode(sampleRequest())
	require.False(t, res.Fallback)
	require.Empty(t, res.Warnings)
	require.InDeltaSlice(t, []float64{0, 0.5, 0, 5.95, 38.3, 6.5, 2.5, 1, 0}, res.Vector, 1e-9)
}

func TestEncodeScalesProjectedVectorWhenScalerMatchesModel(t *testing.T) {
	scaler, err := NewScaler([]float64{0, 10}, []float64{1, 2})
	require.NoError(t, err)
	layout, err := NewLayout([]string{ColParameter, ColHour}, 2)
	require.NoError(t, err)

	res := newTestEncoder(sampleRegistry(), scaler, layout).Encode(sampleRequest())
	require.False(t, res.Fallback)
	require.Empty(t, res.Warnings)
	require.Equal(t, []float64{2, 2}, res.Vector)
}

func TestEncodeSkipsScalingOnWidthMismatch(t *testing.T) {
	scaler, err := NewScaler([]float64{0, 0, 0}, []float64{2, 2, 2})
	require.NoError(t, err)

	res := newTestEncoder(sampleRegistry(), scaler, DefaultLayout()).Encode(sampleRequest())
	require.False(t, res.Fallback)
	require.Equal(t, []float64{1, 0, 2, 1, 12.9, 77.6, 14, 6, 10, 3, 2024, 1}, res.Vector)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, WarnScalingSkipped, res.Warnings[0].Kind)
}

func TestEncodeUnseenLabel(t *testing.T) {
	reg := sampleRegistry()
	req := sampleRequest()
	req[KeyParameter] = "o3"

	res := newTestEncoder(reg, nil, DefaultLayout()).Encode(req)
	require.False(t, res.Fallback)
	require.Equal(t, float64(UnseenCode), res.Vector[2])
	require.Contains(t, res.Warnings, Warning{Kind: WarnUnseenLabel, Field: ColParameter, Value: "o3"})

	code, status := reg.Encode(ColParameter, "pm25")
	require.Equal(t, 2, code)
	require.Equal(t, LabelKnown, status)
}

func TestEncodeDefaultsAndBadNumbers(t *testing.T) {
	req := Request{
		KeyLatitude:    "north",
		KeyLongitude:   nil,
		KeyDatetimeUTC: "not a date",
	}
	res := newTestEncoder(NewLabelRegistry(nil), nil, DefaultLayout()).Encode(req)
	require.False(t, res.Fallback)
	require.Equal(t, []float64{0, 0, 0, 0, 0, 0, 8, 5, 4, 1, 2025, 1}, res.Vector)
	require.True(t, fixedUTC.Equal(res.UTC))
	require.True(t, fixedLocal.Equal(res.Local))

	kinds := map[WarningKind]int{}
	for _, w := range res.Warnings {
		kinds[w.Kind]++
	}
	require.Equal(t, 2, kinds[WarnInvalidNumber])
	require.Equal(t, 2, kinds[WarnTimestampFallback])
	require.Equal(t, 4, kinds[WarnEncoderFitted])
}

func TestEncodeDatetimeUTCAlias(t *testing.T) {
	req := sampleRequest()
	delete(req, KeyDatetimeUTC)
	req[KeyDatetimeUTCv2] = "15-07-2024 06:00"

	res := newTestEncoder(sampleRegistry(), nil, DefaultLayout()).Encode(req)
	require.True(t, time.Date(2024, 7, 15, 6, 0, 0, 0, time.UTC).Equal(res.UTC))
	require.Equal(t, 0.0, res.Vector[11])
}

func TestEncodeUnalignedLayoutFallsBack(t *testing.T) {
	layout, err := NewLayout(nil, 9)
	require.NoError(t, err)
	require.False(t, layout.Aligned())

	res := newTestEncoder(sampleRegistry(), nil, layout).Encode(sampleRequest())
	require.True(t, res.Fallback)
	require.ErrorIs(t, res.Err, ErrLayoutMismatch)
	require.Equal(t, make([]float64, 9), res.Vector)
}

func TestEncodeAlwaysReturnsModelWidth(t *testing.T) {
	layouts := []Layout{DefaultLayout()}
	for _, width := range []int{1, 9, 12, 20} {
		l, err := NewLayout(nil, width)
		require.NoError(t, err)
		layouts = append(layouts, l)
	}
	requests := []Request{
		sampleRequest(),
		{},
		{KeyLatitude: []int{1}, KeyDatetimeUTC: 12},
	}
	for _, layout := range layouts {
		enc := newTestEncoder(sampleRegistry(), nil, layout)
		for _, req := range requests {
			res := enc.Encode(req)
			require.Len(t, res.Vector, layout.Width())
			if res.Fallback {
				for _, v := range res.Vector {
					require.Zero(t, v)
				}
			}
		}
	}
}

func TestNewLayoutValidation(t *testing.T) {
	_, err := NewLayout(nil, 0)
	require.Error(t, err)
	_, err = NewLayout([]string{ColHour}, 2)
	require.Error(t, err)
	_, err = NewLayout([]string{"pressure"}, 1)
	require.ErrorContains(t, err, "pressure")
	require.Equal(t, DefaultColumns, DefaultLayout().Columns())
}
