package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.ObservePrediction(OutcomeSuccess, 3*time.Millisecond)
	r.ObservePrediction(OutcomeSuccess, time.Millisecond)
	r.ObservePrediction(OutcomeUnloaded, 0)
	r.IncWarning("unseen_label")
	r.SetModelLoaded(true)

	require.Equal(t, float64(2), testutil.ToFloat64(r.predictions.WithLabelValues(OutcomeSuccess)))
	require.Equal(t, float64(1), testutil.ToFloat64(r.predictions.WithLabelValues(OutcomeUnloaded)))
	require.Equal(t, float64(1), testutil.ToFloat64(r.warnings.WithLabelValues("unseen_label")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.modelLoaded))

	r.SetModelLoaded(false)
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(`
# HELP aq_model_loaded 1 when a model artifact was loaded at startup
# TYPE aq_model_loaded gauge
aq_model_loaded 0
`), "aq_model_loaded"))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.ObservePrediction(OutcomeFailed, time.Second)
		r.IncWarning("x")
		r.IncFallback()
		r.SetModelLoaded(true)
		r.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
}
