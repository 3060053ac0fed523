package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.RunsTotal.WithLabelValues("ok").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RunsTotal.WithLabelValues("ok")))
}

func TestObservePhase(t *testing.T) {
	m := New()
	m.ObservePhase(PhaseSign, time.Now().Add(-10*time.Millisecond))
	m.ObservePhase(PhaseSign, time.Now())

	assert.Equal(t, 1, testutil.CollectAndCount(m.PhaseDuration))
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.DocumentsTotal.WithLabelValues("Main.java").Add(4)
	m.Threshold.WithLabelValues("Main.java").Set(0.75)

	path := filepath.Join(t.TempDir(), "simscan.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `simscan_documents_total{file="Main.java"} 4`)
	assert.Contains(t, text, `simscan_similarity_threshold{file="Main.java"} 0.75`)
}

func TestWriteToTextfile_BadPath(t *testing.T) {
	err := New().WriteToTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics")
}
