package metrics

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrToLabel(t *testing.T) {
	assert.Equal(t, "nil", errToLabel(nil))
	assert.Equal(t, "no_license_for_package_foobar", errToLabel(errors.New("no license for package foo/bar")))
	assert.Equal(t, "openvendor_permission_denied", errToLabel(errors.New("open ./vendor: permission denied")))
}

func TestMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, log.New())
	m.Debug = true

	m.RecordResolved(0, false)
	m.RecordResolved(2, true)
	m.RecordResolved(1, true)
	m.RecordSkipped(SkipException)
	m.RecordSkipped(SkipModule)
	m.RecordSkipped(SkipModule)
	m.RecordMissing()
	m.RecordError("read", errors.New("permission denied"))
	m.RecordError("ignored", nil)
	m.RecordRun("success", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolvedTotal.WithLabelValues("false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolvedTotal.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedTotal.WithLabelValues(SkipException)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skippedTotal.WithLabelValues(SkipModule)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.missingTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("read.permission_denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.packagesReported))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "op_licenses_walk_depth")
	assert.Contains(t, names, "op_licenses_packages_resolved_total")
}

func TestNewWithoutRegistry(t *testing.T) {
	require.NotPanics(t, func() {
		m := New(nil, nil)
		m.RecordResolved(1, true)
		m.RecordRun("missing_license", 0)
	})
}

func TestNoopMetrics(t *testing.T) {
	var r Recorder = NoopMetrics{}
	require.NotPanics(t, func() {
		r.RecordResolved(1, false)
		r.RecordSkipped(SkipSeeded)
		r.RecordMissing()
		r.RecordError("x", errors.New("y"))
		r.RecordRun("success", 1)
	})
}
