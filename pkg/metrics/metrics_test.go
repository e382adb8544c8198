package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	return NewWithRegistry(registry), registry
}

func findFamily(t *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestAllCollectorsRegisterUnderTheResearchkitNamespace(t *testing.T) {
	m, registry := newTestMetrics(t)
	// Vec collectors export nothing until a label set is used, so touch
	// each one before gathering.
	m.ObserveStage("ingestion", time.Millisecond)
	m.RecordGatePass("sharpe", true)
	m.RecordWindowError("simulated", "timeout")
	m.RecordPersonaTimeout("risk_manager")
	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	for _, mf := range families {
		assert.Contains(t, mf.GetName(), "researchkit_")
		assert.NotEmpty(t, mf.GetHelp())
	}
}

func TestObserveStageRecordsIntoTheNamedStageBucket(t *testing.T) {
	m, registry := newTestMetrics(t)
	m.ObserveStage("ingestion", 250*time.Millisecond)
	m.ObserveStage("ingestion", 500*time.Millisecond)

	mf := findFamily(t, registry, "researchkit_stage_duration_seconds")
	require.NotNil(t, mf)
	require.Equal(t, dto.MetricType_HISTOGRAM, mf.GetType())

	metric := mf.GetMetric()[0]
	assert.Equal(t, "stage", metric.GetLabel()[0].GetName())
	assert.Equal(t, "ingestion", metric.GetLabel()[0].GetValue())
	assert.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.75, metric.GetHistogram().GetSampleSum(), 0.001)
}

func TestRecordGatePassLabelsPassAndFailSeparately(t *testing.T) {
	m, registry := newTestMetrics(t)
	m.RecordGatePass("sharpe", true)
	m.RecordGatePass("sharpe", true)
	m.RecordGatePass("sharpe", false)

	mf := findFamily(t, registry, "researchkit_gate_pass_total")
	require.NotNil(t, mf)
	require.Equal(t, dto.MetricType_COUNTER, mf.GetType())
	require.Len(t, mf.GetMetric(), 2)

	totals := map[string]float64{}
	for _, metric := range mf.GetMetric() {
		var result string
		for _, l := range metric.GetLabel() {
			if l.GetName() == "result" {
				result = l.GetValue()
			}
		}
		totals[result] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, float64(2), totals["pass"])
	assert.Equal(t, float64(1), totals["fail"])
}

func TestRecordWindowErrorLabelsBackendAndReason(t *testing.T) {
	m, registry := newTestMetrics(t)
	m.RecordWindowError("simulated", "timeout")

	mf := findFamily(t, registry, "researchkit_window_errors_total")
	require.NotNil(t, mf)
	require.Len(t, mf.GetMetric(), 1)

	labels := map[string]string{}
	for _, l := range mf.GetMetric()[0].GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, "simulated", labels["backend"])
	assert.Equal(t, "timeout", labels["reason"])
}

func TestRecordPersonaTimeoutLabelsThePersona(t *testing.T) {
	m, registry := newTestMetrics(t)
	m.RecordPersonaTimeout("risk_manager")

	mf := findFamily(t, registry, "researchkit_persona_timeout_total")
	require.NotNil(t, mf)
	require.Len(t, mf.GetMetric(), 1)
	assert.Equal(t, "risk_manager", mf.GetMetric()[0].GetLabel()[0].GetValue())
}

func TestWriteTextRendersAllFamiliesInExpositionFormat(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.ObserveStage("verify", 10*time.Millisecond)
	m.RecordGatePass("consistency", true)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "researchkit_stage_duration_seconds")
	assert.Contains(t, out, "researchkit_gate_pass_total")
}
