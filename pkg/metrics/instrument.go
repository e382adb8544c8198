package metrics

import "time"

// ObserveStage records how long a named pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordGatePass records a single gate evaluation outcome (spec §4.10's
// five fixed gates: min_sharpe, min_consistency, max_drawdown,
// min_trades, adjusted_p_value).
func (m *Metrics) RecordGatePass(gate string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	m.GatePassTotal.WithLabelValues(gate, result).Inc()
}

// RecordWindowError records a walk-forward window's backend dispatch failure.
func (m *Metrics) RecordWindowError(backend, reason string) {
	m.WindowErrorsTotal.WithLabelValues(backend, reason).Inc()
}

// RecordPersonaTimeout records a persona that missed its dispatch deadline.
func (m *Metrics) RecordPersonaTimeout(persona string) {
	m.PersonaTimeoutTotal.WithLabelValues(persona).Inc()
}
