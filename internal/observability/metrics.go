package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the counters and histograms this runtime's operator
// dashboards care about: provider-chain requests and failover outcomes,
// tool executions, scheduled-task fires, and session counts.
type Metrics struct {
	// ProviderRequests counts completion requests by provider, model, and
	// outcome (success|transient_error|permanent_error).
	ProviderRequests *prometheus.CounterVec

	// ProviderRequestDuration measures completion latency in seconds.
	ProviderRequestDuration *prometheus.HistogramVec

	// ToolExecutions counts tool invocations by name and status
	// (success|error).
	ToolExecutions *prometheus.CounterVec

	// ToolExecutionDuration measures tool execution time in seconds.
	ToolExecutionDuration *prometheus.HistogramVec

	// ScheduleFires counts scheduler dispatches by schedule name and
	// outcome (success|error).
	ScheduleFires *prometheus.CounterVec

	// ActiveSessions is the current number of known sessions.
	ActiveSessions prometheus.Gauge
}

// NewMetrics registers and returns a Metrics. Call once at startup.
func NewMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_provider_requests_total",
				Help: "Total number of provider completion requests by provider, model, and outcome.",
			},
			[]string{"provider", "model", "outcome"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentshell_provider_request_duration_seconds",
				Help:    "Duration of provider completion requests in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		ToolExecutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_tool_executions_total",
				Help: "Total number of tool executions by tool name and status.",
			},
			[]string{"tool_name", "status"},
		),
		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentshell_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"tool_name"},
		),
		ScheduleFires: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_schedule_fires_total",
				Help: "Total number of scheduler dispatches by schedule name and outcome.",
			},
			[]string{"schedule", "outcome"},
		),
		ActiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentshell_active_sessions",
				Help: "Current number of known sessions.",
			},
		),
	}
}

// RecordProviderRequest records the outcome and latency of one provider
// completion request.
func (m *Metrics) RecordProviderRequest(provider, model, outcome string, durationSeconds float64) {
	m.ProviderRequests.WithLabelValues(provider, model, outcome).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider, model).Observe(durationSeconds)
}

// RecordToolExecution records the outcome and latency of one tool call.
func (m *Metrics) RecordToolExecution(toolName, status string, durationSeconds float64) {
	m.ToolExecutions.WithLabelValues(toolName, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(durationSeconds)
}

// RecordScheduleFire records one scheduler dispatch's outcome.
func (m *Metrics) RecordScheduleFire(schedule, outcome string) {
	m.ScheduleFires.WithLabelValues(schedule, outcome).Inc()
}

// SetActiveSessions sets the active-sessions gauge to n.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}
