package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricLocationLatency = "tracking.location_latency"
	MetricLastFixAge      = "tracking.last_fix_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricRecognitions    = "business.faces_recognized"
	MetricMedicationsDue  = "business.medications_due"
	MetricExercisesServed = "business.exercises_served"
)
