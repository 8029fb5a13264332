package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// CompletionsTotal counts recorded completions by subject kind (room, equipment).
	CompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neatplan_completions_total",
			Help: "Total number of schedule completions recorded",
		},
		[]string{"kind"},
	)

	// SweepTransitionsTotal counts status changes written by the overdue sweep.
	SweepTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neatplan_sweep_transitions_total",
			Help: "Total number of assignment status changes made by the sweep",
		},
		[]string{"kind", "to"},
	)

	// SweepRunsTotal counts sweep runs by result (ok, error).
	SweepRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neatplan_sweep_runs_total",
			Help: "Total number of overdue sweep runs",
		},
		[]string{"result"},
	)

	// OverdueAssignments is the number of OVERDUE assignments seen by the last sweep.
	OverdueAssignments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "neatplan_overdue_assignments",
			Help: "Assignments in OVERDUE status after the last sweep",
		},
		[]string{"kind"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, CompletionsTotal,
			SweepTransitionsTotal, SweepRunsTotal, OverdueAssignments)
	})
}

// NormalizePath replaces numeric path segments with {id} for requests that matched no
// route, e.g. /rooms/123 -> /rooms/{id}.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	// ReplaceAll does not see overlapping matches, so /a/1/2 needs a second pass.
	for i := 0; i < 2; i++ {
		path = numericPathSegment.ReplaceAllString(path, "/{id}$1")
	}
	return path
}

// RecordRequest records duration and count for one HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncCompletions counts one completion for kind.
func IncCompletions(kind string) {
	CompletionsTotal.WithLabelValues(kind).Inc()
}

// AddSweepTransition counts one status change made by the sweep.
func AddSweepTransition(kind, to string) {
	SweepTransitionsTotal.WithLabelValues(kind, to).Inc()
}

// ObserveSweep records the outcome of one sweep run.
func ObserveSweep(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SweepRunsTotal.WithLabelValues(result).Inc()
}

// SetOverdue sets the overdue gauge for kind.
func SetOverdue(kind string, n int) {
	OverdueAssignments.WithLabelValues(kind).Set(float64(n))
}
