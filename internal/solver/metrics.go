package solver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diet_solve_duration_seconds",
		Help:    "Time taken for one diet solve by mode",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
	}, []string{"mode"})

	noSolutionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diet_solve_no_solution_total",
		Help: "Total number of solves that produced no feasible diet, by mode",
	}, []string{"mode"})

	workingSetSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "diet_solve_working_foods_count",
		Help:    "Number of foods in the working set after eligibility filtering",
		Buckets: []float64{10, 50, 100, 500, 1000, 2000, 5000},
	})

	programVariables = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diet_program_variables_count",
		Help:    "Number of variables in the assembled program by mode",
		Buckets: []float64{100, 500, 1000, 2500, 5000, 10000},
	}, []string{"mode"})

	programRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diet_program_rows_count",
		Help:    "Number of constraint rows in the assembled program by mode",
		Buckets: []float64{10, 50, 100, 500, 1000, 2500, 5000},
	}, []string{"mode"})

	selectedFoods = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "diet_solve_selected_foods_count",
		Help:    "Number of foods in the resulting shopping list",
		Buckets: []float64{1, 3, 5, 10, 15, 20, 30, 50},
	})
)

// MetricsRecorder records diet engine metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordSolveDuration records the duration of one solve.
func (m *MetricsRecorder) RecordSolveDuration(mode string, d time.Duration) {
	solveDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordNoSolution records a solve with no feasible outcome.
func (m *MetricsRecorder) RecordNoSolution(mode string) {
	noSolutionTotal.WithLabelValues(mode).Inc()
}

// RecordWorkingSetSize records the post-filter working set size.
func (m *MetricsRecorder) RecordWorkingSetSize(count int) {
	workingSetSize.Observe(float64(count))
}

// RecordProgramSize records the assembled program's dimensions.
func (m *MetricsRecorder) RecordProgramSize(mode string, variables, rows int) {
	programVariables.WithLabelValues(mode).Observe(float64(variables))
	programRows.WithLabelValues(mode).Observe(float64(rows))
}

// RecordSelectedFoods records the shopping list size of a solve.
func (m *MetricsRecorder) RecordSelectedFoods(count int) {
	selectedFoods.Observe(float64(count))
}
