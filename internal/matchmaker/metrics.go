package matchmaker

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_runs_total",
		Help: "Total number of optimizer runs by outcome",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchmaker_run_duration_seconds",
		Help:    "Wall-clock duration of optimizer runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})

	generationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchmaker_generations_total",
		Help: "Total number of generations evolved",
	})

	bestFitness = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchmaker_best_fitness",
		Help:    "Fitness of the best match returned by each run",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 0.9, 1},
	})

	initAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_init_attempts_total",
		Help: "Total number of match construction attempts during population initialization",
	}, []string{"result"})
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrInsufficientCandidates):
		return "insufficient_candidates"
	case errors.Is(err, ErrNoValidPopulation):
		return "no_valid_population"
	case errors.Is(err, ErrDegenerateGroup):
		return "degenerate_group"
	default:
		return "error"
	}
}
