package ranking

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"backlog/internal/models"
)

type metrics struct {
	collisionsTotal prometheus.Counter
	shiftedRequests prometheus.Histogram
	placementsTotal *prometheus.CounterVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		collisionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "backlog",
			Name:      "rank_collisions_total",
			Help:      "Total number of placements whose target rank was already taken.",
		}),
		shiftedRequests: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "backlog",
			Name:      "rank_shifted_requests",
			Help:      "Number of requests moved up by one to free a rank.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
		}),
		placementsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backlog",
			Name:      "rank_placements_total",
			Help:      "Total number of rank placements by result.",
		}, []string{"result"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrValidation):
		return "invalid"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func nopLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
