// Package metrics holds the prometheus collectors of the service
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "leads"

var (
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resource_request_submissions_total",
		Help:      "Resource request submissions by outcome",
	}, []string{"outcome"})

	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Notification emails by kind and outcome",
	}, []string{"kind", "outcome"})

	CleanupDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cleanup_deleted_requests_total",
		Help:      "Resource requests removed by the retention cleanup",
	})

	PriorityLevels = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resource_request_priority",
		Help:      "Priority computed for new resource requests",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})
)

// Register registers every collector on reg (or the default registerer if nil).
// Collectors that are already registered are skipped.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	for _, c := range []prometheus.Collector{
		Submissions,
		EmailsSent,
		CleanupDeleted,
		PriorityLevels,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	return nil
}
