// Package metrics holds the Prometheus collectors of the route planner on a
// dedicated registry exposed at /metrics.
package metrics

import (
	"context"
	"sync"

	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Commands counts command outcomes; outcome is "ok" or the error kind.
	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routeplanner_commands_total", Help: "Commands handled by name and outcome."},
		[]string{"command", "outcome"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routeplanner_events_published_total", Help: "Events published by type."},
		[]string{"type"},
	)
	EventPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "routeplanner_event_publish_failures_total", Help: "Publish calls that returned an error."},
	)

	// TrackingRefreshes counts progress reports of the tracking job by the
	// label the route ended with.
	TrackingRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routeplanner_tracking_refreshes_total", Help: "Active route progress reports by resulting label."},
		[]string{"tracking"},
	)

	regOnce sync.Once
)

// Register adds every collector to Registry; later calls do nothing.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			Commands,
			EventsPublished,
			EventPublishFailures,
			TrackingRefreshes,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// ObserveCommand records the outcome of one command.
func ObserveCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errs.Kind(err)
	}
	Commands.WithLabelValues(command, outcome).Inc()
}

// CountingPublisher counts events on their way to the next publisher.
type CountingPublisher struct {
	Next ports.EventPublisher
}

func (p CountingPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	for _, e := range events {
		EventsPublished.WithLabelValues(e.Type).Inc()
	}
	if p.Next == nil {
		return nil
	}
	err := p.Next.Publish(ctx, events...)
	if err != nil {
		EventPublishFailures.Inc()
	}
	return err
}
