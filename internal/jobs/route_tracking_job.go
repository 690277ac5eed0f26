package jobs

import (
	"context"
	"errors"
	"log/slog"

	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/application/usecases/queries"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/metrics"
	"routeplanner/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// DefaultTrackingSchedule runs the tracking job every 30 seconds.
const DefaultTrackingSchedule = "*/30 * * * * *"

// RouteTrackingJob refreshes the tracking label of active routes.
type RouteTrackingJob struct {
	routes    queries.GetRoutesByStatusQueryHandler
	lifecycle commands.RouteLifecycleCommandHandler
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewRouteTrackingJob(
	routes queries.GetRoutesByStatusQueryHandler,
	lifecycle commands.RouteLifecycleCommandHandler,
	schedule string,
	logger *slog.Logger,
) *RouteTrackingJob {
	if schedule == "" {
		schedule = DefaultTrackingSchedule
	}
	return &RouteTrackingJob{
		routes:    routes,
		lifecycle: lifecycle,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "route_tracking_job"),
	}
}

func (j *RouteTrackingJob) Name() string { return "route tracking" }

// Start registers the run on the cron schedule and starts the scheduler.
func (j *RouteTrackingJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Route tracking job started", "schedule", j.schedule)
	return nil
}

func (j *RouteTrackingJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Route tracking job stopped")
}

// RunOnce reports progress for every active route and returns how many
// routes ended up DELAYED.
func (j *RouteTrackingJob) RunOnce(ctx context.Context) int {
	query, err := queries.NewGetRoutesByStatusQuery(route.Active)
	if err != nil {
		j.logger.ErrorContext(ctx, "Route tracking job failed", "error", err)
		return 0
	}

	active, err := j.routes.Handle(ctx, query)
	if err != nil {
		j.logger.ErrorContext(ctx, "Route tracking job failed to list active routes", "error", err)
		return 0
	}

	delayed := 0
	for _, r := range active {
		cmd, err := commands.NewReportProgressCommand(r.ID)
		if err != nil {
			j.logger.ErrorContext(ctx, "Route tracking job skipped route", "route_id", r.ID.String(), "error", err)
			continue
		}

		tracking, err := j.lifecycle.ReportProgress(ctx, cmd)
		metrics.ObserveCommand("report_progress", err)
		if err != nil {
			// completed or cancelled since it was listed
			if errors.Is(err, errs.ErrInvalidState) || errors.Is(err, errs.ErrObjectNotFound) {
				j.logger.DebugContext(ctx, "Route left ACTIVE before tracking", "route_id", r.ID.String())
				continue
			}
			j.logger.ErrorContext(ctx, "Route tracking failed", "route_id", r.ID.String(), "error", err)
			continue
		}

		metrics.TrackingRefreshes.WithLabelValues(tracking.String()).Inc()
		if tracking == route.Delayed {
			delayed++
		}
	}
	return delayed
}
