// Package jobs provides scheduled background tasks for the route planner.
//
// Jobs are cron-based (github.com/robfig/cron/v3, seconds-resolution specs)
// and managed through JobManager:
//
//	jobManager := jobs.NewJobManager(logger, jobs.NewRouteTrackingJob(routes, lifecycle, spec, logger))
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// RouteTrackingJob reports progress for every ACTIVE route on its schedule
// ("*/30 * * * * *" by default) so ON_TIME/DELAYED labels stay
// current without drivers having to ask.
//
// # Error Handling
//
// A route that leaves ACTIVE between listing and reporting is skipped
// quietly; any other failure is logged and the run moves on to the next
// route.
package jobs
