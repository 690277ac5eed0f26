// Package route holds the Route aggregate: the stop sequence a vehicle runs
// in one period, its capacity accounting and its lifecycle.
//
// Assembly (adding, removing and resequencing stops) is only possible while
// the route is Assembling. Finalize dispatches the route; from then on the
// delivery workflow completes stops one by one and the route completes itself
// when the last stop is confirmed. ReportProgress labels an active route
// ON_TIME or DELAYED against its planned stop durations (see TravelPolicy).
package route
