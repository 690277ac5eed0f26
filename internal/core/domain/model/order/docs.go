// Package order models the confirmed sales orders handled by the planner.
//
// The set of orders in Pending status is the order catalog: the pool the
// dispatcher assembles routes from. Assigning an order to a route moves it
// out of that set, releasing it (unassign, route deletion, route cancellation)
// moves it back, and confirming its stop closes it as Delivered with the
// final quantities annotated.
package order
