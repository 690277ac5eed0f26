// Package delivery models the driver-side workflow of a single stop.
//
// An Attempt walks EN_ROUTE, ARRIVED, ITEMS_RECONCILED and CONFIRMED. The
// driver records what was actually handed over (partial delivery is fine,
// more than ordered is not) and how many empties were collected, then closes
// the stop with the recipient name and a proof-of-delivery reference. The
// confirmed attempt becomes a Record and its quantities are written onto the
// order.
package delivery
