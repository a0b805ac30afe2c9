// Package availability turns raw calendar busy periods into per-participant
// busy and free interval lists for a query window.
//
// Normalize is a pure function. Collector drives a Provider for every
// participant, degrading individual failures to empty availability so one
// unreachable calendar never fails a whole request.
package availability
