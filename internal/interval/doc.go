// Package interval provides the time primitives the scheduling engine is built on.
//
// All intervals are half-open [Start, End). Helpers cover overlap and
// intersection, whole-minute durations, rounding to a slot granularity,
// buffer padding, DST-correct formatting in a named zone and recurring
// working-hours checks.
//
// Unknown zone names never fail a request: LoadLocation falls back to UTC and
// reports the fallback so callers can log it.
package interval
