// Package ics turns iCalendar feeds into busy periods.
//
// Feeds are fetched with conditional requests and an in-memory copy of the
// last good body, parsed with golang-ical, and recurring events are expanded
// with rrule-go inside the query window. Transparent and cancelled events do
// not block time; tentative events are reported as tentative.
package ics
