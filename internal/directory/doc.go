// Package directory routes each participant to the calendar backend named in
// the configuration and applies configured working hours on top of whatever
// the backend reports.
package directory
