// Package intersect finds meeting slots common to several participants'
// free intervals and ranks them by how many participants can attend.
package intersect
