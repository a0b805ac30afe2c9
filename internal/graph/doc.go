// Package graph talks to the Microsoft Graph calendar API.
//
// Client implements availability.Provider on top of getSchedule, which
// reports both busy items and the mailbox working hours, and
// proposal.NativeFinder on top of findMeetingTimes.
package graph
