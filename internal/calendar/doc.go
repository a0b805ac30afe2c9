// Package calendar reads free/busy information from the Google Calendar API.
//
// The Client implements availability.Provider: each participant is looked up
// with a single freeBusy query against the participant's calendar id. Google
// reports only opaque busy blocks, so every period is returned as busy and no
// working hours template is available.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, token.NewFileProvider(path), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	busy, err := client.BusyPeriods(ctx, "alice@example.com", start, end)
package calendar
