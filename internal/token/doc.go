// Package token supplies OAuth2 tokens to the calendar adapters.
//
// Obtaining and refreshing credentials happens outside slotfinder; this
// package only reads a token that already exists on disk and wraps it into an
// authenticated HTTP client.
package token
