// Package logging provides structured logging utilities for slotfinder.
//
// All components log through log/slog. Core packages never reach for a global
// logger; they receive a Logger through their constructors, and the command
// layer builds the concrete handler once with NewLogger.
//
// # Usage Patterns
//
// Attach standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "proposal.propose")
//	logger.Info("candidates ranked", logging.Status(logging.StatusSuccess))
//
// Participant identifiers are usually email addresses. Log them hashed:
//
//	logger.Warn("provider call failed", logging.Participant(id), logging.Err(err))
package logging
