package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation       = "operation"
	KeyTool            = "tool"
	KeyProvider        = "provider"
	KeyParticipantHash = "participant_hash"
	KeyRequestID       = "request_id"
	KeyDuration        = "duration"
	KeyStatus          = "status"
	KeyError           = "error"
	KeySource          = "source"
)

// Status values for consistent logging.
// These are duplicated from the instrumentation package, which imports logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Log output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds the process logger. Unknown formats fall back to text.
func NewLogger(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Provider returns a slog attribute for the calendar provider kind.
func Provider(kind string) slog.Attr {
	return slog.String(KeyProvider, kind)
}

// RequestID returns a slog attribute for the request correlation id.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Source returns a slog attribute for the proposal source.
func Source(source string) slog.Attr {
	return slog.String(KeySource, source)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Duration returns a slog attribute for an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeParticipant returns a hashed representation of a participant id.
// Log entries stay correlatable without exposing email addresses.
func AnonymizeParticipant(id string) string {
	if id == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(id)))
	return "participant:" + hex.EncodeToString(hash[:8])
}

// Participant returns a slog attribute with the anonymized participant id.
func Participant(id string) slog.Attr {
	return slog.String(KeyParticipantHash, AnonymizeParticipant(id))
}
