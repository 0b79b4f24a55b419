package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable name for the logged event.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	FieldError  = "error"
	// FieldRunID identifies one daemon process lifetime.
	FieldRunID = "run_id"
	// FieldVolumeID is the 32-bit volume identity rendered as 8 hex digits.
	FieldVolumeID = "volume_id"
	// FieldVolumeLabel is hoisted next to the message by the console handler.
	FieldVolumeLabel = "volume"
	FieldMount       = "mount"
	FieldPath        = "path"
)

type contextKey int

const (
	runIDKey contextKey = iota
	volumeKey
)

type volumeFields struct {
	id    string
	label string
	mount string
}

// WithRunID tags ctx with the daemon run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithVolume tags ctx with the volume currently being processed.
func WithVolume(ctx context.Context, id, label, mount string) context.Context {
	return context.WithValue(ctx, volumeKey, volumeFields{id: id, label: label, mount: mount})
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if vol, ok := ctx.Value(volumeKey).(volumeFields); ok {
		fields = append(fields, slog.String(FieldVolumeID, vol.id))
		if vol.label != "" {
			fields = append(fields, slog.String(FieldVolumeLabel, vol.label))
		}
		if vol.mount != "" {
			fields = append(fields, slog.String(FieldMount, vol.mount))
		}
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
