package volume

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies volume query failures so callers can pick a degrade policy.
type Kind string

const (
	KindEnumeration Kind = "enumeration"
	KindPermission  Kind = "permission"
	KindNotFound    Kind = "not_found"
	KindUnsupported Kind = "unsupported"
)

var (
	ErrEnumeration = errors.New("volume enumeration failed")
	ErrPermission  = errors.New("volume access denied")
	ErrNotFound    = errors.New("volume not found")
	ErrUnsupported = errors.New("volume query unsupported")
)

// Error describes a failed volume query.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + string(e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrPermission)
// works regardless of the underlying OS error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrEnumeration:
		return e.Kind == KindEnumeration
	case ErrPermission:
		return e.Kind == KindPermission
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrUnsupported:
		return e.Kind == KindUnsupported
	}
	return false
}

// KindOf reports the classification of err, or "" when err is not a volume error.
func KindOf(err error) Kind {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}

// wrapError classifies an OS error. fallback is used when the cause is neither
// a permission nor a not-exist failure.
func wrapError(op, path string, fallback Kind, err error) error {
	if err == nil {
		return nil
	}
	var verr *Error
	if errors.As(err, &verr) {
		return err
	}
	kind := fallback
	switch {
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func unsupported(op, path string) error {
	return &Error{Kind: KindUnsupported, Op: op, Path: path, Err: fmt.Errorf("no serial source for this platform or filesystem")}
}
