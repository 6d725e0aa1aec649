package inkwell

import (
	"errors"
	"fmt"
	"log/slog"
)

// Errors returned by post operations. Each carries the HTTP status it is reported with.
var (
	ErrNoUpdates       = Statusf(400, "No post fields to update")
	ErrMissingRequired = Statusf(400, "Missing required fields")
	ErrEmptyTitle      = Statusf(400, "Title can't be empty!")
	ErrEmptySlug       = Statusf(400, "Slug can't be empty!")
	ErrEmptyContent    = Statusf(400, "Content can't be empty!")
	ErrInvalidStatus   = Statusf(400, "Invalid status")
	ErrInvalidType     = Statusf(400, "Invalid post type")

	ErrUnauthorized = Statusf(401, "Unauthorized")

	ErrNotFound      = Statusf(404, "Post not found")
	ErrDuplicateSlug = Statusf(409, "A post with this slug already exists")

	ErrUploadsDisabled = Statusf(503, "Image uploads are not configured")
)

var _ error = &postError{}

type postError struct {
	Status  int
	Message string

	Cause error
}

func (e *postError) LogValue() slog.Value {
	if e == nil {
		return slog.Value{}
	}
	attrs := []slog.Attr{slog.Int("status", e.Status), slog.String("message", e.Message)}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	return slog.GroupValue(attrs...)
}

func (e *postError) Error() string {
	return e.Message
}

func (e *postError) Unwrap() error {
	return e.Cause
}

// Is matches errors with the same status and message, so a wrapped store error
// still compares equal to the sentinel it was reported as.
func (e *postError) Is(target error) bool {
	if err, ok := target.(*postError); ok {
		return err.Status == e.Status && err.Message == e.Message
	}
	return false
}

func Statusf(status int, format string, args ...any) error {
	return &postError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// WrapStatus attaches an HTTP status to an internal error, keeping it reachable through errors.Is/As.
func WrapStatus(err error, status int, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &postError{Status: status, Message: fmt.Sprintf(format, args...), Cause: err}
}

func ErrorCode(err error) int {
	if err == nil {
		return 200
	}
	var perr *postError
	if errors.As(err, &perr) {
		return perr.Status
	}
	return 500
}
