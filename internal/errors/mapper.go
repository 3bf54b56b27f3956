// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Map converts repo/infra errors into status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return status.Error(codes.AlreadyExists, "record already exists")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// NotFound creates a NotFound error for a missing user or take.
func NotFound(msg string) error {
	return status.Error(codes.NotFound, msg)
}

// InvalidArgument creates an InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// Conflict creates an AlreadyExists error. Raised when a reaction toggle
// loses a race on the ledger's per-user uniqueness; callers retry once.
func Conflict(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}

// Code extracts the status code from an error, codes.Unknown for plain errors.
func Code(err error) codes.Code {
	return status.Code(err)
}

// IsNotFound reports whether err carries codes.NotFound.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// IsConflict reports whether err carries codes.AlreadyExists.
func IsConflict(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
