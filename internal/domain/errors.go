package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError so the HTTP layer can pick a status code.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindConflict          ErrorKind = "conflict"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
	KindInternal          ErrorKind = "internal"
)

// AppError carries a user-facing message plus the underlying error, which is
// only exposed to clients in development mode.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel AppErrors by kind and message so wrapped copies still
// satisfy errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewInvalidTransitionError(message string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// NewInternalError wraps an unexpected failure (usually persistence).
func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// Wrap attaches detail to a sentinel while keeping its kind and message.
func Wrap(sentinel *AppError, err error) *AppError {
	return &AppError{Kind: sentinel.Kind, Message: sentinel.Message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrInvalidTimestamp   = NewValidationError("invalid booking_date_time")
	ErrInvalidSlotCount   = NewValidationError("no_of_slots must be a positive integer")
	ErrTooManySlots       = NewValidationError("no_of_slots exceeds the maximum per booking")
	ErrBookingNotFound    = NewNotFoundError("booking not found")
	ErrInvalidTransition  = NewInvalidTransitionError("booking status does not allow this operation")
	ErrBookingNotOverdue  = NewInvalidTransitionError("booking has not ended yet")
	ErrBookingChanged     = Wrap(ErrInvalidTransition, errors.New("booking was changed by another request"))
	ErrSlotConflict       = NewConflictError("requested slot overlaps an existing booking")
	ErrUserNotFound       = NewNotFoundError("user not found")
	ErrVehicleNotFound    = NewNotFoundError("vehicle not found")
	ErrStationNotFound    = NewNotFoundError("charging station not found")
	ErrChargerNotFound    = NewNotFoundError("charger not found")
	ErrConnectorNotFound  = NewNotFoundError("connector type not offered by charger")
	ErrStationNotApproved = NewValidationError("charging station is not approved")
	ErrChatNotFound       = NewNotFoundError("chat not found")
	ErrReportNotFound     = NewNotFoundError("report not found")
	ErrFileNotFound       = NewNotFoundError("file not found")
	ErrEmailTaken         = NewConflictError("email already registered")
	ErrInvalidCredentials = NewUnauthorizedError("invalid credentials")
	ErrPermissionDenied   = NewForbiddenError("permission denied")
)
