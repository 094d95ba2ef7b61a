package domain

import "errors"

var (
	// Validation errors: nothing was attempted.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidPeriod   = errors.New("invalid period key")

	// Conflict errors: the requested mutation was refused.
	ErrAlreadyExists           = errors.New("entity already exists")
	ErrAlreadyPaid             = errors.New("record is already paid")
	ErrDuplicateSubscription   = errors.New("client already has an active subscription in this period")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// Backend errors, mapped from the document store / identity provider.
	ErrNotFound         = errors.New("entity not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("backend unavailable")
	ErrOperationFailed  = errors.New("operation failed")
)
