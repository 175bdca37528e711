package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrDuplicateTask     = errors.New("task already exists for case, template and owner")
	ErrSuspensionInvalid = errors.New("task suspension state is inconsistent")

	// Trigger errors
	ErrTriggerNotFound = errors.New("trigger not found")
	ErrInvalidTrigger  = errors.New("invalid trigger configuration")

	// Request errors
	ErrTaskRequestNotFound = errors.New("task request not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Event errors
	ErrInvalidEventType = errors.New("invalid case event type")
)
