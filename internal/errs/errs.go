package errs

import "errors"

var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrTechnicianNotFound    = errors.New("technician not found")
	ErrWorkOrderNotFound     = errors.New("work order not found")
	ErrImageNotFound         = errors.New("product image not found")
	ErrRemoteRequestNotFound = errors.New("remote request not found")

	// ErrInvalidInput covers malformed identifiers and missing required
	// fields; no mutation has been performed when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	ErrPermissionDenied = errors.New("permission denied")

	// ErrCapacityExceeded means the 4-digit work order sequence for the
	// current year is exhausted. Hard failure, never retried.
	ErrCapacityExceeded = errors.New("work order number capacity exceeded for year")

	// ErrAlreadyConverted marks a second conversion attempt on a remote
	// request; the first conversion stands, nothing new is created.
	ErrAlreadyConverted = errors.New("remote request already converted")

	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateSerial means another active work order already carries the
	// serial number. Archived orders release their serial.
	ErrDuplicateSerial = errors.New("serial number already on an active work order")
)
