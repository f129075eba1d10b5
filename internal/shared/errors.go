package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrUnknownDriver = fmt.Errorf("unknown storage driver")

	// Persistence errors
	ErrCorruptState = fmt.Errorf("corrupt persisted state")
	ErrStorage      = fmt.Errorf("storage operation failed")

	// Timer and export errors
	ErrNoPeriods = fmt.Errorf("no recorded periods")
	ErrAborted   = fmt.Errorf("operation aborted")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
