package types

import "errors"

// Error taxonomy shared by every stage of the pipeline. Stages wrap these
// with context using fmt.Errorf("...: %w", ...) so callers can match them
// with errors.Is.
var (
	// ErrParse covers malformed XML, an unreadable source, or a date value
	// that cannot be converted.
	ErrParse = errors.New("parse error")

	// ErrInvalidArgument is returned when a category selector is neither
	// Quantity nor Category.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSchema is returned when an operation needs a column that the
	// table does not have.
	ErrSchema = errors.New("schema error")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
