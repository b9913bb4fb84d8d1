package domain

import "errors"

// Sentinel errors for the reader. Callers match them with errors.Is; every
// failure path wraps one of these with context via fmt.Errorf and %w.
var (
	// ErrNotFound means the database file did not exist at open time.
	ErrNotFound = errors.New("database file not found")

	// ErrUnknownTable means a row count was requested for a table outside
	// the recorder schema.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnsupportedUnit means a requested target unit is not in the
	// recognized set.
	ErrUnsupportedUnit = errors.New("unsupported unit")

	// ErrUnsupportedConversion means there is no conversion path between a
	// reading's source unit and the target unit.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrMalformedMetadata means a state row's attributes blob is not valid
	// JSON or omits a required key.
	ErrMalformedMetadata = errors.New("malformed state attributes")

	// ErrMalformedTimestamp means a state row's last_changed string does not
	// parse as a recorder timestamp.
	ErrMalformedTimestamp = errors.New("malformed state timestamp")

	// ErrMalformedValue means a state row's value is not numeric.
	ErrMalformedValue = errors.New("malformed state value")

	// ErrStore wraps failures reported by the storage engine itself.
	ErrStore = errors.New("store query failed")
)
