// Package failure holds the error kinds shared by the lease and neighbor sources.
package failure

import "errors"

var (
	// ErrSourceUnavailable is returned when the lease file cannot be opened or the
	// neighbor command cannot be started.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedRecord is returned when a lease block or neighbor row does not
	// have the expected shape.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrCommandFailure is returned when the neighbor command ran but exited
	// non-zero, timed out or wrote undecodable output.
	ErrCommandFailure = errors.New("command failure")
)

// Kind returns a short label for err, suitable for metrics and log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, ErrCommandFailure):
		return "command_failure"
	default:
		return "unknown"
	}
}
