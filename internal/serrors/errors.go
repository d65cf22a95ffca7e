package serrors

import (
	"errors"
	"fmt"
)

// Error taxonomy for sysmond. The collector and calculator return these
// unretried; retry and degrade policy belongs to the caller.

var (
	// ErrSourceUnavailable indicates an underlying snapshot read failed.
	ErrSourceUnavailable = errors.New("snapshot source unavailable")

	// ErrLockFailure indicates shared or exclusive access to cache state
	// could not be obtained. Fatal for the failing call only; cached
	// values remain intact.
	ErrLockFailure = errors.New("lock acquisition failed")

	// ErrInvalidMetric indicates a query for a metric identifier with no
	// recorded history.
	ErrInvalidMetric = errors.New("unknown metric")
)

// Wrap wraps an error with a message
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// SourceUnavailable marks err as a source read failure for kind.
func SourceUnavailable(kind string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("read %s: %w: %w", kind, ErrSourceUnavailable, err)
}

// InvalidMetric reports a query against an untracked metric.
func InvalidMetric(metric string) error {
	return fmt.Errorf("metric %q: %w", metric, ErrInvalidMetric)
}

// Is checks if an error matches a target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As extracts an error of a specific type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
