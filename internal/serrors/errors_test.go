package serrors

import (
	stderrors "errors"
	"testing"
)

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "context"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Wrapf(nil, "context %d", 1); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := SourceUnavailable("cpu", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestSourceUnavailable(t *testing.T) {
	cause := stderrors.New("read /proc/stat: permission denied")
	err := SourceUnavailable("cpu", cause)

	if !Is(err, ErrSourceUnavailable) {
		t.Error("expected error to match ErrSourceUnavailable")
	}
	if !Is(err, cause) {
		t.Error("expected error to wrap the original cause")
	}
}

func TestInvalidMetric(t *testing.T) {
	err := InvalidMetric("gpu")

	if !Is(err, ErrInvalidMetric) {
		t.Error("expected error to match ErrInvalidMetric")
	}
	if got := err.Error(); got != `metric "gpu": unknown metric` {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestWrapPreservesTarget(t *testing.T) {
	err := Wrap(ErrLockFailure, "refreshing cpu slot")

	if !Is(err, ErrLockFailure) {
		t.Error("expected wrapped error to match ErrLockFailure")
	}
}
