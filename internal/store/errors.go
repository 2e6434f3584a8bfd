package store

import (
	"errors"
	"fmt"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

// ErrNotFound reports that a backend holds no object for the requested
// (name, period) address. Backends translate their native miss (HTTP
// 404, storage.ErrObjectNotExist) into this sentinel.
var ErrNotFound = errors.New("not found")

// MissingInputError aborts a period's run because a required source
// dataset is absent. It never stands in for an empty dataset.
type MissingInputError struct {
	Name   string
	Period domain.Period
	Err    error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input %s: %v", Address(e.Name, e.Period), e.Err)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// Is reports ErrNotFound so callers can match the condition without
// knowing which backend raised it.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrNotFound
}

// SinkFailureError reports a failed export of one table to one sink.
// It is fatal for that table only; remaining exports still run.
type SinkFailureError struct {
	Sink   string
	Name   string
	Period domain.Period
	Err    error
}

func (e *SinkFailureError) Error() string {
	return fmt.Sprintf("sink %s: store %s: %v", e.Sink, Address(e.Name, e.Period), e.Err)
}

func (e *SinkFailureError) Unwrap() error { return e.Err }
