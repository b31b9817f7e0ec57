package schema

import (
	"errors"
	"fmt"
)

// ErrNoColumnMatch is returned when no actual column is similar enough to a
// failed column name. The caller must surface the original query error.
var ErrNoColumnMatch = errors.New("no column matches with sufficient confidence")

// PersistenceError reports that a mapping change took effect in memory but
// could not be written to the mapping store.
type PersistenceError struct {
	Source string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist column mapping for %s: %v", e.Source, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
