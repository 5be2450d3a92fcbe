package viserio

import (
	"errors"
	"fmt"
)

// ErrNoEntries matches any *NoEntriesError via errors.Is.
var ErrNoEntries = errors.New("no valid entries found in MRT notes")

// NoEntriesError is returned when a note yields nothing to encode, either
// because no line parsed or because every entry lacked spell metadata.
type NoEntriesError struct {
	Parsed  int
	Skipped int
}

func (e *NoEntriesError) Error() string {
	if e.Parsed == 0 {
		return ErrNoEntries.Error()
	}
	return fmt.Sprintf("%s: all %d parsed entries lack spell metadata", ErrNoEntries.Error(), e.Skipped)
}

func (e *NoEntriesError) Is(target error) bool {
	return target == ErrNoEntries
}
