// Package state persists item and target records between runs.
//
// The Store holds one in-memory Snapshot per run. It is read once by Load and
// written once by Save; a Backend decides where the snapshot lives.
package state

import "fmt"

// LoadError reports that prior state could not be read. The store holds an empty
// snapshot when Load returns it. Only a Corrupt error may be continued past; any
// other cause may be transient, and saving over it would discard committed state.
type LoadError struct {
	Source  string
	Message string
	Corrupt bool // Persisted state exists but could not be decoded
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("state load error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("state load error for %s: %s", e.Source, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// SaveError reports a failure to persist state.
type SaveError struct {
	Source  string
	Message string
	Cause   error
}

func (e *SaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("state save error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("state save error for %s: %s", e.Source, e.Message)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
