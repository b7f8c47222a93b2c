// Package listing turns rendered listing pages into deduplicated product candidates.
package listing

import "fmt"

// ExtractionError represents a failure in extracting anchors or resolving links
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("listing extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("listing extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
