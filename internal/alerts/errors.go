// Package alerts renders alert events into messages, orders them by priority,
// batches them under a size budget, and hands each batch to a transport.
package alerts

import "fmt"

// DeliveryError represents a failed delivery attempt for one message chunk
type DeliveryError struct {
	Transport  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delivery error via %s: %s: %v", e.Transport, e.Message, e.Cause)
	}
	return fmt.Sprintf("delivery error via %s: %s", e.Transport, e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}
