package alerts

import (
	"context"
	"fmt"
	"io"
)

// WriterTransport prints chunks, used when no webhook is configured.
type WriterTransport struct {
	out io.Writer
}

// NewWriterTransport creates a transport writing to out.
func NewWriterTransport(out io.Writer) *WriterTransport {
	return &WriterTransport{out: out}
}

// Name identifies the transport.
func (t *WriterTransport) Name() string {
	return "stdout"
}

// Send writes content followed by a blank line.
func (t *WriterTransport) Send(_ context.Context, content string) error {
	if _, err := fmt.Fprintf(t.out, "%s\n\n", content); err != nil {
		return &DeliveryError{Transport: t.Name(), Message: "write failed", Cause: err}
	}
	return nil
}
