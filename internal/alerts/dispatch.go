package alerts

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/jonathan/dropwatch/internal/types"
)

// Transport delivers one message chunk. Implementations make a single attempt.
type Transport interface {
	Send(ctx context.Context, content string) error
	Name() string
}

// DispatchResult summarizes one dispatch.
type DispatchResult struct {
	Events    int
	Chunks    int
	Delivered int
	Failed    int
	Errors    []error
}

// Dispatcher renders, batches, and delivers events.
type Dispatcher struct {
	formatter *Formatter
	transport Transport
	budget    int
	verbose   bool
}

// DispatcherConfig holds configuration for a Dispatcher.
type DispatcherConfig struct {
	Currency    string
	ChunkBudget int
	Verbose     bool
}

// NewDispatcher creates a Dispatcher that sends through transport.
func NewDispatcher(transport Transport, cfg DispatcherConfig) *Dispatcher {
	budget := cfg.ChunkBudget
	if budget <= 0 {
		budget = DefaultChunkBudget
	}
	return &Dispatcher{
		formatter: NewFormatter(cfg.Currency),
		transport: transport,
		budget:    budget,
		verbose:   cfg.Verbose,
	}
}

// Dispatch delivers events in priority order. Each chunk gets exactly one attempt;
// failures are logged and counted, never retried, and never returned as fatal.
func (d *Dispatcher) Dispatch(ctx context.Context, events []types.AlertEvent) DispatchResult {
	result := DispatchResult{Events: len(events)}
	if len(events) == 0 {
		return result
	}

	chunks := Chunk(d.formatter.RenderAll(events), d.budget)
	result.Chunks = len(chunks)

	for i, chunk := range chunks {
		if err := d.transport.Send(ctx, chunk); err != nil {
			log.Printf("[ALERTS] Chunk %d/%d via %s failed: %v", i+1, len(chunks), d.transport.Name(), err)
			result.Failed++
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Delivered++
		if d.verbose {
			log.Printf("[ALERTS] Chunk %d/%d delivered via %s (%d chars)", i+1, len(chunks), d.transport.Name(), utf8.RuneCountInString(chunk))
		}
	}
	return result
}
