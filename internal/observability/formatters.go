// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonathan/dropwatch/internal/monitor"
	"github.com/jonathan/dropwatch/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// titleWidth caps the title column of the items table
	titleWidth = 48
)

// kindOrder lists alert kinds in delivery priority.
var kindOrder = []types.AlertKind{
	types.AlertUltraRareSignal,
	types.AlertInStockFlip,
	types.AlertPriceChange,
	types.AlertNewListing,
	types.AlertExclusivityDetected,
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintRunSummary outputs per-target results and alert counts for one run.
func (p *Printer) PrintRunSummary(s *monitor.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", s.RunID))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", s.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Targets:  %d checked, %d failed\n", len(s.Targets), s.TargetsFailed()))
	sb.WriteString(fmt.Sprintf("Items:    %d candidates, %d product pages, %d skipped\n",
		s.Candidates(), s.DetailFetches(), s.DetailSkips()))
	sb.WriteString("\n")

	for _, t := range s.Targets {
		if t.Failed {
			sb.WriteString(fmt.Sprintf("✗ %s\n", t.Name))
			continue
		}
		marker := "•"
		if t.DigestChanged {
			marker = "Δ"
		}
		sb.WriteString(fmt.Sprintf("%s %s: %d seen, %d new\n", marker, t.Name, t.Candidates, t.NewItems))
	}

	counts := s.AlertCounts()
	if len(s.Events) > 0 {
		sb.WriteString("\nAlerts:\n")
		for _, kind := range kindOrder {
			if n := counts[kind]; n > 0 {
				sb.WriteString(fmt.Sprintf("  %-22s %d\n", kind, n))
			}
		}
		sb.WriteString(fmt.Sprintf("  chunks %d delivered, %d failed\n", s.Dispatch.Delivered, s.Dispatch.Failed))
	} else {
		sb.WriteString("\nNo alerts\n")
	}

	sb.WriteString("\n")
	if s.StateReset {
		sb.WriteString("⚠ prior state unreadable, started fresh\n")
	}
	sb.WriteString(fmt.Sprintf("State: %d tracked, %d evicted, saved: %t", s.Tracked, s.Evicted, s.StateSaved))

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintItems outputs the most recently seen tracked items as a table.
func (p *Printer) PrintItems(items []types.ItemRecord, limit int) {
	if len(items) == 0 {
		p.printBox("TRACKED ITEMS", "No items tracked yet")
		return
	}
	if limit <= 0 {
		limit = maxItemsToShow
	}

	_, _ = fmt.Fprintf(p.out, "\nTRACKED ITEMS\nTracked items: %d\n", len(items))

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Title", "Source", "Last seen", "Stock", "Price", "LE"})

	count := min(len(items), limit)
	for _, item := range items[:count] {
		stock, price, le := "-", "-", "-"
		if item.LastStock != nil {
			stock = string(*item.LastStock)
		}
		if item.LastPriceText != nil {
			price = *item.LastPriceText
		}
		if item.LastLECount != nil {
			le = fmt.Sprintf("%d", *item.LastLECount)
		}
		t.AppendRow(table.Row{
			truncate(item.Title, titleWidth),
			item.Source,
			item.LastSeen.Format("2006-01-02 15:04"),
			stock,
			price,
			le,
		})
	}
	t.Render()

	if len(items) > count {
		_, _ = fmt.Fprintf(p.out, "... and %d more items\n", len(items)-count)
	}
}
