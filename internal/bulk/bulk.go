// Package bulk runs an operation over an ordered list of items and collects
// per-item outcomes.
package bulk

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Operation represents a bulk operation configuration
type Operation struct {
	// Logger receives one entry per item. Nil disables logging.
	Logger *zap.Logger
}

// Result represents the result of a bulk operation
type Result struct {
	TotalItems int
	Attempted  int
	Succeeded  int
	Failed     int
	Errors     []ItemError
}

// ItemError represents an error for a specific item
type ItemError struct {
	Index int
	Item  string
	Error error
}

// Run applies fn to items one at a time, in order, and stops at the first
// failure; later items are not attempted. label names an item in logs and
// errors.
func Run[T any](op Operation, items []T, label func(T) string, fn func(T) error) *Result {
	result := &Result{
		TotalItems: len(items),
	}

	logger := op.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for i, item := range items {
		name := label(item)
		result.Attempted++

		if err := fn(item); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ItemError{
				Index: i,
				Item:  name,
				Error: err,
			})
			logger.Debug("item failed", zap.Int("index", i), zap.String("item", name), zap.Error(err))
			return result
		}

		result.Succeeded++
		logger.Debug("item done", zap.Int("index", i), zap.String("item", name))
	}

	return result
}

// Skipped is the number of items never attempted.
func (r *Result) Skipped() int {
	return r.TotalItems - r.Attempted
}

// PrintSummary prints a human-readable summary of the result
func (r *Result) PrintSummary(w io.Writer) {
	if r.Failed == 0 {
		fmt.Fprintf(w, "✓ All %d transfers succeeded\n", r.TotalItems)
	} else if r.Succeeded == 0 {
		fmt.Fprintf(w, "✗ %d of %d transfers failed, %d skipped\n", r.Failed, r.TotalItems, r.Skipped())
	} else {
		fmt.Fprintf(w, "⚠ Partial success: %d succeeded, %d failed, %d skipped (out of %d)\n",
			r.Succeeded, r.Failed, r.Skipped(), r.TotalItems)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s: %v\n", e.Item, e.Error)
		}
	}
}
