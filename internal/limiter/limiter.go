// Package limiter slices result sets by limit, offset, or tail.
package limiter

import (
	"fmt"
)

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Keep at most this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Keep only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations.
// Limit and Tail are mutually exclusive and all values must be non-negative.
// Offset is ignored when Tail is set.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Bounds returns the half-open range [start, end) selected from a sequence
// of the given length.
func (c Config) Bounds(length int) (int, int) {
	if c.Tail > 0 {
		return max(0, length-c.Tail), length
	}

	start := min(c.Offset, length)
	end := length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}

// Exceeded reports whether a sequence of n records already reaches the limit.
// A zero Limit never reaches it.
func (c Config) Exceeded(n int) bool {
	return c.Limit > 0 && n >= c.Limit
}

// Apply returns the configured window of items. The result shares the
// backing array with items.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}
