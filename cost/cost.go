// Package cost implements the scalar cost algebra every analysis in
// IncludeGuardian accumulates into: a (token-count, byte-size) pair with
// additive and integer-scaling operations.
package cost

import "fmt"

// Cost is a pair of a token count and a byte size. It is the unit every
// analysis in this module accumulates savings and totals into.
//
// Tokens is a 64-bit signed count (a file's preprocessed token count can be
// negative only as an intermediate delta during accounting, never in a
// reported Cost). Bytes is expressed as a floating point number of bytes so
// that downstream formatting can apply human-friendly unit prefixes without
// losing precision on division.
type Cost struct {
	Tokens int64
	Bytes  float64
}

// Zero is the additive identity of the cost algebra.
var Zero = Cost{}

// Add returns the component-wise sum of c and other.
func (c Cost) Add(other Cost) Cost {
	return Cost{Tokens: c.Tokens + other.Tokens, Bytes: c.Bytes + other.Bytes}
}

// Sub returns the component-wise difference of c and other.
func (c Cost) Sub(other Cost) Cost {
	return Cost{Tokens: c.Tokens - other.Tokens, Bytes: c.Bytes - other.Bytes}
}

// Scale returns c scaled by the integer factor k.
func (c Cost) Scale(k int64) Cost {
	return Cost{Tokens: c.Tokens * k, Bytes: c.Bytes * float64(k)}
}

// Equal reports whether c and other are component-wise equal.
func (c Cost) Equal(other Cost) bool {
	return c.Tokens == other.Tokens && c.Bytes == other.Bytes
}

// IsZero reports whether c is the additive identity.
func (c Cost) IsZero() bool {
	return c == Zero
}

// String renders the cost as "<tokens> tokens, <bytes> bytes" using a
// human-friendly byte-size prefix (KiB/MiB/GiB) for readability in reports.
func (c Cost) String() string {
	return fmt.Sprintf("%d tokens, %s", c.Tokens, humanBytes(c.Bytes))
}

func humanBytes(b float64) string {
	const unit = 1024.0
	if b < unit {
		return fmt.Sprintf("%.0fB", b)
	}
	div, exp := unit, 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	prefixes := "KMGTPE"
	return fmt.Sprintf("%.2f%ciB", b/div, prefixes[exp])
}

// Sum adds every cost in costs together, starting from Zero.
func Sum(costs ...Cost) Cost {
	total := Zero
	for _, c := range costs {
		total = total.Add(c)
	}
	return total
}
