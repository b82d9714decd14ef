// Package history records executed query statements in a local SQLite
// database next to the index. Nothing leaves the machine.
package history

import (
	"time"
)

// Kind classifies a recorded statement.
type Kind string

const (
	KindExpression Kind = "expression"
	KindAssign     Kind = "assign"
	KindFunction   Kind = "function"
)

// LatencyBucket is a latency histogram bucket.
type LatencyBucket string

const (
	BucketP1    LatencyBucket = "p1"    // <1ms
	BucketP10   LatencyBucket = "p10"   // 1-10ms
	BucketP100  LatencyBucket = "p100"  // 10-100ms
	BucketP1000 LatencyBucket = "p1000" // 100ms-1s
	BucketSlow  LatencyBucket = "slow"  // >=1s
)

// Buckets lists the latency buckets from fastest to slowest.
var Buckets = []LatencyBucket{BucketP1, BucketP10, BucketP100, BucketP1000, BucketSlow}

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch {
	case d < time.Millisecond:
		return BucketP1
	case d < 10*time.Millisecond:
		return BucketP10
	case d < 100*time.Millisecond:
		return BucketP100
	case d < time.Second:
		return BucketP1000
	default:
		return BucketSlow
	}
}

// Event is one executed statement.
type Event struct {
	Statement string
	Kind      Kind

	// Words are the indexed words the statement referenced.
	Words []string

	// Results is the number of matching pages, or -1 when the statement
	// displayed nothing.
	Results int

	Latency time.Duration
	Err     string
	Time    time.Time
}

// IsZeroResult reports whether the statement matched no pages.
func (e Event) IsZeroResult() bool { return e.Results == 0 }

// Entry is a stored statement.
type Entry struct {
	ID        int64
	Statement string
	Kind      Kind
	Results   int
	LatencyMS int64
	Err       string
	Time      time.Time
}

// WordCount is how often a word was referenced.
type WordCount struct {
	Word  string
	Count int64
}

// Summary aggregates the whole history.
type Summary struct {
	Statements  int64
	ZeroResults int64
	Errors      int64
	FirstSeen   time.Time
	LastSeen    time.Time
}
