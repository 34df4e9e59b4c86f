package commit

import "time"

// timestampLayout is fixed-width and UTC so that lexicographic comparison
// of two Timestamp values coincides with chronological comparison. The
// source this package is derived from stringified whatever the VCS and the
// wall clock handed it and sorted on that; this format is a deliberate
// strengthening to make that sort always correct.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Timestamp is a lexicographically sortable point in time, always UTC.
type Timestamp string

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UTC().Format(timestampLayout))
}

// NewTimestamp converts t to a Timestamp, normalizing to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(timestampLayout))
}

// Time parses the timestamp back into a time.Time.
func (t Timestamp) Time() (time.Time, error) {
	return time.Parse(timestampLayout, string(t))
}

// Before reports whether t chronologically precedes other. Because the
// layout is fixed-width and UTC, this is equivalent to (and implemented as)
// a plain string comparison.
func (t Timestamp) Before(other Timestamp) bool {
	return string(t) < string(other)
}
