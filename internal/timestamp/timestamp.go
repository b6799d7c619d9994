// Package timestamp turns raw metadata values into capture timestamps
// expressed in the archive's reference timezone.
package timestamp

import (
	"time"
	_ "time/tzdata" // reference zones must resolve on hosts without zoneinfo
)

// Timestamp is a civil wall-clock time with no zone attached. The value is
// the capture instant as it reads on a clock in the reference timezone.
// The zero Timestamp is not a valid capture time.
type Timestamp struct {
	wall time.Time // always UTC; only the clock fields are meaningful
}

// Civil builds a Timestamp from clock fields.
func Civil(year int, month time.Month, day, hour, min, sec, nsec int) Timestamp {
	return Timestamp{wall: time.Date(year, month, day, hour, min, sec, nsec, time.UTC)}
}

// FromWall keeps the clock reading of t and discards its location.
func FromWall(t time.Time) Timestamp {
	return Civil(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

func (t Timestamp) IsZero() bool           { return t.wall.IsZero() }
func (t Timestamp) Before(u Timestamp) bool { return t.wall.Before(u.wall) }
func (t Timestamp) After(u Timestamp) bool  { return t.wall.After(u.wall) }
func (t Timestamp) Equal(u Timestamp) bool  { return t.wall.Equal(u.wall) }

// Add returns t shifted by d on the civil clock.
func (t Timestamp) Add(d time.Duration) Timestamp { return Timestamp{wall: t.wall.Add(d)} }

// Format formats the clock fields using a time package layout. Zone
// verbs in layout render as UTC and should not be used.
func (t Timestamp) Format(layout string) string { return t.wall.Format(layout) }

// In attaches loc to the clock reading. Wall times that fall into a DST gap
// are normalized by the time package.
func (t Timestamp) In(loc *time.Location) time.Time {
	w := t.wall
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc)
}

// key identifies equal timestamps inside a CandidateSet.
func (t Timestamp) key() int64 { return t.wall.UnixNano() }

// String renders the EXIF style "2006:01:02 15:04:05".
func (t Timestamp) String() string { return t.wall.Format(exifLayout) }

const exifLayout = "2006:01:02 15:04:05"
