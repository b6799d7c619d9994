package metadata

import (
	"github.com/djherbis/times"
)

// StatTimes reads file-system times with djherbis/times. It stands in for
// exiftool's File: group when exiftool is unavailable.
type StatTimes struct{}

func (StatTimes) FileTimes(path string) ([]RawValue, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return nil, err
	}
	out := []RawValue{
		{Backend: "fs", Field: "mtime", Value: ts.ModTime()},
		{Backend: "fs", Field: "atime", Value: ts.AccessTime()},
	}
	if ts.HasChangeTime() {
		out = append(out, RawValue{Backend: "fs", Field: "ctime", Value: ts.ChangeTime()})
	}
	if ts.HasBirthTime() {
		out = append(out, RawValue{Backend: "fs", Field: "btime", Value: ts.BirthTime()})
	}
	return out, nil
}

var _ FileTimesReader = StatTimes{}
