package timestamp

import (
	"fmt"
	"time"
)

// LoadZone resolves an IANA zone name. An empty name means DefaultZone.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading reference timezone %q: %w", name, err)
	}
	return loc, nil
}

// resolveLocal attaches loc to a wall reading. ok is false when the reading
// does not exist in loc (spring-forward gap) or maps to two instants
// (fall-back fold).
func resolveLocal(wall Timestamp, loc *time.Location) (time.Time, bool) {
	t := wall.In(loc)
	if !sameClock(t, wall) {
		return t, false
	}
	_, off := t.Zone()
	civilSecs := wall.wall.Unix()
	for _, probe := range []time.Duration{-12 * time.Hour, 12 * time.Hour} {
		_, other := t.Add(probe).Zone()
		if other == off {
			continue
		}
		u := time.Unix(civilSecs-int64(other), int64(wall.wall.Nanosecond())).In(loc)
		if _, uoff := u.Zone(); uoff == other && sameClock(u, wall) {
			return t, false
		}
	}
	return t, true
}

func sameClock(t time.Time, wall Timestamp) bool {
	return FromWall(t).Equal(wall)
}
