package timestamp

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotTimestamp marks values that are empty, not textual, or carry the
	// all-zero null date.
	ErrNotTimestamp = errors.New("not a timestamp")
	// ErrUnparseable marks text that matches no known date grammar.
	ErrUnparseable = errors.New("unparseable timestamp")
	// ErrOutOfRange marks timestamps outside [1970-01-01, now+window].
	ErrOutOfRange = errors.New("timestamp out of range")
)

// DefaultZone is the reference timezone of the archive.
const DefaultZone = "Asia/Tokyo"

// DefaultFutureWindow is how far past "now" a capture time may lie.
const DefaultFutureWindow = 365 * 24 * time.Hour

var (
	disallowedChars = regexp.MustCompile(`[^0-9:/\-T Z+.]`)
	longFraction    = regexp.MustCompile(`\.(\d{6})\d+`)
	compactOffset   = regexp.MustCompile(`([+\-])(\d{2})(\d{2})$`)
	trailingOffset  = regexp.MustCompile(`([+\-]\d{2}:?\d{2}|Z)\s*$`)
)

var nullDates = []string{"0000:00:00", "0000-00-00"}

// isoLayouts are tried after the input has been massaged into extended
// ISO-8601 form. aware marks layouts that carry an offset.
var isoLayouts = []struct {
	layout string
	aware  bool
}{
	{"2006-01-02T15:04:05Z07:00", true},
	{"2006-01-02T15:04Z07:00", true},
	{"2006-01-02T15:04:05Z07", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02T15", false},
	{"2006-01-02", false},
	{"20060102T150405Z07:00", true},
	{"20060102T150405", false},
	{"20060102", false},
}

// fallbackLayouts cover the EXIF, dash, slash and undelimited conventions.
// Fractional seconds are cut before these are tried.
var fallbackLayouts = []string{
	"2006:1:2 15:4:5",
	"2006-1-2 15:4:5",
	"2006/1/2 15:4:5",
	"20060102 150405",
}

var minTimestamp = Civil(1970, time.January, 1, 0, 0, 0, 0)

// Normalizer parses raw metadata values into Timestamps in a fixed zone.
type Normalizer struct {
	zone           *time.Location
	clock          Clock
	window         time.Duration
	lenientOffsets bool
	log            *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock sets the clock used for the upper range bound.
func WithClock(c Clock) Option { return func(n *Normalizer) { n.clock = c } }

// WithFutureWindow sets how far into the future a timestamp may be.
func WithFutureWindow(d time.Duration) Option { return func(n *Normalizer) { n.window = d } }

// WithLenientOffsets controls what happens to an unparseable trailing offset
// token: when true the value is read as reference-local, otherwise rejected.
func WithLenientOffsets(on bool) Option { return func(n *Normalizer) { n.lenientOffsets = on } }

// WithLogger sets the logger used for fold and offset warnings.
func WithLogger(l *slog.Logger) Option { return func(n *Normalizer) { n.log = l } }

// NewNormalizer returns a Normalizer for the given reference zone.
func NewNormalizer(zone *time.Location, opts ...Option) *Normalizer {
	n := &Normalizer{
		zone:           zone,
		clock:          RealClock{},
		window:         DefaultFutureWindow,
		lenientOffsets: true,
		log:            slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.zone == nil {
		n.zone = time.UTC
	}
	return n
}

// Zone returns the reference timezone.
func (n *Normalizer) Zone() *time.Location { return n.zone }

// Normalize accepts a string, a raw byte value or an already typed time.
func (n *Normalizer) Normalize(v any) (Timestamp, error) {
	switch val := v.(type) {
	case string:
		return n.NormalizeString(val)
	case []byte:
		return n.NormalizeString(DecodeBytes(val))
	case time.Time:
		if val.IsZero() {
			return Timestamp{}, ErrNotTimestamp
		}
		return n.checkRange(FromWall(val.In(n.zone)), val.String())
	case nil:
		return Timestamp{}, ErrNotTimestamp
	default:
		return Timestamp{}, fmt.Errorf("%w: %T value", ErrNotTimestamp, v)
	}
}

// NormalizeString parses one textual timestamp of unknown format.
func (n *Normalizer) NormalizeString(raw string) (Timestamp, error) {
	if strings.TrimSpace(raw) == "" {
		return Timestamp{}, ErrNotTimestamp
	}
	for _, null := range nullDates {
		if strings.Contains(raw, null) {
			return Timestamp{}, fmt.Errorf("%w: null date %q", ErrNotTimestamp, raw)
		}
	}

	s := strings.TrimSpace(disallowedChars.ReplaceAllString(raw, " "))

	if t, aware, ok := parseISO(s); ok {
		if aware {
			return n.checkRange(FromWall(t.In(n.zone)), raw)
		}
		return n.checkRange(n.assumeLocal(FromWall(t)), raw)
	}

	wall, token, ok := parseFallback(s)
	if !ok {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}
	if token == "" {
		return n.checkRange(n.assumeLocal(wall), raw)
	}

	offset, err := parseOffset(token)
	if err != nil {
		if !n.lenientOffsets {
			return Timestamp{}, fmt.Errorf("%w: %q: %v", ErrUnparseable, raw, err)
		}
		n.log.Warn("unparseable offset, assuming reference-local", "value", raw, "offset", token)
		return n.checkRange(n.assumeLocal(wall), raw)
	}
	aware := wall.In(time.FixedZone(token, offset))
	return n.checkRange(FromWall(aware.In(n.zone)), raw)
}

// assumeLocal reads wall as reference-zone local time. A reading that is
// ambiguous or skipped by a DST transition is kept as the bare civil value.
func (n *Normalizer) assumeLocal(wall Timestamp) Timestamp {
	if _, ok := resolveLocal(wall, n.zone); !ok {
		n.log.Warn("ambiguous or nonexistent local time, keeping civil value",
			"value", wall.String(), "zone", n.zone.String())
	}
	return wall
}

func (n *Normalizer) checkRange(ts Timestamp, raw string) (Timestamp, error) {
	upper := FromWall(n.clock.Now().In(n.zone)).Add(n.window)
	if ts.Before(minTimestamp) || ts.After(upper) {
		return Timestamp{}, fmt.Errorf("%w: %q -> %s", ErrOutOfRange, raw, ts)
	}
	return ts, nil
}

// parseISO handles the extended ISO-8601 family. A space is accepted in
// place of T, sub-second precision beyond microseconds is dropped, a trailing
// Z becomes +00:00 and a four digit offset gets its colon.
func parseISO(s string) (time.Time, bool, bool) {
	iso := strings.ReplaceAll(s, " ", "T")
	iso = longFraction.ReplaceAllString(iso, ".$1")
	if strings.HasSuffix(iso, "Z") {
		iso = strings.TrimSuffix(iso, "Z") + "+00:00"
	}
	iso = compactOffset.ReplaceAllString(iso, "$1$2:$3")

	for _, l := range isoLayouts {
		if t, err := time.Parse(l.layout, iso); err == nil {
			return t, l.aware, true
		}
	}
	return time.Time{}, false, false
}

// parseFallback strips a trailing offset looking token, then tries the fixed
// layout list. The token is returned unparsed.
func parseFallback(s string) (Timestamp, string, bool) {
	cleaned := strings.TrimSpace(s)
	var token string
	if m := trailingOffset.FindStringSubmatchIndex(cleaned); m != nil {
		token = cleaned[m[2]:m[3]]
		cleaned = strings.TrimSpace(cleaned[:m[0]])
	}
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		cleaned = cleaned[:i]
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return FromWall(t), token, true
		}
	}
	return Timestamp{}, "", false
}

// parseOffset converts "Z", "+HH:MM" or "+HHMM" into seconds east of UTC.
func parseOffset(token string) (int, error) {
	if token == "Z" {
		return 0, nil
	}
	if len(token) < 5 {
		return 0, fmt.Errorf("offset %q: too short", token)
	}
	sign := 1
	switch token[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("offset %q: missing sign", token)
	}
	digits := strings.ReplaceAll(token[1:], ":", "")
	if len(digits) != 4 {
		return 0, fmt.Errorf("offset %q: malformed", token)
	}
	hh, err := strconv.Atoi(digits[:2])
	if err != nil {
		return 0, fmt.Errorf("offset %q: %w", token, err)
	}
	mm, err := strconv.Atoi(digits[2:])
	if err != nil {
		return 0, fmt.Errorf("offset %q: %w", token, err)
	}
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("offset %q: out of range", token)
	}
	return sign * (hh*3600 + mm*60), nil
}
