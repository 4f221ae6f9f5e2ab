package timezone

import (
	"errors"
	"fmt"
	"time"
)

// Layouts accepted at the local-time boundary. Everything past this
// package operates on absolute instants only.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	// ErrInvalidTimezone signals an unrecognised IANA identifier.
	ErrInvalidTimezone = errors.New("invalid timezone identifier")
	// ErrInvalidTime signals an unparseable date or wall-clock value.
	ErrInvalidTime = errors.New("invalid date or time")
	// ErrNonExistentLocalTime signals a wall clock skipped by a DST
	// spring-forward transition.
	ErrNonExistentLocalTime = errors.New("local time does not exist")
)

// ToInstant converts a local date and wall clock in the given zone to
// an absolute instant. During a fall-back transition where the wall
// clock maps to two instants, the earlier one is returned; during a
// spring-forward gap it fails with ErrNonExistentLocalTime.
func ToInstant(date, clock, tzID string) (time.Time, error) {
	loc, err := LoadZone(tzID)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d, h, min, err := parseLocal(date, clock)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(y, mo, d, h, min, 0, 0, loc)
	if !sameWall(t, y, mo, d, h, min) {
		return time.Time{}, fmt.Errorf("%w: %s %s in %s", ErrNonExistentLocalTime, date, clock, tzID)
	}

	// A fall-back transition can leave a second, earlier instant with
	// the same wall clock. Prefer the earlier one so the choice is
	// deterministic. DST shifts are one hour almost everywhere, thirty
	// minutes in a handful of zones.
	for _, shift := range []time.Duration{time.Hour, 30 * time.Minute} {
		if cand := t.Add(-shift); sameWall(cand.In(loc), y, mo, d, h, min) {
			return cand, nil
		}
	}
	return t, nil
}

// ToInstantForward behaves like ToInstant but rolls a nonexistent wall
// clock forward to the next valid instant instead of failing. Used when
// expanding daily preference templates across a DST gap.
func ToInstantForward(date, clock, tzID string) (time.Time, error) {
	t, err := ToInstant(date, clock, tzID)
	if err == nil || !errors.Is(err, ErrNonExistentLocalTime) {
		return t, err
	}
	loc, err := LoadZone(tzID)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d, h, min, err := parseLocal(date, clock)
	if err != nil {
		return time.Time{}, err
	}
	// time.Date normalises a skipped wall clock past the gap.
	return time.Date(y, mo, d, h, min, 0, 0, loc), nil
}

// FromInstant is the inverse of ToInstant: it renders an absolute
// instant as a local date and wall clock in the given zone.
func FromInstant(instant time.Time, tzID string) (date, clock string, err error) {
	loc, err := LoadZone(tzID)
	if err != nil {
		return "", "", err
	}
	local := instant.In(loc)
	return local.Format(DateLayout), local.Format(ClockLayout), nil
}

// LoadZone resolves an IANA identifier, mapping failures onto
// ErrInvalidTimezone. An empty identifier means UTC.
func LoadZone(tzID string) (*time.Location, error) {
	if tzID == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, tzID)
	}
	return loc, nil
}

func parseLocal(date, clock string) (y int, mo time.Month, d, h, min int, err error) {
	dv, derr := time.Parse(DateLayout, date)
	if derr != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("%w: date %q", ErrInvalidTime, date)
	}
	cv, cerr := time.Parse(ClockLayout, clock)
	if cerr != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("%w: time %q", ErrInvalidTime, clock)
	}
	return dv.Year(), dv.Month(), dv.Day(), cv.Hour(), cv.Minute(), nil
}

func sameWall(t time.Time, y int, mo time.Month, d, h, min int) bool {
	ty, tmo, td := t.Date()
	return ty == y && tmo == mo && td == d && t.Hour() == h && t.Minute() == min
}
