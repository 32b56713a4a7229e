// Package zone computes wall-clock times and offsets between timezones.
//
// Timezone identifiers are IANA names ("Asia/Manila") or custom fixed
// offsets ("UTC+5:30", "GMT-3"). Everything DST-related is delegated to the
// platform timezone database through time.LoadLocation.
package zone

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	// Embedded database so resolution does not depend on the host.
	_ "time/tzdata"
)

var ErrEmptyTimezone = errors.New("timezone is empty")

// InvalidTimezoneError is returned for identifiers that neither resolve in
// the timezone database nor parse as a fixed UTC/GMT offset.
type InvalidTimezoneError struct {
	ID  string
	Err error
}

func (e InvalidTimezoneError) Error() string {
	return fmt.Sprintf("invalid timezone: %s", e.ID)
}

func (e InvalidTimezoneError) Unwrap() error { return e.Err }

// Validate reports whether id can be resolved to a location.
func Validate(id string) error {
	_, err := Resolve(id)
	return err
}

// Resolve maps a timezone identifier to a location.
func Resolve(id string) (*time.Location, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyTimezone
	}
	if loc, ok := parseFixed(id); ok {
		return loc, nil
	}
	// LoadLocation maps "Local" to the host zone, which is not a portable
	// identifier for a colleague.
	if strings.EqualFold(id, "local") {
		return nil, InvalidTimezoneError{ID: id}
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, InvalidTimezoneError{ID: id, Err: err}
	}
	return loc, nil
}

// parseFixed accepts UTC, GMT, UTC+H, UTC-H, UTC+H:MM, UTC+HHMM (and the GMT forms).
func parseFixed(id string) (*time.Location, bool) {
	up := strings.ToUpper(id)
	var rest string
	switch {
	case strings.HasPrefix(up, "UTC"):
		rest = up[3:]
	case strings.HasPrefix(up, "GMT"):
		rest = up[3:]
	default:
		return nil, false
	}
	if rest == "" {
		return time.FixedZone(up, 0), true
	}
	sign := 1
	switch rest[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, false
	}
	rest = rest[1:]

	var hh, mm string
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		hh, mm = rest[:i], rest[i+1:]
	} else if len(rest) == 4 {
		hh, mm = rest[:2], rest[2:]
	} else {
		hh = rest
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 14 || hh == "" {
		return nil, false
	}
	m := 0
	if mm != "" {
		m, err = strconv.Atoi(mm)
		if err != nil || m < 0 || m > 59 || len(mm) != 2 {
			return nil, false
		}
	}
	secs := sign * (h*3600 + m*60)
	return time.FixedZone(id, secs), true
}

// Offset returns target's wall clock minus reference's wall clock at now, in
// hours. Positive means target is ahead.
func Offset(target, reference string, now time.Time) (float64, error) {
	tl, err := Resolve(target)
	if err != nil {
		return 0, err
	}
	rl, err := Resolve(reference)
	if err != nil {
		return 0, err
	}
	_, to := now.In(tl).Zone()
	_, ro := now.In(rl).Zone()
	return float64(to-ro) / 3600, nil
}

// FormatOffset renders an offset in hours as "1 hr ahead", "3 hrs behind"
// or "2h 30m behind". Zero counts as ahead.
func FormatOffset(hours float64) string {
	dir := "ahead"
	if hours < 0 {
		dir = "behind"
	}
	abs := math.Abs(hours)
	whole := int(math.Floor(abs))
	minutes := int(math.Round((abs - float64(whole)) * 60))
	if minutes == 60 {
		whole++
		minutes = 0
	}
	if minutes == 0 {
		unit := "hrs"
		if whole == 1 {
			unit = "hr"
		}
		return fmt.Sprintf("%d %s %s", whole, unit, dir)
	}
	return fmt.Sprintf("%dh %dm %s", whole, minutes, dir)
}

// Clock layouts: 12-hour with two-digit hour and minute.
const (
	ClockLayout        = "03:04 PM"
	ClockLayoutSeconds = "03:04:05 PM"
)

// LocalTime renders now in tz as a 12-hour "03:04 PM" clock.
func LocalTime(tz string, now time.Time) (string, error) {
	return FormatLocal(tz, now, ClockLayout)
}

func FormatLocal(tz string, now time.Time, layout string) (string, error) {
	loc, err := Resolve(tz)
	if err != nil {
		return "", err
	}
	return now.In(loc).Format(layout), nil
}
