// File: timex.go
// Title: Timestamp and Clock-Duration Utilities
// Description: Implements the textual timestamp codecs used by the rollcall
//              record files, the colon-separated clock-duration parser, and
//              the fixed nine-hour reference-time shift that links the two
//              stored timestamp representations.

package timex

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/softusing/rollcall/pkg/errorx"
)

// ReferenceShift is the fixed offset between local time and the stored
// reference time: reference = local + 9h. This is a bookkeeping convention
// of the record files, not a timezone conversion.
const ReferenceShift = 9 * time.Hour

// Codec parses and formats textual timestamps. The caller picks the codec
// that matches the convention of the file being written; parsing is
// format-tolerant regardless of the codec chosen for output.
type Codec interface {
	// Parse parses a textual timestamp. Empty input is an error.
	Parse(s string) (time.Time, error)

	// Format renders a timestamp in the codec's output convention.
	// Seconds are dropped; the files carry minute granularity only.
	Format(t time.Time) string
}

// Slash is the codec for the "YYYY/M/D H:MM" convention: no zero-padding
// on year, month, day or hour, zero-padded minute.
type Slash struct{}

// Dash is the codec for the "YYYY-MM-DD HH:MM" convention.
type Dash struct{}

// Layouts accepted on input, in trial order. All four conventions occur in
// the record files, with and without a seconds field.
var parseLayouts = []string{
	"2006/1/2 15:04",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses any of the accepted timestamp conventions.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errorx.New("empty timestamp").
			WithCode(errorx.CodeInvalidFormat).
			WithOperation("timex.ParseTimestamp")
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errorx.Newf("unparsable timestamp: %s", s).
		WithCode(errorx.CodeInvalidFormat).
		WithOperation("timex.ParseTimestamp")
}

// Parse implements Codec.
func (Slash) Parse(s string) (time.Time, error) { return ParseTimestamp(s) }

// Format implements Codec.
func (Slash) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d %d:%02d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// Parse implements Codec.
func (Dash) Parse(s string) (time.Time, error) { return ParseTimestamp(s) }

// Format implements Codec.
func (Dash) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// CodecFor returns the codec registered under the given name.
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "slash":
		return Slash{}, nil
	case "dash", "iso":
		return Dash{}, nil
	default:
		return nil, errorx.Newf("unknown timestamp codec: %s", name).
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("timex.CodecFor")
	}
}

// ParseClock parses a colon-separated clock string ("H:MM:SS" or "MM:SS")
// into fractional minutes.
func ParseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errorx.New("empty clock string").
			WithCode(errorx.CodeInvalidFormat).
			WithOperation("timex.ParseClock")
	}
	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, errorx.Newf("unparsable clock string: %s", s).
				WithCode(errorx.CodeInvalidFormat).
				WithOperation("timex.ParseClock")
		}
		nums[i] = n
	}
	switch len(nums) {
	case 3:
		return float64(nums[0])*60 + float64(nums[1]) + float64(nums[2])/60, nil
	case 2:
		return float64(nums[0]) + float64(nums[1])/60, nil
	default:
		return 0, errorx.Newf("unparsable clock string: %s", s).
			WithCode(errorx.CodeInvalidFormat).
			WithOperation("timex.ParseClock")
	}
}

// ParseClockOrZero parses a clock string, degrading malformed or empty
// input to zero minutes. Zero-duration records still occupy a sequence
// slot but carry no watch time.
func ParseClockOrZero(s string) float64 {
	minutes, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return minutes
}

// MinutesToDuration converts fractional minutes to a time.Duration.
func MinutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

// ToReference converts a local timestamp to its stored reference
// representation (local + 9h).
func ToReference(local time.Time) time.Time {
	return local.Add(ReferenceShift)
}

// ToLocal converts a stored reference timestamp back to local time
// (reference - 9h).
func ToLocal(reference time.Time) time.Time {
	return reference.Add(-ReferenceShift)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// At returns t's calendar date combined with the given wall-clock time.
func At(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// DayFraction returns the hour-of-day fraction of t (hour + minute/60),
// the quantity the heuristic placement rule branches on.
func DayFraction(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}
