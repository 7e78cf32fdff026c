// File: strategy.go
// Title: Slot Placement Strategies
// Description: Implements the two named slot-placement strategies behind a
//              single interface: the strict strategy that re-validates the
//              business windows after every adjustment, and the heuristic
//              strategy that decides on the hour-of-day fraction of the
//              candidate and intentionally skips the final re-check.

package schedule

import (
	"time"

	"github.com/softusing/rollcall/internal/calendar"
	"github.com/softusing/rollcall/internal/timex"
	"github.com/softusing/rollcall/pkg/errorx"
)

// Business-hours template: two work blocks separated by one lunch break.
const (
	DayStartHour   = 9
	LunchStartHour = 12
	LunchEndHour   = 13
	DayEndHour     = 18
)

// Slot is one scheduled (start, end) pair in reference time.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Strategy places a candidate start instant into a valid slot and advances
// the chain cursor after a placed slot. The two implementations diverge on
// purpose; callers pick the one the file convention requires.
type Strategy interface {
	// Name identifies the strategy in configuration and logs.
	Name() string

	// Place returns the slot for a candidate start and a duration in
	// fractional minutes. A zero candidate is a hard error: callers must
	// have produced a valid prior end before asking for a placement.
	Place(candidate time.Time, minutes float64) (Slot, error)

	// Advance computes the next candidate from a placed slot's end and
	// the rest gap that follows it.
	Advance(end time.Time, restMinutes int) (time.Time, error)
}

// StrategyFor returns the strategy registered under the given name.
func StrategyFor(name string, cal *calendar.Calendar, rand IntSource) (Strategy, error) {
	switch name {
	case "", "strict":
		return &Strict{Cal: cal}, nil
	case "heuristic":
		return &Heuristic{Cal: cal, Rand: rand}, nil
	default:
		return nil, errorx.Newf("unknown scheduling strategy: %s", name).
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("schedule.StrategyFor")
	}
}

// Strict is the placement used on the write path of the rollcall files:
// workday relocation, end-of-day rollover and lunch exclusion, each step
// checked against the result of the previous one.
type Strict struct {
	Cal *calendar.Calendar
}

// Name implements Strategy.
func (s *Strict) Name() string { return "strict" }

// Place implements Strategy.
func (s *Strict) Place(candidate time.Time, minutes float64) (Slot, error) {
	if candidate.IsZero() {
		return Slot{}, errorx.New("zero candidate start").
			WithCode(errorx.CodeBadAnchor).
			WithOperation("schedule.Strict.Place")
	}

	start := candidate
	if !s.Cal.IsWorkday(start) {
		day, err := s.Cal.NextWorkday(start)
		if err != nil {
			return Slot{}, err
		}
		start = timex.At(day, DayStartHour, 0)
	}

	dur := timex.MinutesToDuration(minutes)
	end := start.Add(dur)

	// End past 18:00 discards the placement; the slot restarts on the
	// next workday morning. End exactly at 18:00 stands.
	if end.After(timex.At(start, DayEndHour, 0)) {
		day, err := s.Cal.NextWorkday(start)
		if err != nil {
			return Slot{}, err
		}
		start = timex.At(day, DayStartHour, 0)
		end = start.Add(dur)
	}

	// Lunch exclusion: an end strictly inside [12:00, 13:00), or a slot
	// spanning the whole gap, restarts at 13:00. An end exactly at 13:00
	// stands.
	lunchStart := timex.At(start, LunchStartHour, 0)
	lunchEnd := timex.At(start, LunchEndHour, 0)
	if (end.After(lunchStart) && end.Before(lunchEnd)) ||
		(start.Before(lunchStart) && end.After(lunchEnd)) {
		start = lunchEnd
		end = start.Add(dur)
	}

	return Slot{Start: start, End: end}, nil
}

// Advance implements Strategy. The cursor moves past the rest gap, snaps
// out of the lunch window, and rolls to the next workday morning once the
// clock passes 17:30 or lands on a non-workday.
func (s *Strict) Advance(end time.Time, restMinutes int) (time.Time, error) {
	cursor := end.Add(time.Duration(restMinutes) * time.Minute)

	lunchStart := timex.At(cursor, LunchStartHour, 0)
	lunchEnd := timex.At(cursor, LunchEndHour, 0)
	if cursor.After(lunchStart) && cursor.Before(lunchEnd) {
		cursor = lunchEnd
	}

	if cursor.Hour() >= DayEndHour || (cursor.Hour() == 17 && cursor.Minute() > 30) {
		day, err := s.Cal.NextWorkday(cursor)
		if err != nil {
			return time.Time{}, err
		}
		cursor = timex.At(day, DayStartHour, 0)
	}

	if !s.Cal.IsWorkday(cursor) {
		day, err := s.Cal.NextWorkday(cursor)
		if err != nil {
			return time.Time{}, err
		}
		cursor = timex.At(day, DayStartHour, 0)
	}

	return cursor, nil
}

// Heuristic is the continuation placement keyed on the hour-of-day
// fraction of the candidate. It draws jitter from the shared random source
// and does not re-check the resulting end against end-of-day or lunch;
// that relaxation matches the files it regenerates and is not a defect to
// fix here.
type Heuristic struct {
	Cal  *calendar.Calendar
	Rand IntSource
}

// Name implements Strategy.
func (h *Heuristic) Name() string { return "heuristic" }

// Place implements Strategy.
func (h *Heuristic) Place(candidate time.Time, minutes float64) (Slot, error) {
	if candidate.IsZero() {
		return Slot{}, errorx.New("zero candidate start").
			WithCode(errorx.CodeBadAnchor).
			WithOperation("schedule.Heuristic.Place")
	}

	start, err := h.place(candidate)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Start: start, End: start.Add(timex.MinutesToDuration(minutes))}, nil
}

func (h *Heuristic) place(candidate time.Time) (time.Time, error) {
	if !h.Cal.IsWorkday(candidate) {
		day, err := h.Cal.NextWorkday(candidate)
		if err != nil {
			return time.Time{}, err
		}
		return h.pickDayStart(day), nil
	}

	// Past 16:30 the rest of the day is written off.
	if timex.DayFraction(candidate) >= 16.5 {
		day, err := h.Cal.NextWorkday(candidate)
		if err != nil {
			return time.Time{}, err
		}
		return h.pickDayStart(day), nil
	}

	if candidate.Hour() < DayStartHour {
		return timex.At(candidate, DayStartHour, 0), nil
	}

	// The whole [10:30, 13:00) band defers to the afternoon block.
	frac := timex.DayFraction(candidate)
	if frac >= 10.5 && frac < 13 {
		jitter := h.Rand.IntBetween(0, 60)
		return timex.At(candidate, LunchEndHour, 0).Add(time.Duration(jitter) * time.Minute), nil
	}

	return candidate, nil
}

// pickDayStart chooses the morning or afternoon block of a fresh day by
// coin flip: 09:00 plus 0-30 minutes, or 13:00 plus 0-60 minutes. Draw
// order is coin flip first, then jitter.
func (h *Heuristic) pickDayStart(day time.Time) time.Time {
	if h.Rand.IntBetween(0, 1) == 0 {
		jitter := h.Rand.IntBetween(0, 30)
		return timex.At(day, DayStartHour, 0).Add(time.Duration(jitter) * time.Minute)
	}
	jitter := h.Rand.IntBetween(0, 60)
	return timex.At(day, LunchEndHour, 0).Add(time.Duration(jitter) * time.Minute)
}

// Advance implements Strategy. The heuristic keeps the raw candidate; the
// decision tree in Place does all the relocation.
func (h *Heuristic) Advance(end time.Time, restMinutes int) (time.Time, error) {
	return end.Add(time.Duration(restMinutes) * time.Minute), nil
}
