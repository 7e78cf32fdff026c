// File: validator.go
// Title: Schedule Validator
// Description: Checks existing (start, end) pairs in a record file against
//              the business-window, workday, duration and non-overlap rules
//              and reports every violation with enough context to locate
//              the offending row.

package validate

import (
	"sort"
	"time"

	"github.com/softusing/rollcall/internal/calendar"
	"github.com/softusing/rollcall/internal/schedule"
	"github.com/softusing/rollcall/internal/timex"
)

// Kind names one violation class. A single record may carry several.
type Kind string

const (
	KindInvalidTimeFormat        Kind = "invalid_time_format"
	KindEndBeforeStartOrCrossDay Kind = "end_before_start_or_cross_day"
	KindInvalidDuration          Kind = "invalid_duration"
	KindDurationNotMet           Kind = "duration_not_met"
	KindOverlapWithPrevious      Kind = "overlap_with_previous"
	KindOutsideBusinessWindow    Kind = "outside_business_window"
	KindNonWorkday               Kind = "non_workday"
)

// Record is one row under validation: the raw textual fields exactly as
// the file carries them.
type Record struct {
	// Position is the row's place in the original file, for reporting.
	Position int

	UserID      string
	StartRaw    string
	EndRaw      string
	DurationRaw string
}

// Violation ties a violation kind to the record it was found on.
type Violation struct {
	Position int
	UserID   string
	Kind     Kind
}

// Validator checks record files against the scheduling rules. It shares
// the calendar oracle with the write path so both sides agree on what a
// workday is.
type Validator struct {
	Cal *calendar.Calendar
}

// New creates a Validator backed by the given calendar.
func New(cal *calendar.Calendar) *Validator {
	return &Validator{Cal: cal}
}

type parsedRecord struct {
	rec      Record
	start    time.Time
	end      time.Time
	parsable bool
}

// Validate checks all records of one file and returns the accumulated
// violations ordered by record position.
//
// Records are evaluated in (start date, start instant) order with a stable
// sort, ties broken by input order; the overlap check depends on that
// order, not on the order rows appear in the file. A record whose start or
// end does not parse reports only invalid_time_format; every other check
// accumulates independently.
func (v *Validator) Validate(records []Record) []Violation {
	parsed := make([]parsedRecord, len(records))
	for i, rec := range records {
		p := parsedRecord{rec: rec}
		start, errStart := timex.ParseTimestamp(rec.StartRaw)
		end, errEnd := timex.ParseTimestamp(rec.EndRaw)
		if errStart == nil && errEnd == nil {
			p.start = start
			p.end = end
			p.parsable = true
		}
		parsed[i] = p
	}

	order := make([]int, len(parsed))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := parsed[order[a]], parsed[order[b]]
		// Unparsable rows sort last and keep their relative order.
		if pa.parsable != pb.parsable {
			return pa.parsable
		}
		if !pa.parsable {
			return false
		}
		da := timex.At(pa.start, 0, 0)
		db := timex.At(pb.start, 0, 0)
		if !da.Equal(db) {
			return da.Before(db)
		}
		return pa.start.Before(pb.start)
	})

	var violations []Violation
	add := func(p parsedRecord, kind Kind) {
		violations = append(violations, Violation{
			Position: p.rec.Position,
			UserID:   p.rec.UserID,
			Kind:     kind,
		})
	}

	for i, idx := range order {
		p := parsed[idx]

		if !p.parsable {
			add(p, KindInvalidTimeFormat)
			continue
		}

		if p.end.Before(p.start) || !timex.SameDay(p.start, p.end) {
			add(p, KindEndBeforeStartOrCrossDay)
		}

		minutes, durErr := timex.ParseClock(p.rec.DurationRaw)
		if durErr != nil {
			add(p, KindInvalidDuration)
		} else if p.end.Before(p.start.Add(timex.MinutesToDuration(minutes))) {
			add(p, KindDurationNotMet)
		}

		// Overlap against the immediate predecessor in sort order only,
		// and only when both rows share the start date.
		if i > 0 {
			prev := parsed[order[i-1]]
			if prev.parsable && timex.SameDay(p.start, prev.start) && p.start.Before(prev.end) {
				add(p, KindOverlapWithPrevious)
			}
		}

		if !inBusinessWindow(p.start, false) || !inBusinessWindow(p.end, true) {
			add(p, KindOutsideBusinessWindow)
		}

		if !v.Cal.IsWorkday(p.start) {
			add(p, KindNonWorkday)
		}
	}

	sort.SliceStable(violations, func(a, b int) bool {
		return violations[a].Position < violations[b].Position
	})
	return violations
}

// inBusinessWindow reports whether t falls inside [09:00,12:00) or
// [13:00,18:00). An end instant additionally passes when it sits exactly
// on the 12:00 or 18:00 boundary; a slot is allowed to run right up to
// the block edge.
func inBusinessWindow(t time.Time, isEnd bool) bool {
	h := t.Hour()
	if (h >= schedule.DayStartHour && h < schedule.LunchStartHour) ||
		(h >= schedule.LunchEndHour && h < schedule.DayEndHour) {
		return true
	}
	if isEnd && t.Minute() == 0 && t.Second() == 0 &&
		(h == schedule.LunchStartHour || h == schedule.DayEndHour) {
		return true
	}
	return false
}
