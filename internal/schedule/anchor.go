// File: anchor.go
// Title: First-Slot Anchor Policies
// Description: Implements the three ways a fresh chain picks its first
//              candidate start: the record's own historical completion time
//              shifted into reference time, the anchor date at a jittered
//              morning hour, or a random workday drawn before a cutoff.

package schedule

import (
	"time"

	"github.com/softusing/rollcall/internal/record"
	"github.com/softusing/rollcall/internal/timex"
	"github.com/softusing/rollcall/pkg/errorx"
)

// AnchorPolicy yields the candidate start for the first eligible record of
// a user's chain. The candidate still goes through strict placement, so a
// policy does not need to care about windows or workdays itself.
type AnchorPolicy interface {
	FirstStart(rec *record.CourseRecord, rand IntSource) (time.Time, error)
}

// AnchorShifted uses the record's historical first-completion timestamp
// shifted forward by the nine-hour reference offset. An unparsable or
// missing timestamp falls back to the configured default instant.
type AnchorShifted struct {
	Fallback time.Time
}

// FirstStart implements AnchorPolicy.
func (a AnchorShifted) FirstStart(rec *record.CourseRecord, _ IntSource) (time.Time, error) {
	anchor, err := timex.ParseTimestamp(rec.AnchorRaw)
	if err != nil {
		if a.Fallback.IsZero() {
			return time.Time{}, errorx.Newf("record has no usable anchor timestamp: %q", rec.AnchorRaw).
				WithCode(errorx.CodeBadAnchor).
				WithOperation("schedule.AnchorShifted.FirstStart").
				WithDetail("user", rec.UserID).
				WithDetail("row", rec.Index)
		}
		return a.Fallback, nil
	}
	return timex.ToReference(anchor), nil
}

// AnchorMorning keeps only the date of the record's anchor timestamp,
// moved to the next workday when it is not one, and starts the chain that
// morning at 09:00 plus a 1-30 minute draw. The workday move happens
// before the jitter draw.
type AnchorMorning struct {
	Cal interface {
		IsWorkday(time.Time) bool
		NextWorkday(time.Time) (time.Time, error)
	}
	Fallback time.Time
}

// FirstStart implements AnchorPolicy.
func (a AnchorMorning) FirstStart(rec *record.CourseRecord, rand IntSource) (time.Time, error) {
	day := a.Fallback
	if anchor, err := timex.ParseTimestamp(rec.AnchorRaw); err == nil {
		day = anchor
	}
	if day.IsZero() {
		return time.Time{}, errorx.New("no anchor date and no fallback configured").
			WithCode(errorx.CodeBadAnchor).
			WithOperation("schedule.AnchorMorning.FirstStart").
			WithDetail("user", rec.UserID).
			WithDetail("row", rec.Index)
	}
	if a.Cal != nil && !a.Cal.IsWorkday(day) {
		next, err := a.Cal.NextWorkday(day)
		if err != nil {
			return time.Time{}, err
		}
		day = next
	}
	jitter := rand.IntBetween(1, 30)
	return timex.At(day, DayStartHour, jitter), nil
}

// AnchorPool draws a random workday from the lookback window before the
// cutoff date and picks the morning or afternoon block by coin flip:
// 09:00 plus 0-90 minutes, or 13:00 plus 0-210 minutes.
type AnchorPool struct {
	Cal      interface{ IsWorkday(time.Time) bool }
	Cutoff   time.Time
	Lookback int
}

// FirstStart implements AnchorPolicy.
func (a AnchorPool) FirstStart(rec *record.CourseRecord, rand IntSource) (time.Time, error) {
	if a.Cutoff.IsZero() {
		return time.Time{}, errorx.New("anchor pool requires a cutoff date").
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("schedule.AnchorPool.FirstStart")
	}
	lookback := a.Lookback
	if lookback <= 0 {
		lookback = 30
	}

	var candidates []time.Time
	for i := 1; i <= lookback; i++ {
		day := a.Cutoff.AddDate(0, 0, -i)
		if a.Cal.IsWorkday(day) {
			candidates = append(candidates, day)
		}
	}
	if len(candidates) == 0 {
		return time.Time{}, errorx.Newf("no workday in the %d days before the cutoff", lookback).
			WithCode(errorx.CodeCalendarExhausted).
			WithOperation("schedule.AnchorPool.FirstStart")
	}

	day := candidates[rand.IntBetween(0, len(candidates)-1)]
	if rand.IntBetween(0, 1) == 0 {
		jitter := rand.IntBetween(0, 90)
		return timex.At(day, DayStartHour, 0).Add(time.Duration(jitter) * time.Minute), nil
	}
	jitter := rand.IntBetween(0, 210)
	return timex.At(day, LunchEndHour, 0).Add(time.Duration(jitter) * time.Minute), nil
}
