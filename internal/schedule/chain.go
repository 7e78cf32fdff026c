// File: chain.go
// Title: Chain Builder
// Description: Builds the ordered, non-overlapping sequence of scheduled
//              slots for one user's records and applies the cutoff shift
//              that pulls an overlong chain back inside the allowed date
//              range.

package schedule

import (
	"time"

	"github.com/softusing/rollcall/internal/record"
	"github.com/softusing/rollcall/pkg/errorx"
	"github.com/softusing/rollcall/pkg/log"
)

// Builder chains one user's records into consecutive slots.
//
// Random draws are consumed in a fixed order so a fixed seed reproduces
// the schedule byte for byte: for each eligible record, first the rest
// gap, then the placement draws for that record (anchor draws for the
// first slot, strategy jitter for continuations). Excluded records draw
// nothing.
type Builder struct {
	Strategy Strategy
	Anchor   AnchorPolicy
	Rand     IntSource

	// RestMin/RestMax bound the drawn rest gap in minutes, inclusive.
	// Both [2,6] and [3,5] are in production use; this is a parameter,
	// not a constant.
	RestMin int
	RestMax int

	Log *log.Logger
}

// Build schedules the user's records in place. Excluded records pass
// through untouched and never move the cursor. A placement failure aborts
// the whole chain so a partially scheduled user is never written out.
func (b *Builder) Build(userID string, records []*record.CourseRecord) error {
	if b.RestMin <= 0 || b.RestMax < b.RestMin {
		return errorx.Newf("invalid rest gap range [%d,%d]", b.RestMin, b.RestMax).
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("schedule.Builder.Build")
	}

	logger := b.Log
	if logger == nil {
		logger = log.GetDefault()
	}
	logger = logger.WithField("user", userID)

	var cursor time.Time
	placed := 0

	for _, rec := range records {
		if rec.IsExcluded() {
			logger.Debug("record excluded from chain", log.Fields{"row": rec.Index, "course": rec.CourseID})
			continue
		}

		rest := b.Rand.IntBetween(b.RestMin, b.RestMax)
		minutes := rec.DurationMinutes()

		var candidate time.Time
		if placed == 0 {
			first, err := b.Anchor.FirstStart(rec, b.Rand)
			if err != nil {
				return b.abort(err, userID, rec)
			}
			candidate = first
		} else {
			candidate = cursor
		}

		slot, err := b.Strategy.Place(candidate, minutes)
		if err != nil {
			return b.abort(err, userID, rec)
		}
		rec.SetSlot(slot.Start, slot.End, rest)
		placed++

		cursor, err = b.Strategy.Advance(slot.End, rest)
		if err != nil {
			return b.abort(err, userID, rec)
		}
	}

	logger.Debug("chain built", log.Fields{"placed": placed, "records": len(records)})
	return nil
}

func (b *Builder) abort(err error, userID string, rec *record.CourseRecord) error {
	return errorx.Wrap(err, "chain aborted").
		WithCode(errorx.CodeChainAborted).
		WithOperation("schedule.Builder.Build").
		WithDetail("user", userID).
		WithDetail("row", rec.Index).
		WithDetail("course", rec.CourseID)
}

// ShiftToCutoff checks whether the user's last scheduled end falls past
// the cutoff date and, if so, shifts every scheduled instant of the user
// back by the whole number of days needed to bring it inside. Relative
// gaps are preserved exactly. The shifted days are returned; zero means
// the chain already fit.
//
// The shift deliberately does not re-validate workday or window rules;
// the source behavior it reproduces does not either. Callers that want
// the residual violations run the validator afterwards.
func ShiftToCutoff(records []*record.CourseRecord, cutoff time.Time) int {
	if cutoff.IsZero() {
		return 0
	}

	var last time.Time
	for _, rec := range records {
		if !rec.EndRef.IsZero() && rec.EndRef.After(last) {
			last = rec.EndRef
		}
	}
	if last.IsZero() {
		return 0
	}

	cutoffDay := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, cutoff.Location())
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, last.Location())
	if !lastDay.After(cutoffDay) {
		return 0
	}

	days := int(lastDay.Sub(cutoffDay).Hours() / 24)
	for _, rec := range records {
		rec.Shift(-days)
	}
	return days
}
