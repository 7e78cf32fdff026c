// File: record.go
// Title: Course Record Model
// Description: Defines the in-memory representation of one rollcall row: the
//              user and course keys, the clock-string duration, the excluded
//              flag, and the computed start/end instants in both the local
//              and the shifted reference representation.

package record

import (
	"strings"
	"time"

	"github.com/softusing/rollcall/internal/timex"
)

// ExcludedFlag is the source literal marking a record the chain builder
// must pass through untouched.
const ExcludedFlag = "留"

// CourseRecord is one row of work to be scheduled or validated.
type CourseRecord struct {
	// Position in the source file, used to locate the row in reports.
	Index int

	UserID      string
	CourseID    string
	NewCourseID string

	// Flag carries free-form markers; a flag containing ExcludedFlag
	// takes the record out of the chain.
	Flag string

	// AnchorRaw is the historical first-completion timestamp, if any.
	AnchorRaw string

	// DurationRaw is the colon-separated course length ("H:MM:SS" or
	// "MM:SS"). Unparsable or empty means a zero-duration record.
	DurationRaw string

	// RestGap is the drawn pause in minutes applied after this record.
	RestGap int

	// Computed instants. StartRef/EndRef are the stored reference times;
	// StartLocal is always StartRef shifted back by nine hours.
	StartLocal time.Time
	StartRef   time.Time
	EndRef     time.Time

	// Extra holds columns this tool does not interpret, so rewritten
	// files keep them byte-for-byte.
	Extra map[string]string
}

// IsExcluded reports whether the record carries the excluded marker.
func (r *CourseRecord) IsExcluded() bool {
	return strings.Contains(r.Flag, ExcludedFlag)
}

// MarkExcluded appends the excluded marker to the flag unless present.
func (r *CourseRecord) MarkExcluded() {
	if !r.IsExcluded() {
		r.Flag += ExcludedFlag
	}
}

// DurationMinutes returns the course length in fractional minutes, zero
// when the clock string is empty or malformed.
func (r *CourseRecord) DurationMinutes() float64 {
	return timex.ParseClockOrZero(r.DurationRaw)
}

// SetSlot stores a scheduled slot on the record, keeping the local
// representation in sync with the reference one.
func (r *CourseRecord) SetSlot(startRef, endRef time.Time, restGap int) {
	r.StartRef = startRef
	r.EndRef = endRef
	r.StartLocal = timex.ToLocal(startRef)
	r.RestGap = restGap
}

// Shift moves every stored instant of the record by the given number of
// whole days. Zero-value instants stay zero.
func (r *CourseRecord) Shift(days int) {
	if !r.StartRef.IsZero() {
		r.StartRef = r.StartRef.AddDate(0, 0, days)
	}
	if !r.EndRef.IsZero() {
		r.EndRef = r.EndRef.AddDate(0, 0, days)
	}
	if !r.StartLocal.IsZero() {
		r.StartLocal = r.StartLocal.AddDate(0, 0, days)
	}
}

// GroupByUser splits records into per-user groups preserving input order,
// and returns the user keys in order of first appearance.
func GroupByUser(records []*CourseRecord) (map[string][]*CourseRecord, []string) {
	groups := make(map[string][]*CourseRecord)
	var order []string
	for _, rec := range records {
		if _, seen := groups[rec.UserID]; !seen {
			order = append(order, rec.UserID)
		}
		groups[rec.UserID] = append(groups[rec.UserID], rec)
	}
	return groups, order
}
