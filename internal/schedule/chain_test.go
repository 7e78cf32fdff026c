// File: chain_test.go
// Title: Chain Builder Tests
// Description: Unit tests for per-user chain construction, exclusion
//              pass-through, seed determinism and the cutoff shift.

package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/softusing/rollcall/internal/record"
	"github.com/softusing/rollcall/internal/timex"
	"github.com/softusing/rollcall/pkg/errorx"
)

func testRecords(n int) []*record.CourseRecord {
	recs := make([]*record.CourseRecord, n)
	for i := range recs {
		recs[i] = &record.CourseRecord{
			Index:       i,
			UserID:      "u1",
			CourseID:    fmt.Sprintf("c%03d", i),
			AnchorRaw:   "2025/3/7 9:00",
			DurationRaw: "0:30:07",
		}
	}
	return recs
}

func newBuilder(t *testing.T, seed int64) *Builder {
	t.Helper()
	cal := mustCalendar(t)
	return &Builder{
		Strategy: &Strict{Cal: cal},
		Anchor:   AnchorShifted{},
		Rand:     NewSeededSource(seed),
		RestMin:  2,
		RestMax:  6,
	}
}

func TestBuildChain(t *testing.T) {
	recs := testRecords(6)
	recs[2].Flag = "保留"

	b := newBuilder(t, 456)
	if err := b.Build("u1", recs); err != nil {
		t.Fatalf("Build: %v", err)
	}

	// The excluded record passes through untouched.
	if !recs[2].StartRef.IsZero() || !recs[2].EndRef.IsZero() || recs[2].RestGap != 0 {
		t.Errorf("excluded record was scheduled: %+v", recs[2])
	}

	var prevEnd time.Time
	var prevRest int
	for _, rec := range recs {
		if rec.IsExcluded() {
			continue
		}
		if rec.StartRef.IsZero() || rec.EndRef.IsZero() {
			t.Fatalf("row %d not scheduled", rec.Index)
		}
		if !rec.EndRef.After(rec.StartRef) {
			t.Errorf("row %d: end %v not after start %v", rec.Index, rec.EndRef, rec.StartRef)
		}
		if rec.RestGap < 2 || rec.RestGap > 6 {
			t.Errorf("row %d: rest gap %d outside [2,6]", rec.Index, rec.RestGap)
		}
		if want := timex.ToLocal(rec.StartRef); !rec.StartLocal.Equal(want) {
			t.Errorf("row %d: local start %v, want %v", rec.Index, rec.StartLocal, want)
		}
		if !prevEnd.IsZero() {
			gap := rec.StartRef.Sub(prevEnd)
			if gap < time.Duration(prevRest)*time.Minute && timex.SameDay(rec.StartRef, prevEnd) {
				t.Errorf("row %d: starts %v after previous end %v, rest was %d min",
					rec.Index, rec.StartRef, prevEnd, prevRest)
			}
			if rec.StartRef.Before(prevEnd) {
				t.Errorf("row %d overlaps previous slot", rec.Index)
			}
		}
		prevEnd = rec.EndRef
		prevRest = rec.RestGap
	}
}

func TestBuildMorningAnchorOnWeekend(t *testing.T) {
	// The anchor date falls on a Saturday. The morning policy moves it to
	// Monday first, so the jitter draw still lands in the start time.
	rec := &record.CourseRecord{
		UserID:      "u1",
		CourseID:    "c001",
		AnchorRaw:   "2025/3/8 10:00",
		DurationRaw: "0:30:07",
	}

	cal := mustCalendar(t)
	b := &Builder{
		Strategy: &Strict{Cal: cal},
		Anchor:   AnchorMorning{Cal: cal},
		Rand:     &fakeRand{draws: []int{4, 17}},
		RestMin:  2,
		RestMax:  6,
	}
	if err := b.Build("u1", []*record.CourseRecord{rec}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if want := at(2025, time.March, 10, 9, 17); !rec.StartRef.Equal(want) {
		t.Errorf("StartRef = %v, want %v", rec.StartRef, want)
	}
	if got := rec.EndRef.Sub(rec.StartRef).Round(time.Second); got != 30*time.Minute+7*time.Second {
		t.Errorf("slot length = %v, want 30m7s", got)
	}
	if rec.RestGap != 4 {
		t.Errorf("RestGap = %d, want 4", rec.RestGap)
	}
}

func TestBuildDeterminism(t *testing.T) {
	first := testRecords(8)
	second := testRecords(8)

	if err := newBuilder(t, 99).Build("u1", first); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := newBuilder(t, 99).Build("u1", second); err != nil {
		t.Fatalf("second build: %v", err)
	}
	for i := range first {
		if !first[i].StartRef.Equal(second[i].StartRef) ||
			!first[i].EndRef.Equal(second[i].EndRef) ||
			first[i].RestGap != second[i].RestGap {
			t.Errorf("row %d diverged between identical seeds", i)
		}
	}
}

func TestBuildLongChainNeverOverlaps(t *testing.T) {
	recs := testRecords(60)
	if err := newBuilder(t, 7).Build("u1", recs); err != nil {
		t.Fatalf("Build: %v", err)
	}

	cal := mustCalendar(t)
	var prevEnd time.Time
	for _, rec := range recs {
		if rec.StartRef.Before(prevEnd) {
			t.Fatalf("row %d: start %v before previous end %v", rec.Index, rec.StartRef, prevEnd)
		}
		if !cal.IsWorkday(rec.StartRef) {
			t.Errorf("row %d starts on a non-workday: %v", rec.Index, rec.StartRef)
		}
		h := rec.StartRef.Hour()
		if h < DayStartHour || h >= DayEndHour {
			t.Errorf("row %d starts outside business hours: %v", rec.Index, rec.StartRef)
		}
		prevEnd = rec.EndRef
	}
}

func TestBuildAbortsOnBadAnchor(t *testing.T) {
	recs := testRecords(3)
	recs[0].AnchorRaw = "not a timestamp"

	b := newBuilder(t, 1)
	err := b.Build("u1", recs)
	if err == nil {
		t.Fatal("expected chain abort")
	}
	if !errorx.HasCode(err, errorx.CodeChainAborted) {
		t.Errorf("expected CodeChainAborted, got %v", err)
	}
	for _, rec := range recs {
		if !rec.StartRef.IsZero() {
			t.Errorf("row %d was scheduled despite abort", rec.Index)
		}
	}
}

func TestBuildRejectsBadRestRange(t *testing.T) {
	b := newBuilder(t, 1)
	b.RestMin, b.RestMax = 5, 2
	if err := b.Build("u1", testRecords(1)); err == nil {
		t.Fatal("expected error for inverted rest range")
	}
}

func TestBuildAllExcluded(t *testing.T) {
	recs := testRecords(3)
	for _, rec := range recs {
		rec.Flag = record.ExcludedFlag
	}
	if err := newBuilder(t, 1).Build("u1", recs); err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, rec := range recs {
		if !rec.StartRef.IsZero() {
			t.Errorf("excluded row %d was scheduled", rec.Index)
		}
	}
}

func TestShiftToCutoff(t *testing.T) {
	mk := func(start, end time.Time) *record.CourseRecord {
		rec := &record.CourseRecord{}
		rec.SetSlot(start, end, 3)
		return rec
	}

	t.Run("chain past the cutoff shifts back whole days", func(t *testing.T) {
		recs := []*record.CourseRecord{
			mk(at(2025, time.March, 27, 9, 0), at(2025, time.March, 27, 9, 30)),
			mk(at(2025, time.April, 2, 14, 0), at(2025, time.April, 2, 14, 45)),
		}
		gap := recs[1].StartRef.Sub(recs[0].EndRef)

		days := ShiftToCutoff(recs, at(2025, time.March, 31, 0, 0))
		if days != 2 {
			t.Fatalf("shifted %d days, want 2", days)
		}
		if want := at(2025, time.March, 25, 9, 0); !recs[0].StartRef.Equal(want) {
			t.Errorf("first start = %v, want %v", recs[0].StartRef, want)
		}
		if want := at(2025, time.March, 31, 14, 45); !recs[1].EndRef.Equal(want) {
			t.Errorf("last end = %v, want %v", recs[1].EndRef, want)
		}
		if got := recs[1].StartRef.Sub(recs[0].EndRef); got != gap {
			t.Errorf("gap changed: %v, want %v", got, gap)
		}
		if want := timex.ToLocal(recs[0].StartRef); !recs[0].StartLocal.Equal(want) {
			t.Errorf("local start not kept in sync: %v", recs[0].StartLocal)
		}
	})

	t.Run("chain inside the cutoff is untouched", func(t *testing.T) {
		recs := []*record.CourseRecord{
			mk(at(2025, time.March, 27, 9, 0), at(2025, time.March, 27, 9, 30)),
		}
		if days := ShiftToCutoff(recs, at(2025, time.March, 31, 0, 0)); days != 0 {
			t.Fatalf("shifted %d days, want 0", days)
		}
		if want := at(2025, time.March, 27, 9, 0); !recs[0].StartRef.Equal(want) {
			t.Errorf("record moved without need: %v", recs[0].StartRef)
		}
	})

	t.Run("end on the cutoff date itself fits", func(t *testing.T) {
		recs := []*record.CourseRecord{
			mk(at(2025, time.March, 31, 9, 0), at(2025, time.March, 31, 17, 0)),
		}
		if days := ShiftToCutoff(recs, at(2025, time.March, 31, 0, 0)); days != 0 {
			t.Errorf("shifted %d days, want 0", days)
		}
	})

	t.Run("zero cutoff disables the shift", func(t *testing.T) {
		recs := []*record.CourseRecord{
			mk(at(2025, time.April, 2, 9, 0), at(2025, time.April, 2, 9, 30)),
		}
		if days := ShiftToCutoff(recs, time.Time{}); days != 0 {
			t.Errorf("shifted %d days, want 0", days)
		}
	})

	t.Run("unscheduled records are ignored", func(t *testing.T) {
		recs := []*record.CourseRecord{{}}
		if days := ShiftToCutoff(recs, at(2025, time.March, 31, 0, 0)); days != 0 {
			t.Errorf("shifted %d days, want 0", days)
		}
	})
}
