// File: anchor_test.go
// Title: Anchor Policy Tests
// Description: Unit tests for the three first-slot anchor policies.

package schedule

import (
	"testing"
	"time"

	"github.com/softusing/rollcall/internal/calendar"
	"github.com/softusing/rollcall/internal/record"
	"github.com/softusing/rollcall/pkg/errorx"
)

func TestAnchorShifted(t *testing.T) {
	fallback := at(2025, time.March, 3, 9, 0)

	tests := []struct {
		name     string
		raw      string
		fallback time.Time
		want     time.Time
		wantCode errorx.Code
	}{
		{
			name: "anchor shifted by nine hours",
			raw:  "2025/3/7 9:00",
			want: at(2025, time.March, 7, 18, 0),
		},
		{
			name:     "unparsable anchor uses fallback",
			raw:      "n/a",
			fallback: fallback,
			want:     fallback,
		},
		{
			name:     "empty anchor uses fallback",
			raw:      "",
			fallback: fallback,
			want:     fallback,
		},
		{
			name:     "no anchor and no fallback is an error",
			raw:      "",
			wantCode: errorx.CodeBadAnchor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &record.CourseRecord{UserID: "u1", AnchorRaw: tt.raw}
			got, err := AnchorShifted{Fallback: tt.fallback}.FirstStart(rec, &fakeRand{})
			if tt.wantCode != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errorx.HasCode(err, tt.wantCode) {
					t.Errorf("expected code %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FirstStart: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FirstStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnchorMorning(t *testing.T) {
	cal := mustCalendar(t, calendar.ExclusionRule{Year: 2025, Month: time.August, FromDay: 11, ToDay: 15})

	tests := []struct {
		name     string
		raw      string
		fallback time.Time
		draws    []int
		want     time.Time
	}{
		{
			name:  "workday anchor keeps its date",
			raw:   "2025/3/7 16:45",
			draws: []int{17},
			want:  at(2025, time.March, 7, 9, 17),
		},
		{
			name:  "saturday anchor moves to monday before the jitter draw",
			raw:   "2025/3/8 10:00",
			draws: []int{17},
			want:  at(2025, time.March, 10, 9, 17),
		},
		{
			name:  "holiday anchor moves past the exclusion range",
			raw:   "2025/8/13 11:30",
			draws: []int{3},
			want:  at(2025, time.August, 18, 9, 3),
		},
		{
			name:     "unparsable anchor falls back to the configured date",
			raw:      "bad",
			fallback: at(2025, time.March, 3, 0, 0),
			draws:    []int{5},
			want:     at(2025, time.March, 3, 9, 5),
		},
		{
			name:     "weekend fallback moves to the next workday",
			raw:      "",
			fallback: at(2025, time.March, 8, 0, 0),
			draws:    []int{22},
			want:     at(2025, time.March, 10, 9, 22),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &record.CourseRecord{UserID: "u1", AnchorRaw: tt.raw}
			a := AnchorMorning{Cal: cal, Fallback: tt.fallback}
			got, err := a.FirstStart(rec, &fakeRand{draws: tt.draws})
			if err != nil {
				t.Fatalf("FirstStart: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FirstStart = %v, want %v", got, tt.want)
			}
		})
	}

	// Neither anchor nor fallback.
	_, err := AnchorMorning{Cal: cal}.FirstStart(&record.CourseRecord{AnchorRaw: "bad"}, &fakeRand{})
	if err == nil {
		t.Fatal("expected error without anchor and fallback")
	}
	if !errorx.HasCode(err, errorx.CodeBadAnchor) {
		t.Errorf("expected CodeBadAnchor, got %v", err)
	}
}

func TestAnchorPool(t *testing.T) {
	cal := mustCalendar(t)
	cutoff := at(2025, time.March, 31, 0, 0)
	rec := &record.CourseRecord{UserID: "u1"}

	// The pool holds the workdays of the 30 days before the cutoff, most
	// recent first: index 0 is Friday March 28.
	p := AnchorPool{Cal: cal, Cutoff: cutoff}

	got, err := p.FirstStart(rec, &fakeRand{draws: []int{0, 0, 40}})
	if err != nil {
		t.Fatalf("FirstStart: %v", err)
	}
	if want := at(2025, time.March, 28, 9, 40); !got.Equal(want) {
		t.Errorf("morning draw = %v, want %v", got, want)
	}

	got, err = p.FirstStart(rec, &fakeRand{draws: []int{0, 1, 200}})
	if err != nil {
		t.Fatalf("FirstStart: %v", err)
	}
	if want := at(2025, time.March, 28, 16, 20); !got.Equal(want) {
		t.Errorf("afternoon draw = %v, want %v", got, want)
	}

	// Every drawn day must be a workday strictly before the cutoff.
	rng := NewSeededSource(1)
	for i := 0; i < 50; i++ {
		start, err := p.FirstStart(rec, rng)
		if err != nil {
			t.Fatalf("FirstStart draw %d: %v", i, err)
		}
		if !start.Before(cutoff) {
			t.Fatalf("draw %d not before cutoff: %v", i, start)
		}
		if !cal.IsWorkday(start) {
			t.Fatalf("draw %d on a non-workday: %v", i, start)
		}
	}

	// A missing cutoff is a configuration error.
	_, err = AnchorPool{Cal: cal}.FirstStart(rec, &fakeRand{})
	if err == nil {
		t.Fatal("expected error without cutoff")
	}
	if !errorx.HasCode(err, errorx.CodeInvalidConfig) {
		t.Errorf("expected CodeInvalidConfig, got %v", err)
	}
}
