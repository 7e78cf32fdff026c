// File: pipeline.go
// Title: Batch Pipeline
// Description: Wires the configuration, calendar oracle, random source,
//              codec and report store into the per-file processing flows
//              the commands run. A configuration error aborts the current
//              file and the batch moves on; a chain failure aborts only
//              that user.

package pipeline

import (
	"context"

	"github.com/softusing/rollcall/internal/calendar"
	"github.com/softusing/rollcall/internal/config"
	"github.com/softusing/rollcall/internal/report"
	"github.com/softusing/rollcall/internal/schedule"
	"github.com/softusing/rollcall/internal/timex"
	"github.com/softusing/rollcall/pkg/log"
)

// Pipeline carries the shared collaborators of one batch run.
type Pipeline struct {
	Cfg   *config.Config
	Cal   *calendar.Calendar
	Codec timex.Codec
	Rand  schedule.IntSource
	Log   *log.Logger

	// Store and Run are set when the caller asked for a persisted
	// report; both stay nil otherwise.
	Store *report.Store
	Run   *report.Run
}

// New assembles a pipeline from a validated configuration. The holiday
// table is the injected jurisdiction capability and may be nil.
func New(cfg *config.Config, table calendar.HolidayTable, logger *log.Logger) (*Pipeline, error) {
	cal, err := cfg.BuildCalendar(table)
	if err != nil {
		return nil, err
	}
	codec, err := timex.CodecFor(cfg.Codec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.GetDefault()
	}
	return &Pipeline{
		Cfg:   cfg,
		Cal:   cal,
		Codec: codec,
		Rand:  schedule.NewSeededSource(cfg.Seed),
		Log:   logger,
	}, nil
}

// recordFinding persists one finding when a report store is attached and
// always counts it on the run summary.
func (p *Pipeline) recordFinding(ctx context.Context, file, userID string, position int, kind, detail string) {
	if p.Run != nil {
		p.Run.Findings++
	}
	if p.Store == nil || p.Run == nil {
		return
	}
	err := p.Store.AddFinding(ctx, &report.Finding{
		RunID:    p.Run.ID,
		File:     file,
		UserID:   userID,
		Position: position,
		Kind:     kind,
		Detail:   detail,
	})
	if err != nil {
		p.Log.WarnWithErr("could not persist finding", err)
	}
}

// strategy builds the configured placement strategy.
func (p *Pipeline) strategy() (schedule.Strategy, error) {
	return schedule.StrategyFor(p.Cfg.Strategy, p.Cal, p.Rand)
}

// anchorPolicy builds the configured first-slot policy.
func (p *Pipeline) anchorPolicy() schedule.AnchorPolicy {
	switch p.Cfg.Anchor {
	case "morning":
		return schedule.AnchorMorning{Cal: p.Cal, Fallback: p.Cfg.AnchorFallbackAt}
	case "pool":
		return schedule.AnchorPool{Cal: p.Cal, Cutoff: p.Cfg.CutoffDate}
	default:
		return schedule.AnchorShifted{Fallback: p.Cfg.AnchorFallbackAt}
	}
}
