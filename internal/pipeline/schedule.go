// File: schedule.go
// Title: Write-Path Flow
// Description: Implements the scheduling flow for one record file: enrich
//              the rows from the course catalog, chain each user's records
//              into consecutive slots, apply the cutoff shift, and write
//              the annotated file back out.

package pipeline

import (
	"context"
	"sort"

	"github.com/softusing/rollcall/internal/csvio"
	"github.com/softusing/rollcall/internal/record"
	"github.com/softusing/rollcall/internal/schedule"
	"github.com/softusing/rollcall/internal/validate"
	"github.com/softusing/rollcall/pkg/log"
)

// ScheduleResult summarizes one scheduled file.
type ScheduleResult struct {
	Records        int
	Users          int
	AbortedUsers   int
	ShiftedUsers   int
	ResidualFaults int
}

// ScheduleFile runs the full write path over one file and stores the
// result at outPath. Chain failures abort only the affected user; the
// file is still written with every other user scheduled.
func (p *Pipeline) ScheduleFile(ctx context.Context, path, outPath string) (*ScheduleResult, error) {
	logger := p.Log.WithField("file", path)

	f, err := csvio.Read(path)
	if err != nil {
		return nil, err
	}
	records, err := csvio.CourseRecords(f)
	if err != nil {
		return nil, err
	}

	p.enrich(records)

	strategy, err := p.strategy()
	if err != nil {
		return nil, err
	}
	builder := &schedule.Builder{
		Strategy: strategy,
		Anchor:   p.anchorPolicy(),
		Rand:     p.Rand,
		RestMin:  p.Cfg.RestMin,
		RestMax:  p.Cfg.RestMax,
		Log:      logger,
	}

	groups, order := record.GroupByUser(records)
	result := &ScheduleResult{Records: len(records), Users: len(order)}

	for _, userID := range order {
		userRecords := groups[userID]
		p.sequence(userRecords)

		if err := builder.Build(userID, userRecords); err != nil {
			logger.ErrorWithErr("user chain aborted", err, log.Fields{"user": userID})
			p.recordFinding(ctx, path, userID, -1, "chain_aborted", err.Error())
			result.AbortedUsers++
			continue
		}

		if days := schedule.ShiftToCutoff(userRecords, p.Cfg.CutoffDate); days > 0 {
			logger.Info("chain shifted to cutoff", log.Fields{"user": userID, "days": days})
			result.ShiftedUsers++
			if p.Cfg.Revalidate {
				result.ResidualFaults += p.reportResiduals(ctx, path, userID, userRecords)
			}
		}
	}

	csvio.ApplySlots(f, records, p.Codec)
	if err := f.Write(outPath); err != nil {
		return nil, err
	}

	logger.Info("file scheduled", log.Fields{
		"records": result.Records,
		"users":   result.Users,
		"aborted": result.AbortedUsers,
		"shifted": result.ShiftedUsers,
	})
	return result, nil
}

// enrich applies the catalog to the raw rows: records outside the catalog
// get the excluded flag; catalog records get their new course id, the
// catalog length, and keep their sequence slot.
func (p *Pipeline) enrich(records []*record.CourseRecord) {
	if len(p.Cfg.Catalog) == 0 {
		return
	}
	catalogIdx := p.Cfg.CatalogIndex()
	lengths := p.Cfg.CatalogLengths()

	if p.Cfg.AssignSequential {
		p.enrichSequential(records)
		return
	}

	for _, rec := range records {
		if _, ok := catalogIdx[rec.CourseID]; !ok {
			rec.MarkExcluded()
			continue
		}
		if !rec.IsExcluded() {
			rec.NewCourseID = rec.CourseID
		}
		if length, ok := lengths[rec.CourseID]; ok {
			rec.DurationRaw = length
		}
	}
}

// enrichSequential reassigns catalog course ids to each user's eligible
// records by position. Records past the end of the catalog are excluded;
// they have no course to map to.
func (p *Pipeline) enrichSequential(records []*record.CourseRecord) {
	lengths := p.Cfg.CatalogLengths()
	groups, order := record.GroupByUser(records)
	for _, userID := range order {
		next := 0
		for _, rec := range groups[userID] {
			if rec.IsExcluded() {
				continue
			}
			if next >= len(p.Cfg.Catalog) {
				rec.MarkExcluded()
				continue
			}
			entry := p.Cfg.Catalog[next]
			rec.NewCourseID = entry.ID
			if length, ok := lengths[entry.ID]; ok {
				rec.DurationRaw = length
			}
			next++
		}
	}
}

// sequence orders one user's records by catalog position with a stable
// sort. Without a catalog the source order is the sequence.
func (p *Pipeline) sequence(records []*record.CourseRecord) {
	if len(p.Cfg.Catalog) == 0 || p.Cfg.AssignSequential {
		return
	}
	catalogIdx := p.Cfg.CatalogIndex()
	sort.SliceStable(records, func(a, b int) bool {
		pa, okA := catalogIdx[records[a].CourseID]
		pb, okB := catalogIdx[records[b].CourseID]
		if okA != okB {
			return okA
		}
		if !okA {
			return false
		}
		return pa < pb
	})
}

// reportResiduals reports what the cutoff shift broke. A whole-day shift
// preserves time-of-day and relative gaps, so the only rule it can newly
// violate is workday validity. Nothing is corrected; the shift semantics
// are intentionally preserved.
func (p *Pipeline) reportResiduals(ctx context.Context, path, userID string, records []*record.CourseRecord) int {
	residuals := 0
	for _, rec := range records {
		if rec.StartRef.IsZero() || p.Cal.IsWorkday(rec.StartRef) {
			continue
		}
		residuals++
		p.Log.Warn("residual violation after cutoff shift", log.Fields{
			"file": path,
			"user": userID,
			"row":  rec.Index,
			"kind": string(validate.KindNonWorkday),
		})
		p.recordFinding(ctx, path, userID, rec.Index, string(validate.KindNonWorkday), "after cutoff shift")
	}
	return residuals
}
