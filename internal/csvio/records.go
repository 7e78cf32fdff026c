// File: records.go
// Title: Row Mapping
// Description: Maps loaded CSV rows onto the course-record model for the
//              write path and onto validator records for the check path,
//              and writes computed slots back into their columns.

package csvio

import (
	"strconv"

	"github.com/softusing/rollcall/internal/record"
	"github.com/softusing/rollcall/internal/timex"
	"github.com/softusing/rollcall/internal/validate"
	"github.com/softusing/rollcall/pkg/errorx"
)

// Validation exports name their time columns in two conventions; both
// occur in production files.
var (
	watchStartNames = []string{"視聴開始時間", "開始時間"}
	watchEndNames   = []string{"視聴完了時間", "完了時間"}
	watchDurNames   = []string{"標準視聴時間"}
)

// CourseRecords maps the file's rows onto course records for scheduling.
// The file must carry the user, course and flag columns; the writable
// columns are appended when absent.
func CourseRecords(f *File) ([]*record.CourseRecord, error) {
	if err := f.Require(ColUserID, ColCourseID, ColFlag); err != nil {
		return nil, err
	}
	f.Ensure(ColNewCourseID, ColVideoLength, ColRestTime, ColStartLocal, ColStartRef, ColNextStart)

	records := make([]*record.CourseRecord, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		records = append(records, &record.CourseRecord{
			Index:       i,
			UserID:      f.Get(i, ColUserID),
			CourseID:    f.Get(i, ColCourseID),
			NewCourseID: f.Get(i, ColNewCourseID),
			Flag:        f.Get(i, ColFlag),
			AnchorRaw:   f.Get(i, ColAnchor),
			DurationRaw: f.Get(i, ColVideoLength),
		})
	}
	return records, nil
}

// ApplySlots writes the scheduled instants and drawn fields of each
// record back into its source row using the given timestamp codec. Rows
// without a scheduled slot keep their previous values.
func ApplySlots(f *File, records []*record.CourseRecord, codec timex.Codec) {
	for _, rec := range records {
		f.Set(rec.Index, ColFlag, rec.Flag)
		f.Set(rec.Index, ColNewCourseID, rec.NewCourseID)
		if rec.DurationRaw != "" {
			f.Set(rec.Index, ColVideoLength, rec.DurationRaw)
		}
		if rec.StartRef.IsZero() {
			continue
		}
		f.Set(rec.Index, ColStartRef, codec.Format(rec.StartRef))
		f.Set(rec.Index, ColNextStart, codec.Format(rec.EndRef))
		f.Set(rec.Index, ColStartLocal, codec.Format(rec.StartLocal))
		f.Set(rec.Index, ColRestTime, strconv.Itoa(rec.RestGap))
	}
}

// ValidationRecords maps the file's rows onto validator records. The
// watch-time columns are resolved across the known naming conventions;
// missing columns abort the file.
func ValidationRecords(f *File) ([]validate.Record, error) {
	startCol, okStart := f.FirstOf(watchStartNames...)
	endCol, okEnd := f.FirstOf(watchEndNames...)
	durCol, okDur := f.FirstOf(watchDurNames...)
	if !okStart || !okEnd || !okDur {
		return nil, errorx.New("record file is missing the watch-time columns").
			WithCode(errorx.CodeMissingColumn).
			WithOperation("csvio.ValidationRecords").
			WithDetail("path", f.Path)
	}

	userCol := ""
	if f.Has(ColUserID) {
		userCol = ColUserID
	}

	records := make([]validate.Record, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		rec := validate.Record{
			Position:    i,
			StartRaw:    f.Get(i, startCol),
			EndRaw:      f.Get(i, endCol),
			DurationRaw: f.Get(i, durCol),
		}
		if userCol != "" {
			rec.UserID = f.Get(i, userCol)
		}
		records = append(records, rec)
	}
	return records, nil
}
