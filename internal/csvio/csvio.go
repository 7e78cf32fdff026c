// File: csvio.go
// Title: Record File Access
// Description: Reads and writes the CSV record files by header name rather
//              than position, padding short rows and keeping every column
//              this tool does not interpret byte-for-byte intact on the way
//              back out.

package csvio

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/softusing/rollcall/pkg/errorx"
)

// Column names of the scheduling files.
const (
	ColUserID      = "user_id"
	ColCourseID    = "course_id"
	ColNewCourseID = "new_course_id"
	ColFlag        = "flag"
	ColAnchor      = "first_finished_time"
	ColVideoLength = "course_video_length"
	ColRestTime    = "rest_time"
	ColStartLocal  = "new_started_at"
	ColStartRef    = "new_started_at_UTC"
	ColNextStart   = "next_started_at"
)

// File is one loaded CSV file: the normalized header, an index over it,
// and the data rows padded to header width.
type File struct {
	Path   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// Read loads a CSV file. The header is normalized (BOM and surrounding
// whitespace stripped) and every row is padded to header width so later
// column growth cannot run past a short row.
func Read(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errorx.Wrap(err, "cannot open record file").
			WithCode(errorx.CodeNotFound).
			WithOperation("csvio.Read").
			WithDetail("path", path)
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.FieldsPerRecord = -1

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, errorx.Wrap(err, "cannot parse record file").
			WithCode(errorx.CodeEncodingError).
			WithOperation("csvio.Read").
			WithDetail("path", path)
	}
	if len(raw) == 0 {
		return nil, errorx.New("record file has no header row").
			WithCode(errorx.CodeEmptyInput).
			WithOperation("csvio.Read").
			WithDetail("path", path)
	}

	header := make([]string, len(raw[0]))
	for i, name := range raw[0] {
		header[i] = normalizeName(name)
	}

	f := &File{Path: path, Header: header, Rows: raw[1:]}
	f.reindex()
	f.padRows()
	return f, nil
}

// Write stores the file at the given path, header first.
func (f *File) Write(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return errorx.Wrap(err, "cannot create output file").
			WithCode(errorx.CodeStoreError).
			WithOperation("csvio.Write").
			WithDetail("path", path)
	}
	defer fh.Close()

	writer := csv.NewWriter(fh)
	if err := writer.Write(f.Header); err != nil {
		return errorx.Wrap(err, "cannot write header").
			WithCode(errorx.CodeStoreError).
			WithOperation("csvio.Write").
			WithDetail("path", path)
	}
	for _, row := range f.Rows {
		if err := writer.Write(row); err != nil {
			return errorx.Wrap(err, "cannot write row").
				WithCode(errorx.CodeStoreError).
				WithOperation("csvio.Write").
				WithDetail("path", path)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Require fails when any of the named columns is missing. Missing required
// columns abort the file, not the batch.
func (f *File) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := f.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errorx.Newf("record file is missing required columns: %s", strings.Join(missing, ", ")).
			WithCode(errorx.CodeMissingColumn).
			WithOperation("csvio.Require").
			WithDetail("path", f.Path)
	}
	return nil
}

// Ensure appends any of the named columns that are not present yet and
// pads all rows accordingly.
func (f *File) Ensure(names ...string) {
	changed := false
	for _, name := range names {
		if _, ok := f.index[name]; !ok {
			f.Header = append(f.Header, name)
			changed = true
		}
	}
	if changed {
		f.reindex()
		f.padRows()
	}
}

// Has reports whether the file carries the named column.
func (f *File) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// FirstOf returns the first of the given column names present in the
// file. Validation exports name their columns in more than one
// convention.
func (f *File) FirstOf(names ...string) (string, bool) {
	for _, name := range names {
		if f.Has(name) {
			return name, true
		}
	}
	return "", false
}

// Get returns the value of the named column in the given row, empty when
// the column does not exist.
func (f *File) Get(row int, name string) string {
	idx, ok := f.index[name]
	if !ok || row < 0 || row >= len(f.Rows) {
		return ""
	}
	return f.Rows[row][idx]
}

// Set stores a value into the named column of the given row. Unknown
// columns are ignored; callers Ensure the columns they write.
func (f *File) Set(row int, name, value string) {
	idx, ok := f.index[name]
	if !ok || row < 0 || row >= len(f.Rows) {
		return
	}
	f.Rows[row][idx] = value
}

// Len returns the number of data rows.
func (f *File) Len() int {
	return len(f.Rows)
}

func (f *File) reindex() {
	f.index = make(map[string]int, len(f.Header))
	for i, name := range f.Header {
		f.index[name] = i
	}
}

func (f *File) padRows() {
	width := len(f.Header)
	for i, row := range f.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		f.Rows[i] = row
	}
}

func normalizeName(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
