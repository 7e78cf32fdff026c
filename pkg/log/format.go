// File: format.go
// Title: Log Output Formatters
// Description: Implements the text and JSON formatters for log entries.
//              Text is the default for interactive batch runs, JSON is meant
//              for runs whose output gets collected by other tooling.

package log

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format represents the output format for log messages.
type Format int

const (
	// FormatText outputs human-readable text logs (default)
	FormatText Format = iota

	// FormatJSON outputs structured JSON logs
	FormatJSON
)

// ParseFormat parses a string into a log format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", s)
	}
}

// Formatter renders a log entry into bytes ready for the output writer.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// GetFormatter returns the formatter for the given format.
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{TimestampFormat: time.RFC3339}
	default:
		return &TextFormatter{TimestampFormat: "2006-01-02 15:04:05"}
	}
}

// TextFormatter formats entries as single human-readable lines.
type TextFormatter struct {
	TimestampFormat string
}

// Format formats a log entry as text.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder

	b.WriteString(entry.Timestamp.Format(f.TimestampFormat))
	b.WriteString(" ")
	b.WriteString(entry.Level.ShortString())
	if entry.Logger != "" {
		b.WriteString(" [")
		b.WriteString(entry.Logger)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(entry.Message)

	for _, k := range sortedKeys(entry.Fields) {
		b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Fields[k]))
	}

	if entry.Err != nil {
		b.WriteString(" error=")
		b.WriteString(fmt.Sprintf("%q", entry.Err.Error()))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

// JSONFormatter formats entries as one JSON object per line.
type JSONFormatter struct {
	TimestampFormat string
}

// Format formats a log entry as JSON.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+5)

	data["timestamp"] = entry.Timestamp.Format(f.TimestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	if entry.Logger != "" {
		data["logger"] = entry.Logger
	}
	if entry.Err != nil {
		data["error"] = entry.Err.Error()
	}
	for k, v := range entry.Fields {
		data[k] = v
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func sortedKeys(fields Fields) []string {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
