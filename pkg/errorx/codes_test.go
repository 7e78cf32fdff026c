// File: codes_test.go
// Title: Error Code Tests
// Description: Unit tests for code categorization and per-file fatality.

package errorx

import "testing"

func TestCategory(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeInvalidConfig, "configuration"},
		{CodeMissingConfig, "configuration"},
		{CodeMissingColumn, "input"},
		{CodeInvalidFormat, "input"},
		{CodeCalendarExhausted, "scheduling"},
		{CodeChainAborted, "scheduling"},
		{CodeBadAnchor, "scheduling"},
		{CodeStoreError, "persistence"},
		{CodeUnknown, "generic"},
		{Code("MADE_UP"), "generic"},
	}
	for _, tt := range tests {
		if got := tt.code.Category(); got != tt.want {
			t.Errorf("%s.Category() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestIsFatalForFile(t *testing.T) {
	fatal := []Code{CodeInvalidConfig, CodeMissingConfig, CodeMissingColumn, CodeEncodingError, CodeEmptyInput}
	for _, c := range fatal {
		if !c.IsFatalForFile() {
			t.Errorf("%s should be fatal for the file", c)
		}
	}
	nonFatal := []Code{CodeChainAborted, CodeBadAnchor, CodeInvalidFormat, CodeUnknown}
	for _, c := range nonFatal {
		if c.IsFatalForFile() {
			t.Errorf("%s should not be fatal for the file", c)
		}
	}
}
