// File: errorx_test.go
// Title: Structured Error Tests
// Description: Unit tests for error construction, wrapping, code
//              propagation and message rendering.

package errorx

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndBuilders(t *testing.T) {
	err := New("boom").
		WithCode(CodeInvalidFormat).
		WithOperation("pkg.Op").
		WithDetail("row", 7)

	if err.Code() != CodeInvalidFormat {
		t.Errorf("Code() = %s, want %s", err.Code(), CodeInvalidFormat)
	}
	if err.Operation() != "pkg.Op" {
		t.Errorf("Operation() = %s, want pkg.Op", err.Operation())
	}
	if err.Details()["row"] != 7 {
		t.Errorf("Details()[row] = %v, want 7", err.Details()["row"])
	}
}

func TestErrorRendering(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "message only",
			err:  New("boom"),
			want: "boom",
		},
		{
			name: "operation prefix",
			err:  New("boom").WithOperation("pkg.Op"),
			want: "pkg.Op: boom",
		},
		{
			name: "details sorted by key",
			err:  New("boom").WithDetail("z", 1).WithDetail("a", "x"),
			want: "boom (a=x, z=1)",
		},
		{
			name: "cause appended",
			err:  Wrap(errors.New("inner"), "outer").WithOperation("pkg.Op"),
			want: "pkg.Op: outer: inner",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf("bad value %d in %s", 7, "col")
	if got := err.Error(); got != "bad value 7 in col" {
		t.Errorf("Error() = %q", got)
	}
	if err.Code() != CodeUnknown {
		t.Errorf("fresh error code = %s, want %s", err.Code(), CodeUnknown)
	}
}

func TestWrapInheritsCode(t *testing.T) {
	inner := New("inner").WithCode(CodeCalendarExhausted)
	outer := Wrap(inner, "outer")
	if outer.Code() != CodeCalendarExhausted {
		t.Errorf("wrapped code = %s, want %s", outer.Code(), CodeCalendarExhausted)
	}

	// An explicit code on the wrapper wins.
	replaced := Wrap(inner, "outer").WithCode(CodeChainAborted)
	if replaced.Code() != CodeChainAborted {
		t.Errorf("replaced code = %s, want %s", replaced.Code(), CodeChainAborted)
	}

	// Plain causes leave the default in place.
	plain := Wrap(errors.New("plain"), "outer")
	if plain.Code() != CodeUnknown {
		t.Errorf("plain cause code = %s, want %s", plain.Code(), CodeUnknown)
	}
}

func TestUnwrapChain(t *testing.T) {
	inner := errors.New("root")
	err := Wrap(Wrap(inner, "mid"), "outer")
	if !errors.Is(err, inner) {
		t.Error("errors.Is should reach the root cause")
	}

	var structured *Error
	if !errors.As(err, &structured) {
		t.Fatal("errors.As failed on structured error")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("x"), want: CodeUnknown},
		{name: "structured", err: New("x").WithCode(CodeBadAnchor), want: CodeBadAnchor},
		{
			name: "structured behind fmt wrap",
			err:  fmt.Errorf("outer: %w", New("x").WithCode(CodeBadAnchor)),
			want: CodeBadAnchor,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := New("x").WithCode(CodeStoreError)
	if !HasCode(err, CodeStoreError) {
		t.Error("HasCode should match the set code")
	}
	if HasCode(err, CodeBadAnchor) {
		t.Error("HasCode matched the wrong code")
	}
}
