package util_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngc-linker/packages/compiler/util"
)

func TestParseLocation(t *testing.T) {
	file := util.NewParseSourceFile("ab\ncd\nef", "test.html")

	t.Run("should move forward across lines", func(t *testing.T) {
		loc := util.NewParseLocation(file, 0, 0, 0).MoveBy(4)
		got := []int{loc.Offset, loc.Line, loc.Col}
		if diff := cmp.Diff([]int{4, 1, 1}, got); diff != "" {
			t.Errorf("MoveBy mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should move backward across lines", func(t *testing.T) {
		loc := util.NewParseLocation(file, 7, 2, 1).MoveBy(-3)
		got := []int{loc.Offset, loc.Line, loc.Col}
		if diff := cmp.Diff([]int{4, 1, 1}, got); diff != "" {
			t.Errorf("MoveBy mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should print url with line and column", func(t *testing.T) {
		loc := util.NewParseLocation(file, 3, 1, 0)
		if loc.String() != "test.html@1:0" {
			t.Errorf("Expected %q, got %q", "test.html@1:0", loc.String())
		}
	})
}

func TestTypeSourceSpan(t *testing.T) {
	span := util.TypeSourceSpan("Component", "MyComponent", "/app/cmp.js")
	if span.Start.File.URL != "in Component MyComponent in /app/cmp.js" {
		t.Errorf("unexpected url %q", span.Start.File.URL)
	}
	if span.Start.String() != "in Component MyComponent in /app/cmp.js" {
		t.Errorf("synthetic location should print only its url, got %q", span.Start.String())
	}
}

func TestParseError(t *testing.T) {
	file := util.NewParseSourceFile("<div>", "tpl.html")
	start := util.NewParseLocation(file, 1, 0, 1)
	end := util.NewParseLocation(file, 4, 0, 4)
	err := util.NewParseError(util.NewParseSourceSpan(start, end, nil, nil), "Unexpected tag")

	want := `Unexpected tag ("<[ERROR ->]div>"): tpl.html@0:1`
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestAssertInterpolationSymbols(t *testing.T) {
	if err := util.AssertInterpolationSymbols("interpolation", []string{"{{", "}}"}); err != nil {
		t.Errorf("default delimiters should be accepted: %v", err)
	}
	if err := util.AssertInterpolationSymbols("interpolation", []string{"{{"}); err == nil {
		t.Error("a single delimiter should be rejected")
	}
	if err := util.AssertInterpolationSymbols("interpolation", []string{"<%", "%>"}); err == nil {
		t.Error("html-like delimiters should be rejected")
	}
}
