package css_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/css"
)

func TestParse(t *testing.T) {
	t.Run("should parse element, class and attribute parts", func(t *testing.T) {
		sels, err := css.Parse(`div.a.B[title="Hi"][x]#main`)
		require.NoError(t, err)
		require.Len(t, sels, 1)
		sel := sels[0]
		assert.Equal(t, "div", sel.Element)
		if diff := cmp.Diff([]string{"a", "b"}, sel.ClassNames); diff != "" {
			t.Errorf("class names mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"title", "hi", "x", "", "id", "main"}, sel.Attrs); diff != "" {
			t.Errorf("attrs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should split selector lists", func(t *testing.T) {
		sels, err := css.Parse("a, [b] ,c")
		require.NoError(t, err)
		var got []string
		for _, sel := range sels {
			got = append(got, sel.String())
		}
		if diff := cmp.Diff([]string{"a", "[b]", "c"}, got); diff != "" {
			t.Errorf("selectors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should give a lone :not an implicit star element", func(t *testing.T) {
		sels, err := css.Parse(":not(.x)")
		require.NoError(t, err)
		assert.Equal(t, "*:not(.x)", sels[0].String())
	})

	t.Run("should reject nested :not", func(t *testing.T) {
		_, err := css.Parse(":not(:not(a))")
		assert.ErrorIs(t, err, css.ErrNestedNot)
	})

	t.Run("should reject unescaped dollars", func(t *testing.T) {
		_, err := css.Parse("[a$b]")
		assert.ErrorIs(t, err, css.ErrUnescapedDollar)
	})
}

func TestParseSelectorToR3Selector(t *testing.T) {
	tests := []struct {
		selector string
		want     core.R3CssSelectorList
	}{
		{"my-component", core.R3CssSelectorList{{"my-component"}}},
		{"[some-directive]", core.R3CssSelectorList{{"", "some-directive", ""}}},
		{"button.primary", core.R3CssSelectorList{{"button", core.SelectorFlagsCLASS, "primary"}}},
		{"a:not([disabled])", core.R3CssSelectorList{{"a", core.SelectorFlagsNOT | core.SelectorFlagsATTRIBUTE, "disabled", ""}}},
		{"", core.R3CssSelectorList{}},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := css.ParseSelectorToR3Selector(tt.selector)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSelectorToR3Selector(%q) mismatch (-want +got):\n%s", tt.selector, diff)
			}
		})
	}
}

func TestSelectorMatcher(t *testing.T) {
	matcher := css.NewSelectorMatcher[string]()
	add := func(selector, name string) {
		sels, err := css.Parse(selector)
		require.NoError(t, err)
		matcher.AddSelectables(sels, name)
	}
	add("child", "ChildComponent")
	add("[some-directive]", "SomeDirective")
	add("[ngIf]", "NgIf")
	add("button:not(.disabled)", "EnabledButton")
	add("a, [href]", "Link")

	match := func(sel *css.CssSelector) []string {
		var got []string
		matcher.Match(sel, func(_ *css.CssSelector, name string) {
			got = append(got, name)
		})
		return got
	}

	t.Run("should match elements and empty-valued attributes", func(t *testing.T) {
		sel := css.CreateElementSelector("child", [][2]string{{"some-directive", ""}})
		assert.ElementsMatch(t, []string{"ChildComponent", "SomeDirective"}, match(sel))
	})

	t.Run("should match attribute selectors regardless of value", func(t *testing.T) {
		sel := css.CreateElementSelector("ng-template", [][2]string{{"ngIf", ""}})
		assert.Equal(t, []string{"NgIf"}, match(sel))
	})

	t.Run("should honour :not", func(t *testing.T) {
		assert.Equal(t, []string{"EnabledButton"}, match(css.CreateElementSelector("button", nil)))
		assert.Empty(t, match(css.CreateElementSelector("button", [][2]string{{"class", "big disabled"}})))
	})

	t.Run("should report a selector list once", func(t *testing.T) {
		sel := css.CreateElementSelector("a", [][2]string{{"href", "/"}})
		assert.Equal(t, []string{"Link"}, match(sel))
	})
}
