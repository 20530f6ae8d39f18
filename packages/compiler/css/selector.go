// Package css parses the CSS selector subset used by directive selectors and
// matches element descriptions against registered selectors.
package css

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"ngc-linker/packages/compiler/core"
)

var (
	ErrNestedNot       = errors.New("nesting :not in a selector is not allowed")
	ErrMultipleInNot   = errors.New("multiple selectors in :not are not supported")
	ErrUnescapedDollar = errors.New(`unescaped "$" is not supported, please escape with "\$"`)
)

// Submatch indices of selectorRegexp.
const (
	reNot = iota + 1
	reTag
	rePrefix
	reAttrName
	reAttrDoubleQuoted
	reAttrSingleQuoted
	reAttrUnquoted
	reNotEnd
	reSeparator
)

// Go regexp has no backreferences, so each quoting style of an attribute value
// gets its own group.
var selectorRegexp = regexp.MustCompile(
	`(\:not\()|` +
		`(([\.\#]?)[-\w]+)|` +
		`(?:\[([-.\w*\\$]+)(?:="([^\]"]*)"|='([^\]']*)'|=([^\]\s]+))?\])|` +
		`(\))|` +
		`(\s*,\s*)`,
)

// CssSelector is one compound selector: an optional element name, classes,
// attributes and negated compound selectors.
type CssSelector struct {
	Element      string
	ClassNames   []string
	Attrs        []string // name, value, name, value, ...
	NotSelectors []*CssSelector
}

// NewCssSelector creates a new CssSelector
func NewCssSelector() *CssSelector {
	return &CssSelector{}
}

// Parse splits a selector list into its compound selectors
func Parse(selector string) ([]*CssSelector, error) {
	var results []*CssSelector
	addResult := func(sel *CssSelector) {
		if len(sel.NotSelectors) > 0 && sel.Element == "" && len(sel.ClassNames) == 0 && len(sel.Attrs) == 0 {
			sel.Element = "*"
		}
		results = append(results, sel)
	}

	cssSelector := NewCssSelector()
	current := cssSelector
	inNot := false

	for _, match := range selectorRegexp.FindAllStringSubmatchIndex(selector, -1) {
		group := func(i int) (string, bool) {
			if match[2*i] < 0 {
				return "", false
			}
			return selector[match[2*i]:match[2*i+1]], true
		}

		if _, ok := group(reNot); ok {
			if inNot {
				return nil, ErrNestedNot
			}
			inNot = true
			current = NewCssSelector()
			cssSelector.NotSelectors = append(cssSelector.NotSelectors, current)
		}
		if tag, ok := group(reTag); ok {
			prefix, _ := group(rePrefix)
			switch prefix {
			case "#":
				current.AddAttribute("id", tag[1:])
			case ".":
				current.AddClassName(tag[1:])
			default:
				current.Element = tag
			}
		}
		if name, ok := group(reAttrName); ok {
			attr, err := unescapeAttribute(name)
			if err != nil {
				return nil, err
			}
			value := ""
			for _, g := range []int{reAttrDoubleQuoted, reAttrSingleQuoted, reAttrUnquoted} {
				if v, ok := group(g); ok {
					value = v
					break
				}
			}
			current.AddAttribute(attr, value)
		}
		if _, ok := group(reNotEnd); ok {
			inNot = false
			current = cssSelector
		}
		if _, ok := group(reSeparator); ok {
			if inNot {
				return nil, ErrMultipleInNot
			}
			addResult(cssSelector)
			cssSelector = NewCssSelector()
			current = cssSelector
		}
	}
	addResult(cssSelector)
	return results, nil
}

// CreateElementSelector describes an element for matching purposes. The class
// attribute is split into class names.
func CreateElementSelector(elementName string, attributes [][2]string) *CssSelector {
	sel := NewCssSelector()
	sel.Element = elementName
	for _, attr := range attributes {
		name, value := attr[0], attr[1]
		sel.AddAttribute(name, value)
		if strings.ToLower(name) == "class" {
			for _, className := range strings.Fields(value) {
				sel.AddClassName(className)
			}
		}
	}
	return sel
}

func unescapeAttribute(attr string) (string, error) {
	var sb strings.Builder
	escaping := false
	for i := 0; i < len(attr); i++ {
		ch := attr[i]
		if ch == '\\' {
			escaping = true
			continue
		}
		if ch == '$' && !escaping {
			return "", fmt.Errorf("attribute selector %q: %w", attr, ErrUnescapedDollar)
		}
		escaping = false
		sb.WriteByte(ch)
	}
	return sb.String(), nil
}

func escapeAttribute(attr string) string {
	return strings.ReplaceAll(strings.ReplaceAll(attr, `\`, `\\`), "$", `\$`)
}

// IsElementSelector reports whether the selector is a bare element name
func (cs *CssSelector) IsElementSelector() bool {
	return cs.Element != "" && len(cs.ClassNames) == 0 && len(cs.Attrs) == 0 && len(cs.NotSelectors) == 0
}

// AddAttribute adds an attribute; values are matched case-insensitively
func (cs *CssSelector) AddAttribute(name, value string) {
	cs.Attrs = append(cs.Attrs, name, strings.ToLower(value))
}

// GetAttrs flattens the selector attributes into name/value pairs, with the
// class names first as a single `class` attribute
func (cs *CssSelector) GetAttrs() []string {
	var attrs []string
	if len(cs.ClassNames) > 0 {
		attrs = append(attrs, "class", strings.Join(cs.ClassNames, " "))
	}
	return append(attrs, cs.Attrs...)
}

// AddClassName adds a class name
func (cs *CssSelector) AddClassName(name string) {
	cs.ClassNames = append(cs.ClassNames, strings.ToLower(name))
}

func (cs *CssSelector) String() string {
	var sb strings.Builder
	sb.WriteString(cs.Element)
	for _, klass := range cs.ClassNames {
		sb.WriteString("." + klass)
	}
	for i := 0; i < len(cs.Attrs); i += 2 {
		name := escapeAttribute(cs.Attrs[i])
		if value := cs.Attrs[i+1]; value != "" {
			fmt.Fprintf(&sb, "[%s=%s]", name, value)
		} else {
			fmt.Fprintf(&sb, "[%s]", name)
		}
	}
	for _, not := range cs.NotSelectors {
		fmt.Fprintf(&sb, ":not(%s)", not)
	}
	return sb.String()
}

// ToR3Selector flattens the selector into the runtime representation
func (cs *CssSelector) ToR3Selector() core.R3CssSelector {
	element := cs.Element
	if element == "*" {
		element = ""
	}
	out := core.R3CssSelector{element}
	for _, attr := range cs.Attrs {
		out = append(out, attr)
	}
	out = appendClasses(out, cs.ClassNames, core.SelectorFlagsCLASS)
	for _, not := range cs.NotSelectors {
		out = append(out, not.toNegativeR3Selector()...)
	}
	return out
}

func (cs *CssSelector) toNegativeR3Selector() core.R3CssSelector {
	var out core.R3CssSelector
	switch {
	case cs.Element != "":
		out = core.R3CssSelector{core.SelectorFlagsNOT | core.SelectorFlagsELEMENT, cs.Element}
		for _, attr := range cs.Attrs {
			out = append(out, attr)
		}
		return appendClasses(out, cs.ClassNames, core.SelectorFlagsCLASS)
	case len(cs.Attrs) > 0:
		out = core.R3CssSelector{core.SelectorFlagsNOT | core.SelectorFlagsATTRIBUTE}
		for _, attr := range cs.Attrs {
			out = append(out, attr)
		}
		return appendClasses(out, cs.ClassNames, core.SelectorFlagsCLASS)
	case len(cs.ClassNames) > 0:
		return appendClasses(core.R3CssSelector{}, cs.ClassNames, core.SelectorFlagsNOT|core.SelectorFlagsCLASS)
	}
	return core.R3CssSelector{}
}

func appendClasses(out core.R3CssSelector, classNames []string, flag core.SelectorFlags) core.R3CssSelector {
	if len(classNames) == 0 {
		return out
	}
	out = append(out, flag)
	for _, className := range classNames {
		out = append(out, className)
	}
	return out
}

// ParseSelectorToR3Selector parses a selector string into the runtime form.
// An empty selector yields an empty list.
func ParseSelectorToR3Selector(selector string) (core.R3CssSelectorList, error) {
	if selector == "" {
		return core.R3CssSelectorList{}, nil
	}
	selectors, err := Parse(selector)
	if err != nil {
		return nil, err
	}
	out := make(core.R3CssSelectorList, len(selectors))
	for i, sel := range selectors {
		out[i] = sel.ToR3Selector()
	}
	return out, nil
}
