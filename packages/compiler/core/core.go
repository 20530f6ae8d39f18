// Package core holds the runtime enums shared by the template compiler and
// the linker. Declarations name enum members by symbol, so every enum that
// crosses that boundary also exposes an exact-match name table.
package core

import "fmt"

// ViewEncapsulation represents the encapsulation strategy for component styles
type ViewEncapsulation int

const (
	ViewEncapsulationEmulated ViewEncapsulation = iota
	// Historically the 1 value was for Native encapsulation which has been removed as of v11.
	_
	ViewEncapsulationNone
	ViewEncapsulationShadowDom
)

var viewEncapsulationNames = map[string]ViewEncapsulation{
	"Emulated":  ViewEncapsulationEmulated,
	"None":      ViewEncapsulationNone,
	"ShadowDom": ViewEncapsulationShadowDom,
}

// ParseViewEncapsulation resolves a ViewEncapsulation member by its declared name
func ParseViewEncapsulation(name string) (ViewEncapsulation, bool) {
	v, ok := viewEncapsulationNames[name]
	return v, ok
}

func (v ViewEncapsulation) String() string {
	for name, value := range viewEncapsulationNames {
		if value == v {
			return name
		}
	}
	return fmt.Sprintf("ViewEncapsulation(%d)", int(v))
}

// ChangeDetectionStrategy represents the change detection strategy
type ChangeDetectionStrategy int

const (
	ChangeDetectionStrategyOnPush ChangeDetectionStrategy = iota
	ChangeDetectionStrategyDefault
)

var changeDetectionStrategyNames = map[string]ChangeDetectionStrategy{
	"OnPush":  ChangeDetectionStrategyOnPush,
	"Default": ChangeDetectionStrategyDefault,
}

// ParseChangeDetectionStrategy resolves a ChangeDetectionStrategy member by its declared name
func ParseChangeDetectionStrategy(name string) (ChangeDetectionStrategy, bool) {
	v, ok := changeDetectionStrategyNames[name]
	return v, ok
}

func (c ChangeDetectionStrategy) String() string {
	switch c {
	case ChangeDetectionStrategyOnPush:
		return "OnPush"
	case ChangeDetectionStrategyDefault:
		return "Default"
	}
	return fmt.Sprintf("ChangeDetectionStrategy(%d)", int(c))
}

// SelectorFlags are flags used to generate R3-style CSS Selectors
type SelectorFlags int

const (
	SelectorFlagsNOT       SelectorFlags = 0b0001 // Beginning of a new negative selector
	SelectorFlagsATTRIBUTE SelectorFlags = 0b0010 // Mode for matching attributes
	SelectorFlagsELEMENT   SelectorFlags = 0b0100 // Mode for matching tag names
	SelectorFlagsCLASS     SelectorFlags = 0b1000 // Mode for matching class names
)

// R3CssSelector is a flat selector: strings interleaved with SelectorFlags
type R3CssSelector []interface{}

// R3CssSelectorList represents a list of R3 CSS selectors
type R3CssSelectorList []R3CssSelector

// RenderFlags are passed into template functions to determine which blocks should be executed
type RenderFlags int

const (
	RenderFlagsCreate RenderFlags = 0b01
	RenderFlagsUpdate RenderFlags = 0b10
)

// AttributeMarker separates the sections of a `consts` attribute array
type AttributeMarker int

const (
	AttributeMarkerNamespaceURI AttributeMarker = iota
	AttributeMarkerClasses
	AttributeMarkerStyles
	AttributeMarkerBindings
	AttributeMarkerTemplate
	AttributeMarkerProjectAs
	AttributeMarkerI18n
)

// QueryFlags are the bit flags passed to the query instructions
type QueryFlags int

const (
	QueryFlagsNone                    QueryFlags = 0b0000
	QueryFlagsDescendants             QueryFlags = 0b0001
	QueryFlagsIsStatic                QueryFlags = 0b0010
	QueryFlagsEmitDistinctChangesOnly QueryFlags = 0b0100
)
