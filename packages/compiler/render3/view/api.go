package view

import (
	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/template_parser"
	"ngc-linker/packages/compiler/util"
)

// R3ComponentMetadata is everything needed to compile a component definition
type R3ComponentMetadata struct {
	// Name of the component class, used to derive function names
	Name string
	// Type is an expression referencing the component class
	Type           output.OutputExpression
	TypeSourceSpan *util.ParseSourceSpan
	// Selector is the raw selector; empty when the component has none
	Selector string

	Queries     []R3QueryMetadata
	ViewQueries []R3QueryMetadata
	Host        R3HostMetadata

	// Inputs and Outputs keep declaration order
	Inputs  []R3InputMetadata
	Outputs []R3OutputMetadata
	// ExportAs is omitted from the definition when nil
	ExportAs []string

	Providers     output.OutputExpression
	ViewProviders output.OutputExpression

	UsesInheritance bool
	FullInheritance bool
	UsesOnChanges   bool

	Template   R3ComponentTemplate
	Directives []R3UsedDirectiveMetadata
	Pipes      []R3UsedPipeMetadata

	Styles          []string
	Encapsulation   core.ViewEncapsulation
	Animations      output.OutputExpression
	ChangeDetection core.ChangeDetectionStrategy

	// RelativeContextFilePath is the file the component was declared in
	RelativeContextFilePath string
}

// R3ComponentTemplate is a parsed template ready for code generation
type R3ComponentTemplate struct {
	Nodes []render3.Node
}

// R3InputMetadata maps a class property to its public binding name
type R3InputMetadata struct {
	ClassPropertyName   string
	BindingPropertyName string
}

// R3OutputMetadata maps a class property to its public event name
type R3OutputMetadata struct {
	ClassPropertyName   string
	BindingPropertyName string
}

// R3UsedDirectiveMetadata is a directive the template may match
type R3UsedDirectiveMetadata struct {
	Selector   string
	Expression output.OutputExpression
	Inputs     []string
	Outputs    []string
	ExportAs   []string
}

// R3UsedPipeMetadata is a pipe the template may call
type R3UsedPipeMetadata struct {
	Name       string
	Expression output.OutputExpression
}

// R3HostMetadata describes the host element bindings of a component.
// Listeners and Properties are keyed by event and property name, without the
// surrounding brackets.
type R3HostMetadata struct {
	Attributes        []R3HostAttribute
	Listeners         []template_parser.HostEntry
	Properties        []template_parser.HostEntry
	SpecialAttributes R3HostSpecialAttributes
}

// R3HostAttribute is a static attribute set on the host element
type R3HostAttribute struct {
	Name  string
	Value output.OutputExpression
}

// R3HostSpecialAttributes holds the static class and style host attributes,
// which are emitted with their own attribute markers.
type R3HostSpecialAttributes struct {
	ClassAttr *string
	StyleAttr *string
}

// R3QueryMetadata describes a content or view query
type R3QueryMetadata struct {
	PropertyName string
	// First selects `QueryList.first` instead of the whole list
	First bool
	// Predicate is either []string of reference names or an
	// output.OutputExpression referencing a type
	Predicate   interface{}
	Descendants bool
	// Read is nil when the query reads the default token
	Read                    output.OutputExpression
	Static                  bool
	EmitDistinctChangesOnly bool
}

// R3ComponentDef is the result of compiling a component
type R3ComponentDef struct {
	Expression output.OutputExpression
	Statements []output.OutputStatement
}
