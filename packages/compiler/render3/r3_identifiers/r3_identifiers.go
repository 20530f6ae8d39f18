// Package r3_identifiers names the runtime symbols emitted by the template
// compiler. Every reference resolves against the framework core module.
package r3_identifiers

import (
	"ngc-linker/packages/compiler/output"
)

// CORE is the module every instruction is imported from
var CORE = "@angular/core"

func ref(name string) *output.ExternalReference {
	return output.NewExternalReference(&CORE, &name)
}

// Core references the core module namespace itself
var Core = output.NewExternalReference(&CORE, nil)

// Instructions
var (
	Element      = ref("ɵɵelement")
	ElementStart = ref("ɵɵelementStart")
	ElementEnd   = ref("ɵɵelementEnd")

	ElementContainer      = ref("ɵɵelementContainer")
	ElementContainerStart = ref("ɵɵelementContainerStart")
	ElementContainerEnd   = ref("ɵɵelementContainerEnd")

	NamespaceHTML   = ref("ɵɵnamespaceHTML")
	NamespaceSVG    = ref("ɵɵnamespaceSVG")
	NamespaceMathML = ref("ɵɵnamespaceMathML")

	Advance = ref("ɵɵadvance")

	Text             = ref("ɵɵtext")
	TextInterpolate  = ref("ɵɵtextInterpolate")
	TextInterpolate1 = ref("ɵɵtextInterpolate1")
	TextInterpolate2 = ref("ɵɵtextInterpolate2")
	TextInterpolate3 = ref("ɵɵtextInterpolate3")
	TextInterpolate4 = ref("ɵɵtextInterpolate4")
	TextInterpolate5 = ref("ɵɵtextInterpolate5")
	TextInterpolate6 = ref("ɵɵtextInterpolate6")
	TextInterpolate7 = ref("ɵɵtextInterpolate7")
	TextInterpolate8 = ref("ɵɵtextInterpolate8")
	TextInterpolateV = ref("ɵɵtextInterpolateV")

	Property              = ref("ɵɵproperty")
	PropertyInterpolate   = ref("ɵɵpropertyInterpolate")
	PropertyInterpolate1  = ref("ɵɵpropertyInterpolate1")
	PropertyInterpolate2  = ref("ɵɵpropertyInterpolate2")
	PropertyInterpolate3  = ref("ɵɵpropertyInterpolate3")
	PropertyInterpolate4  = ref("ɵɵpropertyInterpolate4")
	PropertyInterpolate5  = ref("ɵɵpropertyInterpolate5")
	PropertyInterpolate6  = ref("ɵɵpropertyInterpolate6")
	PropertyInterpolate7  = ref("ɵɵpropertyInterpolate7")
	PropertyInterpolate8  = ref("ɵɵpropertyInterpolate8")
	PropertyInterpolateV  = ref("ɵɵpropertyInterpolateV")
	Attribute             = ref("ɵɵattribute")
	AttributeInterpolate1 = ref("ɵɵattributeInterpolate1")
	AttributeInterpolate2 = ref("ɵɵattributeInterpolate2")
	AttributeInterpolate3 = ref("ɵɵattributeInterpolate3")
	AttributeInterpolate4 = ref("ɵɵattributeInterpolate4")
	AttributeInterpolate5 = ref("ɵɵattributeInterpolate5")
	AttributeInterpolate6 = ref("ɵɵattributeInterpolate6")
	AttributeInterpolate7 = ref("ɵɵattributeInterpolate7")
	AttributeInterpolate8 = ref("ɵɵattributeInterpolate8")
	AttributeInterpolateV = ref("ɵɵattributeInterpolateV")
	HostProperty          = ref("ɵɵhostProperty")

	Listener        = ref("ɵɵlistener")
	ResolveWindow   = ref("ɵɵresolveWindow")
	ResolveDocument = ref("ɵɵresolveDocument")
	ResolveBody     = ref("ɵɵresolveBody")

	TemplateCreate = ref("ɵɵtemplate")
	NextContext    = ref("ɵɵnextContext")
	GetCurrentView = ref("ɵɵgetCurrentView")
	RestoreView    = ref("ɵɵrestoreView")

	Pipe      = ref("ɵɵpipe")
	PipeBind1 = ref("ɵɵpipeBind1")
	PipeBind2 = ref("ɵɵpipeBind2")
	PipeBind3 = ref("ɵɵpipeBind3")
	PipeBind4 = ref("ɵɵpipeBind4")
	PipeBindV = ref("ɵɵpipeBindV")

	PureFunction0 = ref("ɵɵpureFunction0")
	PureFunction1 = ref("ɵɵpureFunction1")
	PureFunction2 = ref("ɵɵpureFunction2")
	PureFunction3 = ref("ɵɵpureFunction3")
	PureFunction4 = ref("ɵɵpureFunction4")
	PureFunction5 = ref("ɵɵpureFunction5")
	PureFunction6 = ref("ɵɵpureFunction6")
	PureFunction7 = ref("ɵɵpureFunction7")
	PureFunction8 = ref("ɵɵpureFunction8")
	PureFunctionV = ref("ɵɵpureFunctionV")

	ContentQuery = ref("ɵɵcontentQuery")
	ViewQuery    = ref("ɵɵviewQuery")
	QueryRefresh = ref("ɵɵqueryRefresh")
	LoadQuery    = ref("ɵɵloadQuery")

	DefineComponent = ref("ɵɵdefineComponent")

	ProvidersFeature         = ref("ɵɵProvidersFeature")
	InheritDefinitionFeature = ref("ɵɵInheritDefinitionFeature")
	CopyDefinitionFeature    = ref("ɵɵCopyDefinitionFeature")
	NgOnChangesFeature       = ref("ɵɵNgOnChangesFeature")
)

var textInterpolateByArity = []*output.ExternalReference{
	TextInterpolate, TextInterpolate1, TextInterpolate2, TextInterpolate3, TextInterpolate4,
	TextInterpolate5, TextInterpolate6, TextInterpolate7, TextInterpolate8,
}

var propertyInterpolateByArity = []*output.ExternalReference{
	PropertyInterpolate, PropertyInterpolate1, PropertyInterpolate2, PropertyInterpolate3, PropertyInterpolate4,
	PropertyInterpolate5, PropertyInterpolate6, PropertyInterpolate7, PropertyInterpolate8,
}

var attributeInterpolateByArity = []*output.ExternalReference{
	nil, AttributeInterpolate1, AttributeInterpolate2, AttributeInterpolate3, AttributeInterpolate4,
	AttributeInterpolate5, AttributeInterpolate6, AttributeInterpolate7, AttributeInterpolate8,
}

var pureFunctionByArity = []*output.ExternalReference{
	PureFunction0, PureFunction1, PureFunction2, PureFunction3, PureFunction4,
	PureFunction5, PureFunction6, PureFunction7, PureFunction8,
}

var pipeBindByArity = []*output.ExternalReference{nil, PipeBind1, PipeBind2, PipeBind3, PipeBind4}

// TextInterpolateFor selects the text interpolation instruction for an
// interpolation with the given number of expressions. The variadic form is
// reported with variadic set.
func TextInterpolateFor(expressions int) (instruction *output.ExternalReference, variadic bool) {
	if expressions < len(textInterpolateByArity) {
		return textInterpolateByArity[expressions], false
	}
	return TextInterpolateV, true
}

// PropertyInterpolateFor is TextInterpolateFor for property bindings
func PropertyInterpolateFor(expressions int) (instruction *output.ExternalReference, variadic bool) {
	if expressions < len(propertyInterpolateByArity) {
		return propertyInterpolateByArity[expressions], false
	}
	return PropertyInterpolateV, true
}

// AttributeInterpolateFor is TextInterpolateFor for attribute bindings. An
// interpolation with a single expression and no surrounding text never
// reaches it; it is bound with Attribute directly.
func AttributeInterpolateFor(expressions int) (instruction *output.ExternalReference, variadic bool) {
	if expressions > 0 && expressions < len(attributeInterpolateByArity) {
		return attributeInterpolateByArity[expressions], false
	}
	return AttributeInterpolateV, true
}

// PureFunctionFor selects the pure function instruction for a literal with
// the given number of dynamic entries.
func PureFunctionFor(args int) (instruction *output.ExternalReference, variadic bool) {
	if args < len(pureFunctionByArity) {
		return pureFunctionByArity[args], false
	}
	return PureFunctionV, true
}

// PipeBindFor selects the pipe binding instruction for a pipe receiving args
// values, the piped expression included.
func PipeBindFor(args int) (instruction *output.ExternalReference, variadic bool) {
	if args > 0 && args < len(pipeBindByArity) {
		return pipeBindByArity[args], false
	}
	return PipeBindV, true
}
