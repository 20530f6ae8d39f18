package linker

import (
	"strings"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/core"
	ep "ngc-linker/packages/compiler/expression_parser"
	"ngc-linker/packages/compiler/ml_parser"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/view"
	"ngc-linker/packages/compiler/template_parser"
	"ngc-linker/packages/compiler/util"
)

type componentMeta struct {
	metadata      *view.R3ComponentMetadata
	bindingParser *template_parser.BindingParser
}

// toR3ComponentMeta reads a version 1 component declaration. Every field is
// required.
func toR3ComponentMeta[TExpression any](
	metaObj *ast.AstObject[TExpression],
	host ast.AstHost[TExpression],
	sourceURL string,
	code string,
) (*componentMeta, error) {
	typeNode, err := metaObj.GetNode("type")
	if err != nil {
		return nil, err
	}
	typeName, ok := host.GetSymbolName(typeNode)
	if !ok {
		typeName = "anonymous"
	}
	typeExpr, err := metaObj.GetOpaque("type")
	if err != nil {
		return nil, err
	}

	interpolation, err := parseInterpolation(metaObj)
	if err != nil {
		return nil, err
	}
	nodes, err := parseComponentTemplate(metaObj, host, typeName, sourceURL, code, interpolation)
	if err != nil {
		return nil, err
	}

	meta := &view.R3ComponentMetadata{
		Name:                    typeName,
		Type:                    typeExpr,
		TypeSourceSpan:          util.TypeSourceSpan("Component", typeName, sourceURL),
		Template:                view.R3ComponentTemplate{Nodes: nodes},
		RelativeContextFilePath: sourceURL,
	}

	if meta.Selector, err = metaObj.GetString("selector"); err != nil {
		return nil, err
	}
	if meta.Host, err = parseHostMetadata(metaObj); err != nil {
		return nil, err
	}
	if meta.Inputs, err = parseInputs(metaObj); err != nil {
		return nil, err
	}
	if meta.Outputs, err = parseOutputs(metaObj); err != nil {
		return nil, err
	}
	if meta.Queries, err = parseQueries(metaObj, "queries"); err != nil {
		return nil, err
	}
	if meta.ViewQueries, err = parseQueries(metaObj, "viewQueries"); err != nil {
		return nil, err
	}
	if meta.Providers, err = opaque(metaObj, "providers"); err != nil {
		return nil, err
	}
	if meta.ViewProviders, err = opaque(metaObj, "viewProviders"); err != nil {
		return nil, err
	}
	if meta.Animations, err = opaque(metaObj, "animations"); err != nil {
		return nil, err
	}
	if meta.Styles, err = stringArray(metaObj, "styles"); err != nil {
		return nil, err
	}
	if meta.ExportAs, err = stringArray(metaObj, "exportAs"); err != nil {
		return nil, err
	}
	if meta.Directives, err = parseDirectives(metaObj); err != nil {
		return nil, err
	}
	if meta.Pipes, err = parsePipes(metaObj); err != nil {
		return nil, err
	}
	if meta.UsesInheritance, err = metaObj.GetBoolean("usesInheritance"); err != nil {
		return nil, err
	}
	if meta.FullInheritance, err = metaObj.GetBoolean("fullInheritance"); err != nil {
		return nil, err
	}
	if meta.UsesOnChanges, err = metaObj.GetBoolean("usesOnChanges"); err != nil {
		return nil, err
	}
	if meta.Encapsulation, err = parseEncapsulation(metaObj, host); err != nil {
		return nil, err
	}
	if meta.ChangeDetection, err = parseChangeDetectionStrategy(metaObj, host); err != nil {
		return nil, err
	}

	return &componentMeta{metadata: meta, bindingParser: view.MakeBindingParser(interpolation)}, nil
}

func parseInterpolation[TExpression any](metaObj *ast.AstObject[TExpression]) (ep.InterpolationConfig, error) {
	markers, err := stringArray(metaObj, "interpolation")
	if err != nil {
		return ep.InterpolationConfig{}, err
	}
	if len(markers) != 2 {
		node, _ := metaObj.GetNode("interpolation")
		return ep.InterpolationConfig{}, ast.NewFatalLinkerError(node, "Unsupported interpolation config, expected an array containing exactly two strings.")
	}
	return ep.InterpolationConfig{Start: markers[0], End: markers[1]}, nil
}

// parseComponentTemplate parses the template where it is written in the
// file, so that template errors and source ranges refer to the file itself.
// Nodes without a location, such as ones built in memory, are parsed from
// the string value instead.
func parseComponentTemplate[TExpression any](
	metaObj *ast.AstObject[TExpression],
	host ast.AstHost[TExpression],
	typeName, sourceURL, code string,
	interpolation ep.InterpolationConfig,
) ([]render3.Node, error) {
	templateStr, err := metaObj.GetString("template")
	if err != nil {
		return nil, err
	}
	templateNode, _ := metaObj.GetNode("template")

	var template *view.ParsedTemplate
	if r, err := host.GetRange(templateNode); err == nil && code != "" && r.EndPos-r.StartPos >= 2 {
		// skip the quotes of the string literal
		template = view.ParseTemplate(code, sourceURL, view.ParseTemplateOptions{
			InterpolationConfig: interpolation,
			EscapedString:       true,
			Range: &ml_parser.Range{
				StartPos:  r.StartPos + 1,
				StartLine: r.StartLine,
				StartCol:  r.StartCol + 1,
				EndPos:    r.EndPos - 1,
			},
		})
	} else {
		template = view.ParseTemplate(templateStr, sourceURL, view.ParseTemplateOptions{
			InterpolationConfig: interpolation,
		})
	}

	if len(template.Errors) > 0 {
		messages := make([]string, len(template.Errors))
		for i, e := range template.Errors {
			messages[i] = e.String()
		}
		return nil, ast.NewFatalLinkerError(templateNode, "Errors found in the template of %s: %s", typeName, strings.Join(messages, ", "))
	}
	return template.Nodes, nil
}

func parseHostMetadata[TExpression any](metaObj *ast.AstObject[TExpression]) (view.R3HostMetadata, error) {
	var host view.R3HostMetadata
	hostObj, err := metaObj.GetObject("host")
	if err != nil {
		return host, err
	}

	attributes, err := hostObj.GetObject("attributes")
	if err != nil {
		return host, err
	}
	attrs, err := ast.ToLiteral(attributes, func(value *ast.AstValue[TExpression]) (*ast.AstValue[TExpression], error) {
		return value, nil
	})
	if err != nil {
		return host, err
	}
	for _, attr := range attrs {
		// static class and style attributes get their own markers
		if (attr.Key == "class" || attr.Key == "style") && attr.Value.IsString() {
			value, err := attr.Value.GetString()
			if err != nil {
				return host, err
			}
			if attr.Key == "class" {
				host.SpecialAttributes.ClassAttr = &value
			} else {
				host.SpecialAttributes.StyleAttr = &value
			}
			continue
		}
		host.Attributes = append(host.Attributes, view.R3HostAttribute{Name: attr.Key, Value: attr.Value.GetOpaque()})
	}

	if host.Listeners, err = hostEntries(hostObj, "listeners"); err != nil {
		return host, err
	}
	if host.Properties, err = hostEntries(hostObj, "properties"); err != nil {
		return host, err
	}
	return host, nil
}

func hostEntries[TExpression any](hostObj *ast.AstObject[TExpression], propertyName string) ([]template_parser.HostEntry, error) {
	obj, err := hostObj.GetObject(propertyName)
	if err != nil {
		return nil, err
	}
	entries, err := ast.ToLiteral(obj, (*ast.AstValue[TExpression]).GetString)
	if err != nil {
		return nil, err
	}
	result := make([]template_parser.HostEntry, len(entries))
	for i, entry := range entries {
		result[i] = template_parser.HostEntry{Key: entry.Key, Value: entry.Value}
	}
	return result, nil
}

// parseInputs accepts both `prop: 'publicName'` and
// `prop: ['publicName', 'prop']`
func parseInputs[TExpression any](metaObj *ast.AstObject[TExpression]) ([]view.R3InputMetadata, error) {
	inputsObj, err := metaObj.GetObject("inputs")
	if err != nil {
		return nil, err
	}
	entries, err := ast.ToLiteral(inputsObj, func(value *ast.AstValue[TExpression]) (string, error) {
		if !value.IsArray() {
			return value.GetString()
		}
		parts, err := value.GetArray()
		if err != nil {
			return "", err
		}
		if len(parts) != 2 {
			return "", ast.NewFatalLinkerError(value.Node(), "Unsupported input, expected [publicName, propertyName].")
		}
		return parts[0].GetString()
	})
	if err != nil {
		return nil, err
	}
	inputs := make([]view.R3InputMetadata, len(entries))
	for i, entry := range entries {
		inputs[i] = view.R3InputMetadata{ClassPropertyName: entry.Key, BindingPropertyName: entry.Value}
	}
	return inputs, nil
}

func parseOutputs[TExpression any](metaObj *ast.AstObject[TExpression]) ([]view.R3OutputMetadata, error) {
	outputsObj, err := metaObj.GetObject("outputs")
	if err != nil {
		return nil, err
	}
	entries, err := ast.ToLiteral(outputsObj, (*ast.AstValue[TExpression]).GetString)
	if err != nil {
		return nil, err
	}
	outputs := make([]view.R3OutputMetadata, len(entries))
	for i, entry := range entries {
		outputs[i] = view.R3OutputMetadata{ClassPropertyName: entry.Key, BindingPropertyName: entry.Value}
	}
	return outputs, nil
}

func parseQueries[TExpression any](metaObj *ast.AstObject[TExpression], propertyName string) ([]view.R3QueryMetadata, error) {
	values, err := metaObj.GetArray(propertyName)
	if err != nil {
		return nil, err
	}
	queries := make([]view.R3QueryMetadata, 0, len(values))
	for _, value := range values {
		obj, err := value.GetObject()
		if err != nil {
			return nil, err
		}
		query, err := toQueryMetadata(obj)
		if err != nil {
			return nil, err
		}
		queries = append(queries, query)
	}
	return queries, nil
}

func toQueryMetadata[TExpression any](obj *ast.AstObject[TExpression]) (view.R3QueryMetadata, error) {
	var query view.R3QueryMetadata
	var err error
	if query.PropertyName, err = obj.GetString("propertyName"); err != nil {
		return query, err
	}
	if query.First, err = obj.GetBoolean("first"); err != nil {
		return query, err
	}
	predicate, err := obj.GetValue("predicate")
	if err != nil {
		return query, err
	}
	if predicate.IsArray() {
		names, err := predicate.GetArray()
		if err != nil {
			return query, err
		}
		refs := make([]string, len(names))
		for i, name := range names {
			if refs[i], err = name.GetString(); err != nil {
				return query, err
			}
		}
		query.Predicate = refs
	} else {
		query.Predicate = predicate.GetOpaque()
	}
	if query.Descendants, err = obj.GetBoolean("descendants"); err != nil {
		return query, err
	}
	if query.Read, err = opaque(obj, "read"); err != nil {
		return query, err
	}
	if query.Static, err = obj.GetBoolean("static"); err != nil {
		return query, err
	}
	return query, nil
}

// parseDirectives reads the directives a template may use. Only the selector
// and the type are needed for matching.
func parseDirectives[TExpression any](metaObj *ast.AstObject[TExpression]) ([]view.R3UsedDirectiveMetadata, error) {
	values, err := metaObj.GetArray("directives")
	if err != nil {
		return nil, err
	}
	directives := make([]view.R3UsedDirectiveMetadata, 0, len(values))
	for _, value := range values {
		obj, err := value.GetObject()
		if err != nil {
			return nil, err
		}
		selector, err := obj.GetString("selector")
		if err != nil {
			return nil, err
		}
		typeExpr, err := obj.GetOpaque("type")
		if err != nil {
			return nil, err
		}
		directives = append(directives, view.R3UsedDirectiveMetadata{Selector: selector, Expression: typeExpr})
	}
	return directives, nil
}

func parsePipes[TExpression any](metaObj *ast.AstObject[TExpression]) ([]view.R3UsedPipeMetadata, error) {
	pipesObj, err := metaObj.GetObject("pipes")
	if err != nil {
		return nil, err
	}
	entries, err := ast.ToLiteral(pipesObj, func(value *ast.AstValue[TExpression]) (output.OutputExpression, error) {
		return value.GetOpaque(), nil
	})
	if err != nil {
		return nil, err
	}
	pipes := make([]view.R3UsedPipeMetadata, len(entries))
	for i, entry := range entries {
		pipes[i] = view.R3UsedPipeMetadata{Name: entry.Key, Expression: entry.Value}
	}
	return pipes, nil
}

func parseEncapsulation[TExpression any](metaObj *ast.AstObject[TExpression], host ast.AstHost[TExpression]) (core.ViewEncapsulation, error) {
	node, err := metaObj.GetNode("encapsulation")
	if err != nil {
		return 0, err
	}
	symbolName, ok := host.GetSymbolName(node)
	if !ok {
		return 0, ast.NewFatalLinkerError(node, "Expected encapsulation to have a symbol name.")
	}
	encapsulation, ok := core.ParseViewEncapsulation(symbolName)
	if !ok {
		return 0, ast.NewFatalLinkerError(node, "Unsupported encapsulation")
	}
	return encapsulation, nil
}

func parseChangeDetectionStrategy[TExpression any](metaObj *ast.AstObject[TExpression], host ast.AstHost[TExpression]) (core.ChangeDetectionStrategy, error) {
	node, err := metaObj.GetNode("changeDetection")
	if err != nil {
		return 0, err
	}
	symbolName, ok := host.GetSymbolName(node)
	if !ok {
		return 0, ast.NewFatalLinkerError(node, "Expected change detection strategy to have a symbol name.")
	}
	strategy, ok := core.ParseChangeDetectionStrategy(symbolName)
	if !ok {
		return 0, ast.NewFatalLinkerError(node, "Unsupported change detection strategy")
	}
	return strategy, nil
}

func opaque[TExpression any](obj *ast.AstObject[TExpression], propertyName string) (output.OutputExpression, error) {
	expr, err := obj.GetOpaque(propertyName)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// stringArray always returns a non-nil slice, so an empty array in the
// declaration stays distinguishable from an absent value downstream
func stringArray[TExpression any](obj *ast.AstObject[TExpression], propertyName string) ([]string, error) {
	values, err := obj.GetArray(propertyName)
	if err != nil {
		return nil, err
	}
	result := make([]string, len(values))
	for i, value := range values {
		if result[i], err = value.GetString(); err != nil {
			return nil, err
		}
	}
	return result, nil
}
