package treesitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/jsast"
	"ngc-linker/packages/compiler/output"
)

// Options configures LinkSource
type Options struct {
	// SourceMap builds a source map of the linked output
	SourceMap bool
	// Language overrides the grammar chosen from the file extension
	Language Language
	Logger   *slog.Logger
}

// Diagnostic is a declaration that could not be linked. Line and Column are
// 1-based.
type Diagnostic struct {
	File      string
	Line      int
	Column    int
	Message   string
	CodeFrame string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// Result is a linked file
type Result struct {
	Code string
	// Diagnostics lists the declarations that were left untouched
	Diagnostics []Diagnostic
	// Linked counts the replaced declarations
	Linked    int
	SourceMap *output.SourceMap
}

type replacement struct {
	start, end int
	text       string
	mappings   []jsast.Mapping
}

// LinkSource links every partial declaration of src. Declarations that fail
// are reported as diagnostics and left as they are; the error return is
// reserved for failures of the whole file.
func LinkSource(ctx context.Context, path string, src []byte, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	lang := opts.Language
	if lang == "" {
		lang = LanguageForPath(path)
	}

	tree, root, err := parseTree(ctx, lang, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer tree.Close()

	code := string(src)
	lines := newLineIndex(code)
	if errNode, ok := firstError(root); ok {
		line, col := lines.position(int(errNode.StartByte()))
		return nil, fmt.Errorf("%s:%d:%d: %w", path, line+1, col+1, ErrSyntax)
	}

	var calls []sitter.Node
	collectDeclarationCalls(root, src, &calls)
	result := &Result{Code: code}
	if len(calls) == 0 {
		return result, nil
	}

	module := isModule(root)
	logger.Debug("linking file", "file", path, "declarations", len(calls), "module", module)

	conv := newConverter(src)
	fileLinker := linker.CreateLinker(path, code, linker.LinkerEnvironment[jsast.Statement, jsast.Expression]{
		Host:    jsast.Host{},
		Factory: jsast.Factory{},
	}, linker.LinkerOptions{
		EnableGlobalStatements: module,
		SourceMapping:          opts.SourceMap,
		Logger:                 logger,
	})

	var replacements []replacement
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		callee := conv.expression(call.ChildByFieldName("function"))
		args := conv.arguments(call.ChildByFieldName("arguments"))
		linked, ok, err := fileLinker.LinkCall(callee, args)
		if err != nil {
			d := diagnosticFor(err, path, lines, call)
			logger.Warn("declaration not linked", "file", path, "line", d.Line, "column", d.Column, "error", d.Message)
			result.Diagnostics = append(result.Diagnostics, d)
			continue
		}
		if !ok {
			continue
		}
		printer := jsast.NewPrinter(lines.leadingIndent(int(call.StartByte())))
		printer.Expression(linked)
		replacements = append(replacements, replacement{
			start:    int(call.StartByte()),
			end:      int(call.EndByte()),
			text:     printer.String(),
			mappings: printer.Mappings(),
		})
		result.Linked++
	}

	statements, err := fileLinker.GetGlobalStatements()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(statements) > 0 {
		replacements = append(replacements, globalStatements(root, statements))
	}

	var segments []segment
	result.Code, segments = splice(code, replacements)
	if opts.SourceMap {
		if result.SourceMap, err = buildSourceMap(path, code, result.Code, segments); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return result, nil
}

// collectDeclarationCalls finds call expressions whose callee is named like a
// partial declaration. Arguments of a match are not searched.
func collectDeclarationCalls(n sitter.Node, src []byte, calls *[]sitter.Node) {
	if n.Type() == "call_expression" && calleeName(n.ChildByFieldName("function"), src) == linker.DeclareComponentSymbol {
		if args := n.ChildByFieldName("arguments"); !args.IsNull() && args.Type() == "arguments" {
			*calls = append(*calls, n)
			return
		}
	}
	for i := range n.NamedChildCount() {
		collectDeclarationCalls(n.NamedChild(i), src, calls)
	}
}

func calleeName(fn sitter.Node, src []byte) string {
	if fn.IsNull() {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return string(src[fn.StartByte():fn.EndByte()])
	case "member_expression":
		if property := fn.ChildByFieldName("property"); !property.IsNull() {
			return string(src[property.StartByte():property.EndByte()])
		}
	}
	return ""
}

// isModule reports whether the file has top level imports or exports
func isModule(root sitter.Node) bool {
	for i := range root.NamedChildCount() {
		switch root.NamedChild(i).Type() {
		case "import_statement", "export_statement":
			return true
		}
	}
	return false
}

// globalStatements places hoisted constants after the last import, or at
// the start of the file
func globalStatements(root sitter.Node, statements []jsast.Statement) replacement {
	at := -1
	for i := range root.NamedChildCount() {
		child := root.NamedChild(i)
		if child.Type() == "import_statement" {
			at = int(child.EndByte())
		}
	}

	printer := jsast.NewPrinter(0)
	if at >= 0 {
		printer.Program(&jsast.Program{Body: statements})
		return replacement{start: at, end: at, text: "\n\n" + printer.String(), mappings: shiftMappings(printer.Mappings(), 2)}
	}
	printer.Program(&jsast.Program{Body: statements})
	return replacement{start: 0, end: 0, text: printer.String() + "\n\n", mappings: printer.Mappings()}
}

func shiftMappings(mappings []jsast.Mapping, lines int) []jsast.Mapping {
	shifted := make([]jsast.Mapping, len(mappings))
	for i, m := range mappings {
		m.GeneratedLine += lines
		shifted[i] = m
	}
	return shifted
}

// segment is a piece of the output, either copied from the input or
// generated
type segment struct {
	outStart  int
	outEnd    int
	srcStart  int
	generated *replacement
}

func splice(code string, replacements []replacement) (string, []segment) {
	sort.SliceStable(replacements, func(i, j int) bool { return replacements[i].start < replacements[j].start })
	var sb strings.Builder
	var segments []segment
	pos := 0
	for i := range replacements {
		r := &replacements[i]
		if r.start > pos {
			segments = append(segments, segment{outStart: sb.Len(), outEnd: sb.Len() + r.start - pos, srcStart: pos})
			sb.WriteString(code[pos:r.start])
		}
		segments = append(segments, segment{outStart: sb.Len(), outEnd: sb.Len() + len(r.text), srcStart: r.start, generated: r})
		sb.WriteString(r.text)
		pos = r.end
	}
	if pos < len(code) {
		segments = append(segments, segment{outStart: sb.Len(), outEnd: sb.Len() + len(code) - pos, srcStart: pos})
		sb.WriteString(code[pos:])
	}
	return sb.String(), segments
}

func diagnosticFor(err error, path string, lines *lineIndex, call sitter.Node) Diagnostic {
	offset := int(call.StartByte())
	var fatal *ast.FatalLinkerError
	if errors.As(err, &fatal) {
		if node, ok := fatal.Node.(jsast.Node); ok && node != nil && node.Location().Range != nil {
			offset = node.Location().Range.StartPos
		}
	}
	line, col := lines.position(offset)
	return Diagnostic{
		File:      path,
		Line:      line + 1,
		Column:    col + 1,
		Message:   err.Error(),
		CodeFrame: codeFrame(lines, line, col, 2),
	}
}
