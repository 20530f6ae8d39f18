// Package linker turns partial component declarations into full component
// definitions. A FileLinker is created per source file; the host integration
// calls LinkCall for every call expression and splices the results.
package linker

import (
	"errors"
	"log/slog"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/translator"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/view"
)

// DeclareComponentSymbol is the callee name of a partial component declaration
const DeclareComponentSymbol = "$ngDeclareComponent"

// ErrMissingNgImport is returned by GetGlobalStatements when constants were
// pooled but no declaration ever provided the core import
var ErrMissingNgImport = errors.New("invalid state: @angular/core import must be available")

// LinkerEnvironment is the host a FileLinker reads from and builds into
type LinkerEnvironment[TStatement, TExpression any] struct {
	Host    ast.AstHost[TExpression]
	Factory translator.AstFactory[TStatement, TExpression]
}

// LinkerOptions configures a FileLinker
type LinkerOptions struct {
	// EnableGlobalStatements shares one constant pool across the file and
	// hoists its statements through GetGlobalStatements. Module files set
	// it; scripts leave it off and get one IIFE per declaration that needs
	// constants.
	EnableGlobalStatements bool
	// SourceMapping attaches template source ranges to generated nodes
	SourceMapping bool
	// Logger receives per-declaration debug events; nil discards them
	Logger *slog.Logger
}

// FileLinker links the declarations of one source file. It is not safe for
// concurrent use.
type FileLinker[TStatement, TExpression any] struct {
	sourceURL string
	code      string
	env       LinkerEnvironment[TStatement, TExpression]
	options   LinkerOptions
	logger    *slog.Logger

	globalConstantPool *pool.ConstantPool
	ngImport           TExpression
	hasNgImport        bool
}

// CreateLinker creates the linker for the file at sourceURL. code is the full
// text of the file; templates are parsed in place so that their errors and
// source ranges point into it.
func CreateLinker[TStatement, TExpression any](
	sourceURL string,
	code string,
	env LinkerEnvironment[TStatement, TExpression],
	options LinkerOptions,
) *FileLinker[TStatement, TExpression] {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !options.SourceMapping {
		env.Factory = noSourceMapFactory[TStatement, TExpression]{env.Factory}
	}
	l := &FileLinker[TStatement, TExpression]{
		sourceURL: sourceURL,
		code:      code,
		env:       env,
		options:   options,
		logger:    logger.With("file", sourceURL),
	}
	if options.EnableGlobalStatements {
		l.globalConstantPool = pool.NewConstantPool()
	}
	return l
}

// IsPartialDeclaration reports whether callee names a declaration this linker
// handles
func (l *FileLinker[TStatement, TExpression]) IsPartialDeclaration(callee TExpression) bool {
	name, ok := l.env.Host.GetSymbolName(callee)
	return ok && name == DeclareComponentSymbol
}

// LinkCall links a single call expression. It returns false when the callee
// is not a partial declaration. A failure leaves the linker usable for the
// remaining calls of the file.
func (l *FileLinker[TStatement, TExpression]) LinkCall(callee TExpression, args []TExpression) (TExpression, bool, error) {
	var zero TExpression
	if !l.IsPartialDeclaration(callee) {
		return zero, false, nil
	}
	if len(args) != 1 {
		return zero, true, ast.NewFatalLinkerError(callee, "Expected %s to be called with exactly one argument.", DeclareComponentSymbol)
	}

	metaObj, err := ast.ParseAstObject(args[0], l.env.Host)
	if err != nil {
		return zero, true, err
	}
	version, err := metaObj.GetNumber("version")
	if err != nil {
		return zero, true, err
	}
	if version != 1 {
		versionNode, _ := metaObj.GetNode("version")
		return zero, true, ast.NewFatalLinkerError(versionNode, "Expected metadata version to be 1.")
	}

	meta, err := toR3ComponentMeta(metaObj, l.env.Host, l.sourceURL, l.code)
	if err != nil {
		return zero, true, err
	}
	ngImport, err := metaObj.GetNode("ngImport")
	if err != nil {
		return zero, true, err
	}

	// kept even when compilation fails below; constants pooled by earlier
	// declarations still need it
	l.ngImport = ngImport
	l.hasNgImport = true

	constantPool := l.globalConstantPool
	if constantPool == nil {
		constantPool = pool.NewConstantPool()
	}
	def, err := view.CompileComponentFromMetadata(meta.metadata, constantPool, meta.bindingParser)
	if err != nil {
		var templateErrs view.TemplateErrors
		if errors.As(err, &templateErrs) {
			templateNode, _ := metaObj.GetNode("template")
			return zero, true, ast.NewFatalLinkerError(templateNode, "Errors found in the template of %s: %s", meta.metadata.Name, templateErrs.Error())
		}
		return zero, true, ast.NewFatalLinkerError(args[0], err.Error())
	}

	result, err := translator.TranslateExpression(def.Expression, l.env.Factory, ngImport)
	if err != nil {
		return zero, true, err
	}
	l.logger.Debug("linked declaration", "component", meta.metadata.Name, "pooled", len(constantPool.GetStatements()))

	if l.globalConstantPool != nil {
		return result, true, nil
	}
	if len(constantPool.GetStatements()) == 0 {
		return result, true, nil
	}

	statements, err := translator.TranslateStatements(constantPool.GetStatements(), l.env.Factory, ngImport)
	if err != nil {
		return zero, true, err
	}
	iifeBody := l.env.Factory.CreateBlock(append(statements, l.env.Factory.CreateReturnStatement(result)))
	iife := l.env.Factory.CreateFunctionExpression("", nil, iifeBody)
	return l.env.Factory.CreateCallExpression(iife, nil, false), true, nil
}

// GetGlobalStatements returns the translated statements of the shared
// constant pool. It returns nil when global statements are disabled or the
// pool is empty.
func (l *FileLinker[TStatement, TExpression]) GetGlobalStatements() ([]TStatement, error) {
	if l.globalConstantPool == nil || len(l.globalConstantPool.GetStatements()) == 0 {
		return nil, nil
	}
	if !l.hasNgImport {
		return nil, ErrMissingNgImport
	}
	return translator.TranslateStatements(l.globalConstantPool.GetStatements(), l.env.Factory, l.ngImport)
}

// noSourceMapFactory drops source ranges when source mapping is off
type noSourceMapFactory[TStatement, TExpression any] struct {
	translator.AstFactory[TStatement, TExpression]
}

func (noSourceMapFactory[TStatement, TExpression]) SetSourceMapRange(interface{}, translator.SourceMapRange) {
}
