// Package treesitter links partial declarations in JavaScript and TypeScript
// source text. Files are parsed with tree-sitter; declaration call sites are
// converted to jsast, linked, printed and spliced back into the text, so
// everything outside the call sites is left byte for byte.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/typescript"
)

var (
	// ErrNoRootNode is returned when tree-sitter yields an empty tree
	ErrNoRootNode = errors.New("tree-sitter: no root node")
	// ErrSyntax is wrapped by parse failures of the input file
	ErrSyntax = errors.New("syntax error")
)

// Language selects the grammar used for a file
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

// LanguageForPath picks the grammar from the file extension
func LanguageForPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	}
	return LanguageJavaScript
}

var languages = struct {
	once sync.Once
	byID map[Language]*sitter.Language
}{}

func grammar(lang Language) *sitter.Language {
	languages.once.Do(func() {
		languages.byID = map[Language]*sitter.Language{
			LanguageJavaScript: sitter.NewLanguage(javascript.GetLanguage()),
			LanguageTypeScript: sitter.NewLanguage(typescript.GetLanguage()),
		}
	})
	return languages.byID[lang]
}

// parsers are pooled per grammar; a sitter.Parser is not safe for
// concurrent use
var parserPools sync.Map

func acquireParser(lang Language) *sitter.Parser {
	poolAny, _ := parserPools.LoadOrStore(lang, &sync.Pool{
		New: func() any {
			p := sitter.NewParser()
			p.SetLanguage(grammar(lang))
			return p
		},
	})
	return poolAny.(*sync.Pool).Get().(*sitter.Parser)
}

func releaseParser(lang Language, p *sitter.Parser) {
	if poolAny, ok := parserPools.Load(lang); ok {
		poolAny.(*sync.Pool).Put(p)
	}
}

// parseTree parses src. The caller closes the returned tree.
func parseTree(ctx context.Context, lang Language, src []byte) (*sitter.Tree, sitter.Node, error) {
	p := acquireParser(lang)
	defer releaseParser(lang, p)

	tree, err := p.ParseString(ctx, nil, src)
	if err != nil {
		return nil, sitter.Node{}, fmt.Errorf("tree-sitter: failed to parse: %w", err)
	}
	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()
		return nil, sitter.Node{}, ErrNoRootNode
	}
	return tree, root, nil
}

// firstError returns the first ERROR or MISSING node of the tree
func firstError(n sitter.Node) (sitter.Node, bool) {
	if n.IsError() || n.IsMissing() {
		return n, true
	}
	if !n.HasError() {
		return sitter.Node{}, false
	}
	for i := range n.ChildCount() {
		if found, ok := firstError(n.Child(i)); ok {
			return found, true
		}
	}
	return sitter.Node{}, false
}
