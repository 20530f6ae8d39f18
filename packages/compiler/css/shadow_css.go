package css

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ShadowCss scopes component styles to emulate Shadow DOM encapsulation.
// Every simple selector receives the content attribute, `:host` becomes the
// host attribute and `::ng-deep` stops scoping for the rest of the selector.
//
//	.foo > .bar {}      ->  .foo[_ngcontent-x] > .bar[_ngcontent-x] {}
//	:host(.active) {}   ->  .active[_nghost-x] {}
type ShadowCss struct{}

// NewShadowCss creates a ShadowCss
func NewShadowCss() *ShadowCss {
	return &ShadowCss{}
}

const (
	polyfillHost             = "-shadowcsshost"
	polyfillHostContext      = "-shadowcsscontext"
	polyfillHostNoCombinator = polyfillHost + "-no-combinator"
	blockPlaceholder         = "%BLOCK%"
	parenSuffix              = `)(?:\(((?:\([^)(]*\)|[^)(]*)+?)\))?([^,{]*)`
)

var (
	commentRe         = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	commentWithHashRe = regexp.MustCompile(`/\*\s*#\s*source(Mapping)?URL=[\s\S]+?\*/`)

	nextSelectorRe  = regexp.MustCompile(`(?im)polyfill-next-selector[^}]*content:\s*?(?:"(.*?)"|'(.*?)')[;\s]*}([^{]*?){`)
	polyfillRuleRe  = regexp.MustCompile(`(?im)(polyfill-rule)[^}]*(content:\s*(?:"(.*?)"|'(.*?)'))[;\s]*[^}]*}`)
	unscopedRuleRe  = regexp.MustCompile(`(?im)(polyfill-unscoped-rule)[^}]*(content:\s*(?:"(.*?)"|'(.*?)'))[;\s]*[^}]*}`)
	colonHostRe     = regexp.MustCompile(`(?im):host([^-]|$)`)
	colonHostCtxRe  = regexp.MustCompile(`(?im):host-context`)
	hostRuleRe      = regexp.MustCompile(`(?im)(` + polyfillHost + parenSuffix)
	hostContextRe   = regexp.MustCompile(`(?im)(` + polyfillHostContext + parenSuffix)
	polyfillHostRe  = regexp.MustCompile(`(?im)` + polyfillHost)
	noCombinatorRe  = regexp.MustCompile(polyfillHostNoCombinator + `([^\s]*)`)
	simpleSelectRe  = regexp.MustCompile(`^([^:]*)(:*)([\s\S]*)$`)
	isAttrRe        = regexp.MustCompile(`\[is=([^\]]*)\]`)
	shadowDeepRe    = regexp.MustCompile(`(?:>>>)|(?:/deep/)|(?:::ng-deep)`)
	shadowDOMRes    = []*regexp.Regexp{regexp.MustCompile(`::shadow`), regexp.MustCompile(`::content`), regexp.MustCompile(`/shadow-deep/`), regexp.MustCompile(`/shadow/`)}
	ruleRe          = regexp.MustCompile(`(\s*)([^;\{\}]+?)(\s*)((?:\{` + blockPlaceholder + `\}?\s*;?)|(?:\s*;))`)
	placeholderRe   = regexp.MustCompile(`__(?:esc-)?ph-(\d+)__`)
	attrSelectorRe  = regexp.MustCompile(`(\[[^\]]*\])`)
	escapedCharRe   = regexp.MustCompile(`(\\.)`)
	nthExpressionRe = regexp.MustCompile(`(:nth-[-\w]+)(\([^)]+\))`)
)

// ShimCssText scopes cssText. selector is the content attribute and
// hostSelector the host attribute, both without brackets. Source map
// comments are kept at the end; other comments are dropped.
func (sc *ShadowCss) ShimCssText(cssText, selector, hostSelector string) string {
	sourceMapComments := commentWithHashRe.FindAllString(cssText, -1)
	cssText = commentRe.ReplaceAllString(cssText, "")
	cssText = insertDirectives(cssText)
	scoped := sc.scopeCssText(cssText, selector, hostSelector)
	return strings.Join(append([]string{scoped}, sourceMapComments...), "\n")
}

// firstNonEmpty returns the first submatch captured among alternatives
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// insertDirectives applies `polyfill-next-selector` and `polyfill-rule`
func insertDirectives(cssText string) string {
	cssText = nextSelectorRe.ReplaceAllStringFunc(cssText, func(match string) string {
		m := nextSelectorRe.FindStringSubmatch(match)
		return firstNonEmpty(m[1], m[2]) + "{"
	})
	return polyfillRuleRe.ReplaceAllStringFunc(cssText, func(match string) string {
		m := polyfillRuleRe.FindStringSubmatch(match)
		rule := strings.Replace(strings.Replace(match, m[1], "", 1), m[2], "", 1)
		return firstNonEmpty(m[3], m[4]) + rule
	})
}

func (sc *ShadowCss) scopeCssText(cssText, scopeSelector, hostSelector string) string {
	unscopedRules := extractUnscopedRules(cssText)
	cssText = colonHostCtxRe.ReplaceAllString(cssText, polyfillHostContext)
	cssText = colonHostRe.ReplaceAllString(cssText, polyfillHost+"$1")
	cssText = convertColonRule(cssText, hostRuleRe, colonHostPartReplacer)
	cssText = convertColonRule(cssText, hostContextRe, colonHostContextPartReplacer)
	for _, re := range shadowDOMRes {
		cssText = re.ReplaceAllString(cssText, " ")
	}
	if scopeSelector != "" {
		cssText = sc.scopeSelectors(cssText, scopeSelector, hostSelector)
	}
	return strings.TrimSpace(cssText + "\n" + unscopedRules)
}

// extractUnscopedRules collects `polyfill-unscoped-rule` blocks, which are
// emitted after the scoped css without a scope
func extractUnscopedRules(cssText string) string {
	var b strings.Builder
	for _, m := range unscopedRuleRe.FindAllStringSubmatch(cssText, -1) {
		rule := strings.Replace(m[0], m[2], "", 1)
		rule = strings.Replace(rule, m[1], firstNonEmpty(m[3], m[4]), 1)
		b.WriteString(rule)
		b.WriteString("\n\n")
	}
	return b.String()
}

// convertColonRule expands `-shadowcsshost(a, b) rest` into one selector per
// argument
func convertColonRule(cssText string, re *regexp.Regexp, replacer func(host, part, suffix string) string) string {
	return re.ReplaceAllStringFunc(cssText, func(match string) string {
		m := re.FindStringSubmatch(match)
		if m[2] == "" {
			return polyfillHostNoCombinator + m[3]
		}
		var parts []string
		for _, p := range strings.Split(m[2], ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				break
			}
			parts = append(parts, replacer(polyfillHostNoCombinator, p, m[3]))
		}
		return strings.Join(parts, ",")
	})
}

func colonHostPartReplacer(host, part, suffix string) string {
	return host + strings.Replace(part, polyfillHost, "", 1) + suffix
}

// `:host-context(.x) .y` matches both on the host and on an ancestor
func colonHostContextPartReplacer(host, part, suffix string) string {
	if strings.Contains(part, polyfillHost) {
		return colonHostPartReplacer(host, part, suffix)
	}
	return host + part + suffix + ", " + part + " " + host + suffix
}

func (sc *ShadowCss) scopeSelectors(cssText, scopeSelector, hostSelector string) string {
	return processRules(cssText, func(rule cssRule) cssRule {
		switch {
		case !strings.HasPrefix(rule.selector, "@"):
			rule.selector = sc.scopeSelector(rule.selector, scopeSelector, hostSelector)
		case strings.HasPrefix(rule.selector, "@media"), strings.HasPrefix(rule.selector, "@supports"),
			strings.HasPrefix(rule.selector, "@page"), strings.HasPrefix(rule.selector, "@document"):
			rule.content = sc.scopeSelectors(rule.content, scopeSelector, hostSelector)
		case strings.HasPrefix(rule.selector, "@font-face"):
			rule.content = stripScopingSelectors(rule.content)
		}
		return rule
	})
}

func stripScopingSelectors(cssText string) string {
	return processRules(cssText, func(rule cssRule) cssRule {
		rule.selector = shadowDeepRe.ReplaceAllString(rule.selector, " ")
		rule.selector = noCombinatorRe.ReplaceAllString(rule.selector, " ")
		return rule
	})
}

func (sc *ShadowCss) scopeSelector(selector, scopeSelector, hostSelector string) string {
	matcher := makeScopeMatcher(scopeSelector)
	parts := strings.Split(selector, ",")
	for i, part := range parts {
		deepParts := shadowDeepRe.Split(strings.TrimSpace(part), -1)
		for j := range deepParts {
			deepParts[j] = strings.TrimSpace(deepParts[j])
		}
		if !matcher.MatchString(deepParts[0]) {
			deepParts[0] = applyStrictSelectorScope(deepParts[0], scopeSelector, hostSelector)
		}
		parts[i] = strings.TrimSpace(strings.Join(deepParts, " "))
	}
	return strings.Join(parts, ", ")
}

// makeScopeMatcher matches selectors that already start with the scope
func makeScopeMatcher(scopeSelector string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^(` + regexp.QuoteMeta(scopeSelector) + `)([>\s~+\[.,{:][\s\S]*)?$`)
}

// applySimpleSelectorScope replaces the host marker by the host attribute
func applySimpleSelectorScope(selector, scopeSelector, hostSelector string) string {
	if !polyfillHostRe.MatchString(selector) {
		return scopeSelector + " " + selector
	}
	replaceBy := "[" + hostSelector + "]"
	replaced := false
	selector = noCombinatorRe.ReplaceAllStringFunc(selector, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		rest := noCombinatorRe.FindStringSubmatch(match)[1]
		m := simpleSelectRe.FindStringSubmatch(rest)
		return m[1] + replaceBy + m[2] + m[3]
	})
	return polyfillHostRe.ReplaceAllString(selector, replaceBy+" ")
}

// applyStrictSelectorScope adds the scope attribute to every simple selector
// of a compound selector. Parts before the host marker match ancestors of the
// host and stay unscoped.
func applyStrictSelectorScope(selector, scopeSelector, hostSelector string) string {
	scopeSelector = isAttrRe.ReplaceAllString(scopeSelector, "$1")
	attrName := "[" + scopeSelector + "]"

	scopePart := func(p string) string {
		scoped := strings.TrimSpace(p)
		if scoped == "" {
			return ""
		}
		if strings.Contains(p, polyfillHostNoCombinator) {
			return applySimpleSelectorScope(p, scopeSelector, hostSelector)
		}
		if t := polyfillHostRe.ReplaceAllString(p, ""); t != "" {
			m := simpleSelectRe.FindStringSubmatch(t)
			scoped = m[1] + attrName + m[2] + m[3]
		}
		return scoped
	}

	safe := newSafeSelector(selector)
	selector = safe.content

	var scoped strings.Builder
	shouldScope := !strings.Contains(selector, polyfillHostNoCombinator)
	start := 0
	for i := 0; i < len(selector); i++ {
		if !isSpace(selector[i]) && !isCombinator(selector, i) {
			continue
		}
		// whitespace around an explicit combinator belongs to it
		end, j := i, i
		for j < len(selector) && isSpace(selector[j]) {
			j++
		}
		combinator := byte(' ')
		if isCombinator(selector, j) {
			combinator = selector[j]
			j++
			for j < len(selector) && isSpace(selector[j]) {
				j++
			}
		}
		part := strings.TrimSpace(selector[start:end])
		shouldScope = shouldScope || strings.Contains(part, polyfillHostNoCombinator)
		if shouldScope {
			part = scopePart(part)
		}
		scoped.WriteString(part)
		if combinator == ' ' {
			scoped.WriteByte(' ')
		} else {
			fmt.Fprintf(&scoped, " %c ", combinator)
		}
		start = j
		i = j - 1
	}
	part := selector[start:]
	shouldScope = shouldScope || strings.Contains(part, polyfillHostNoCombinator)
	if shouldScope {
		part = scopePart(part)
	}
	scoped.WriteString(part)
	return safe.restore(scoped.String())
}

// isCombinator reports whether selector[i] is `>`, `+` or a `~` that does
// not start `~=`
func isCombinator(selector string, i int) bool {
	if i >= len(selector) {
		return false
	}
	switch selector[i] {
	case '>', '+':
		return true
	case '~':
		return i+1 >= len(selector) || selector[i+1] != '='
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// safeSelector hides attribute selectors, escapes and `:nth-*` arguments
// from the combinator split
type safeSelector struct {
	placeholders []string
	content      string
}

func newSafeSelector(selector string) *safeSelector {
	s := &safeSelector{}
	selector = attrSelectorRe.ReplaceAllStringFunc(selector, func(match string) string {
		return s.hide(match, "__ph-")
	})
	selector = escapedCharRe.ReplaceAllStringFunc(selector, func(match string) string {
		return s.hide(match, "__esc-ph-")
	})
	s.content = nthExpressionRe.ReplaceAllStringFunc(selector, func(match string) string {
		m := nthExpressionRe.FindStringSubmatch(match)
		return m[1] + s.hide(m[2], "__ph-")
	})
	return s
}

func (s *safeSelector) hide(value, prefix string) string {
	placeholder := prefix + strconv.Itoa(len(s.placeholders)) + "__"
	s.placeholders = append(s.placeholders, value)
	return placeholder
}

func (s *safeSelector) restore(content string) string {
	return placeholderRe.ReplaceAllStringFunc(content, func(match string) string {
		index, _ := strconv.Atoi(placeholderRe.FindStringSubmatch(match)[1])
		return s.placeholders[index]
	})
}

type cssRule struct {
	selector string
	content  string
}

// processRules calls fn for every top-level rule of input. Nested blocks
// are passed as content.
func processRules(input string, fn func(cssRule) cssRule) string {
	escaped := escapeInStrings(input)
	withBlocks, blocks := escapeBlocks(escaped)
	nextBlock := 0
	result := ruleRe.ReplaceAllStringFunc(withBlocks, func(match string) string {
		m := ruleRe.FindStringSubmatch(match)
		suffix := m[4]
		content, contentPrefix := "", ""
		if strings.HasPrefix(suffix, "{"+blockPlaceholder) {
			if nextBlock < len(blocks) {
				content = blocks[nextBlock]
			}
			nextBlock++
			suffix = suffix[len(blockPlaceholder)+1:]
			contentPrefix = "{"
		}
		rule := fn(cssRule{selector: m[2], content: content})
		return m[1] + rule.selector + m[3] + contentPrefix + rule.content + suffix
	})
	return unescapeInStrings(result)
}

// escapeBlocks replaces the content of every top-level `{...}` by a
// placeholder and returns the contents in order
func escapeBlocks(input string) (string, []string) {
	var out strings.Builder
	var blocks []string
	depth := 0
	blockStart := 0
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '\\':
			if depth == 0 {
				out.WriteByte(c)
				if i+1 < len(input) {
					out.WriteByte(input[i+1])
				}
			}
			i++
		case c == '{':
			if depth == 0 {
				out.WriteByte(c)
				blockStart = i + 1
			}
			depth++
		case c == '}' && depth > 0:
			depth--
			if depth == 0 {
				blocks = append(blocks, input[blockStart:i])
				out.WriteString(blockPlaceholder)
				out.WriteByte(c)
			}
		case depth == 0:
			out.WriteByte(c)
		}
	}
	if depth > 0 {
		blocks = append(blocks, input[blockStart:])
		out.WriteString(blockPlaceholder)
	}
	return out.String(), blocks
}

var stringPlaceholders = map[byte]string{
	';': "%SEMI_IN_PLACEHOLDER%",
	',': "%COMMA_IN_PLACEHOLDER%",
	':': "%COLON_IN_PLACEHOLDER%",
}

// escapeInStrings hides separators inside quoted strings
func escapeInStrings(input string) string {
	var out strings.Builder
	var quote byte
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '\\':
			out.WriteByte(c)
			if i+1 < len(input) {
				i++
				out.WriteByte(input[i])
			}
			continue
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			if placeholder, ok := stringPlaceholders[c]; ok {
				out.WriteString(placeholder)
				continue
			}
		case c == '"' || c == '\'':
			quote = c
		}
		out.WriteByte(c)
	}
	return out.String()
}

func unescapeInStrings(input string) string {
	for c, placeholder := range stringPlaceholders {
		input = strings.ReplaceAll(input, placeholder, string(c))
	}
	return input
}
