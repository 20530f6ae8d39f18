package css

// SelectorMatcher indexes selectors by element, class and attribute so that
// an element description can be matched against all of them at once.
type SelectorMatcher[T any] struct {
	elementMap          map[string][]*selectorContext[T]
	elementPartialMap   map[string]*SelectorMatcher[T]
	classMap            map[string][]*selectorContext[T]
	classPartialMap     map[string]*SelectorMatcher[T]
	attrValueMap        map[string]map[string][]*selectorContext[T]
	attrValuePartialMap map[string]map[string]*SelectorMatcher[T]
	listContexts        []*selectorListContext
}

// NewSelectorMatcher creates a new SelectorMatcher
func NewSelectorMatcher[T any]() *SelectorMatcher[T] {
	return &SelectorMatcher[T]{
		elementMap:          make(map[string][]*selectorContext[T]),
		elementPartialMap:   make(map[string]*SelectorMatcher[T]),
		classMap:            make(map[string][]*selectorContext[T]),
		classPartialMap:     make(map[string]*SelectorMatcher[T]),
		attrValueMap:        make(map[string]map[string][]*selectorContext[T]),
		attrValuePartialMap: make(map[string]map[string]*SelectorMatcher[T]),
	}
}

// AddSelectables registers a selector list; value is handed back on match.
// A list matches at most once per Match call.
func (sm *SelectorMatcher[T]) AddSelectables(cssSelectors []*CssSelector, value T) {
	var listContext *selectorListContext
	if len(cssSelectors) > 1 {
		listContext = &selectorListContext{}
		sm.listContexts = append(sm.listContexts, listContext)
	}
	for _, cssSelector := range cssSelectors {
		sm.addSelectable(cssSelector, value, listContext)
	}
}

func (sm *SelectorMatcher[T]) addSelectable(cssSelector *CssSelector, value T, listContext *selectorListContext) {
	matcher := sm
	classNames := cssSelector.ClassNames
	attrs := cssSelector.Attrs
	selectable := &selectorContext[T]{
		selector:    cssSelector,
		value:       value,
		listContext: listContext,
	}

	if cssSelector.Element != "" {
		if len(attrs) == 0 && len(classNames) == 0 {
			addTerminal(matcher.elementMap, cssSelector.Element, selectable)
			return
		}
		matcher = addPartial(matcher.elementPartialMap, cssSelector.Element)
	}

	for i, className := range classNames {
		if len(attrs) == 0 && i == len(classNames)-1 {
			addTerminal(matcher.classMap, className, selectable)
			return
		}
		matcher = addPartial(matcher.classPartialMap, className)
	}

	for i := 0; i < len(attrs); i += 2 {
		name, attrValue := attrs[i], attrs[i+1]
		if i == len(attrs)-2 {
			terminalValues, ok := matcher.attrValueMap[name]
			if !ok {
				terminalValues = make(map[string][]*selectorContext[T])
				matcher.attrValueMap[name] = terminalValues
			}
			addTerminal(terminalValues, attrValue, selectable)
			return
		}
		partialValues, ok := matcher.attrValuePartialMap[name]
		if !ok {
			partialValues = make(map[string]*SelectorMatcher[T])
			matcher.attrValuePartialMap[name] = partialValues
		}
		matcher = addPartial(partialValues, attrValue)
	}
}

func addTerminal[T any](m map[string][]*selectorContext[T], name string, selectable *selectorContext[T]) {
	m[name] = append(m[name], selectable)
}

func addPartial[T any](m map[string]*SelectorMatcher[T], name string) *SelectorMatcher[T] {
	matcher, ok := m[name]
	if !ok {
		matcher = NewSelectorMatcher[T]()
		m[name] = matcher
	}
	return matcher
}

// Match calls matched for every registered selector that matches cssSelector
// and reports whether there was at least one match.
func (sm *SelectorMatcher[T]) Match(cssSelector *CssSelector, matched func(*CssSelector, T)) bool {
	for _, listContext := range sm.listContexts {
		listContext.alreadyMatched = false
	}

	result := false
	if cssSelector.Element != "" {
		result = matchTerminal(sm.elementMap, cssSelector.Element, cssSelector, matched) || result
		result = matchPartial(sm.elementPartialMap, cssSelector.Element, cssSelector, matched) || result
	}

	for _, className := range cssSelector.ClassNames {
		result = matchTerminal(sm.classMap, className, cssSelector, matched) || result
		result = matchPartial(sm.classPartialMap, className, cssSelector, matched) || result
	}

	attrs := cssSelector.Attrs
	for i := 0; i < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]

		if terminalValues, ok := sm.attrValueMap[name]; ok {
			if value != "" {
				result = matchTerminal(terminalValues, "", cssSelector, matched) || result
			}
			result = matchTerminal(terminalValues, value, cssSelector, matched) || result
		}
		if partialValues, ok := sm.attrValuePartialMap[name]; ok {
			if value != "" {
				result = matchPartial(partialValues, "", cssSelector, matched) || result
			}
			result = matchPartial(partialValues, value, cssSelector, matched) || result
		}
	}
	return result
}

func matchTerminal[T any](m map[string][]*selectorContext[T], name string, cssSelector *CssSelector, matched func(*CssSelector, T)) bool {
	selectables := append([]*selectorContext[T]{}, m[name]...)
	selectables = append(selectables, m["*"]...)
	result := false
	for _, selectable := range selectables {
		result = selectable.finalize(cssSelector, matched) || result
	}
	return result
}

func matchPartial[T any](m map[string]*SelectorMatcher[T], name string, cssSelector *CssSelector, matched func(*CssSelector, T)) bool {
	nested, ok := m[name]
	if !ok {
		return false
	}
	return nested.Match(cssSelector, matched)
}

type selectorListContext struct {
	alreadyMatched bool
}

type selectorContext[T any] struct {
	selector    *CssSelector
	value       T
	listContext *selectorListContext
}

func (sc *selectorContext[T]) finalize(cssSelector *CssSelector, matched func(*CssSelector, T)) bool {
	result := true
	if len(sc.selector.NotSelectors) > 0 && (sc.listContext == nil || !sc.listContext.alreadyMatched) {
		notMatcher := NewSelectorMatcher[struct{}]()
		notMatcher.AddSelectables(sc.selector.NotSelectors, struct{}{})
		result = !notMatcher.Match(cssSelector, nil)
	}
	if result && matched != nil && (sc.listContext == nil || !sc.listContext.alreadyMatched) {
		if sc.listContext != nil {
			sc.listContext.alreadyMatched = true
		}
		matched(sc.selector, sc.value)
	}
	return result
}
