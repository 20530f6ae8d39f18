package util

import (
	"fmt"
	"regexp"
)

var unusableInterpolationRegexps = []*regexp.Regexp{
	regexp.MustCompile(`^\s*$`),          // empty
	regexp.MustCompile(`[<>]`),           // html tag
	regexp.MustCompile(`^[{}]$`),         // i18n expansion
	regexp.MustCompile(`(?i)&(#|[a-z])`), // character reference
	regexp.MustCompile(`^//`),            // comment
}

// AssertInterpolationSymbols validates an interpolation delimiter pair.
// The value must be exactly two strings [start, end] and neither may contain
// a symbol that would be ambiguous inside a template.
func AssertInterpolationSymbols(identifier string, value []string) error {
	if len(value) != 2 {
		return fmt.Errorf("expected '%s' to be an array, [start, end]", identifier)
	}
	start, end := value[0], value[1]
	for _, regex := range unusableInterpolationRegexps {
		if regex.MatchString(start) || regex.MatchString(end) {
			return fmt.Errorf("['%s', '%s'] contains unusable interpolation symbol", start, end)
		}
	}
	return nil
}
