package util

import (
	"regexp"
	"strings"
)

var dashCaseRegexp = regexp.MustCompile(`-+([a-z0-9])`)

// DashCaseToCamelCase converts a dash-case string to camelCase
func DashCaseToCamelCase(input string) string {
	return dashCaseRegexp.ReplaceAllStringFunc(input, func(match string) string {
		parts := dashCaseRegexp.FindStringSubmatch(match)
		if len(parts) > 1 {
			return strings.ToUpper(parts[1])
		}
		return match
	})
}

// SplitAtColon splits a string at the first colon character
func SplitAtColon(input string, defaultValues []string) []string {
	return splitAt(input, ':', defaultValues)
}

// SplitAtPeriod splits a string at the first period character
func SplitAtPeriod(input string, defaultValues []string) []string {
	return splitAt(input, '.', defaultValues)
}

func splitAt(input string, character rune, defaultValues []string) []string {
	index := strings.IndexRune(input, character)
	if index == -1 {
		return defaultValues
	}
	return []string{
		strings.TrimSpace(input[:index]),
		strings.TrimSpace(input[index+1:]),
	}
}

var nonWordRegexp = regexp.MustCompile(`\W`)

// SanitizeIdentifier replaces every non-word character with an underscore
func SanitizeIdentifier(name string) string {
	return nonWordRegexp.ReplaceAllString(name, "_")
}

// IsWhitespace reports whether ch is an ASCII whitespace or NBSP
func IsWhitespace(ch rune) bool {
	return (ch >= '\t' && ch <= ' ') || ch == '\u00a0'
}

// IsDigit reports whether ch is an ASCII digit
func IsDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// IsAsciiLetter reports whether ch is an ASCII letter
func IsAsciiLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// IsQuote reports whether ch is a single quote, double quote or backtick
func IsQuote(ch rune) bool {
	return ch == '\'' || ch == '"' || ch == '`'
}
