package ml_parser

import "strings"

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether name never has children or an end tag
func IsVoidElement(name string) bool {
	return voidElements[strings.ToLower(name)]
}

func isRawTextElement(name string) bool {
	switch strings.ToLower(name) {
	case "script", "style", "textarea", "title":
		return true
	}
	return false
}

// canSelfClose reports whether `<name/>` is allowed: void elements, custom
// elements, namespaced elements and ng-template.
func canSelfClose(name string) bool {
	return IsVoidElement(name) || strings.Contains(name, "-") || strings.Contains(name, ":")
}
