package treesitter

import (
	"fmt"
	"strings"
)

// codeFrame renders the lines around a 0-based position with a gutter and a
// caret under the column:
//
//	  2 | const a = 1;
//	> 3 | const cmp = $ngDeclareComponent({
//	    | ^
func codeFrame(lines *lineIndex, line, col, context int) string {
	first := max(line-context, 0)
	last := min(line+context, lines.lineCount()-1)
	width := len(fmt.Sprint(last + 1))

	var sb strings.Builder
	for l := first; l <= last; l++ {
		marker := "  "
		if l == line {
			marker = "> "
		}
		text := lines.lineText(l)
		gutter := fmt.Sprintf("%s%*d |", marker, width, l+1)
		if text == "" {
			sb.WriteString(gutter + "\n")
		} else {
			sb.WriteString(gutter + " " + text + "\n")
		}
		if l == line {
			sb.WriteString(fmt.Sprintf("  %s | %s^\n", strings.Repeat(" ", width), caretPadding(text, col)))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// caretPadding keeps tabs so the caret lines up with the source line
func caretPadding(text string, col int) string {
	var sb strings.Builder
	n := 0
	for _, r := range text {
		if n >= col {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		n += utf16Len(string(r))
	}
	return sb.String()
}
