package treesitter

import (
	"sort"
	"strings"
)

// lineIndex converts byte offsets to 0-based lines and UTF-16 columns
type lineIndex struct {
	text   string
	starts []int
}

func newLineIndex(text string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{text: text, starts: starts}
}

func (li *lineIndex) position(offset int) (line, col int) {
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line = sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return line, utf16Len(li.text[li.starts[line]:offset])
}

// lineText returns line without its terminator
func (li *lineIndex) lineText(line int) string {
	if line < 0 || line >= len(li.starts) {
		return ""
	}
	end := len(li.text)
	if line+1 < len(li.starts) {
		end = li.starts[line+1] - 1
	}
	return strings.TrimSuffix(li.text[li.starts[line]:end], "\r")
}

func (li *lineIndex) lineCount() int {
	return len(li.starts)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// leadingIndent counts the indentation of the line containing offset, in
// printer indent levels
func (li *lineIndex) leadingIndent(offset int) int {
	line, _ := li.position(offset)
	text := li.lineText(line)
	width := 0
	for _, ch := range text {
		switch ch {
		case ' ':
			width++
		case '\t':
			width += 2
		default:
			return width / 2
		}
	}
	return width / 2
}
