package treesitter

import (
	"sort"

	"ngc-linker/packages/compiler/output"
)

type sourceMapping struct {
	line    int
	col     int
	url     string
	content *string
	srcLine int
	srcCol  int
}

// buildSourceMap maps copied text back onto itself, line by line, and places
// the printer mappings of every generated segment at its output position
func buildSourceMap(path, code, out string, segments []segment) (*output.SourceMap, error) {
	in := newLineIndex(code)
	outLines := newLineIndex(out)

	var mappings []sourceMapping
	identity := func(outOffset, srcOffset int) {
		line, col := outLines.position(outOffset)
		srcLine, srcCol := in.position(srcOffset)
		mappings = append(mappings, sourceMapping{line: line, col: col, url: path, content: &code, srcLine: srcLine, srcCol: srcCol})
	}

	for _, seg := range segments {
		if seg.generated == nil {
			identity(seg.outStart, seg.srcStart)
			for i := seg.outStart; i < seg.outEnd-1; i++ {
				if out[i] == '\n' {
					identity(i+1, seg.srcStart+i+1-seg.outStart)
				}
			}
			continue
		}
		baseLine, baseCol := outLines.position(seg.outStart)
		for _, m := range seg.generated.mappings {
			entry := sourceMapping{line: baseLine + m.GeneratedLine, col: m.GeneratedColumn, url: m.URL, srcLine: m.Line, srcCol: m.Column}
			if m.GeneratedLine == 0 {
				entry.col += baseCol
			}
			switch {
			case entry.url == "" || entry.url == path:
				entry.url, entry.content = path, &code
			case m.Content != "":
				content := m.Content
				entry.content = &content
			}
			mappings = append(mappings, entry)
		}
	}

	sort.SliceStable(mappings, func(i, j int) bool {
		if mappings[i].line != mappings[j].line {
			return mappings[i].line < mappings[j].line
		}
		return mappings[i].col < mappings[j].col
	})

	gen := output.NewSourceMapGenerator(path)
	gen.AddSource(path, &code)
	for _, m := range mappings {
		gen.AddSource(m.url, m.content)
	}
	next := 0
	for line := range outLines.lineCount() {
		gen.AddLine()
		for ; next < len(mappings) && mappings[next].line == line; next++ {
			m := mappings[next]
			if err := gen.AddMapping(m.col, m.url, m.srcLine, m.srcCol); err != nil {
				return nil, err
			}
		}
	}
	return gen.ToJSON(), nil
}
