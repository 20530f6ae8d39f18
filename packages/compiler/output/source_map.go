package output

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// SourceMapVersion is the source map spec version produced
	SourceMapVersion = 3
	jsB64Prefix      = "# sourceMappingURL=data:application/json;base64,"
)

var (
	ErrNoLine          = errors.New("a line must be added before mappings can be added")
	ErrUnknownSource   = errors.New("unknown source file")
	ErrMappingOrder    = errors.New("mapping should be added in output order")
	ErrMissingLocation = errors.New("the source location must be provided when a source url is provided")
)

// Segment is one mapping within a generated line
type Segment struct {
	Col0        int
	SourceURL   string
	SourceLine0 int
	SourceCol0  int
}

// SourceMap is the JSON form of a version 3 source map
type SourceMap struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent"`
	Mappings       string    `json:"mappings"`
}

// SourceMapGenerator accumulates mappings line by line
type SourceMapGenerator struct {
	sources        []string
	sourcesContent map[string]*string
	lines          [][]Segment
	lastCol0       int
	hasMappings    bool
	file           string
}

// NewSourceMapGenerator creates a new SourceMapGenerator
func NewSourceMapGenerator(file string) *SourceMapGenerator {
	return &SourceMapGenerator{
		sourcesContent: make(map[string]*string),
		file:           file,
	}
}

// AddSource registers a source file. A nil content means the consumer loads
// the content from the URL.
func (smg *SourceMapGenerator) AddSource(url string, content *string) *SourceMapGenerator {
	if _, exists := smg.sourcesContent[url]; !exists {
		smg.sources = append(smg.sources, url)
		smg.sourcesContent[url] = content
	}
	return smg
}

// AddLine starts a new generated line
func (smg *SourceMapGenerator) AddLine() *SourceMapGenerator {
	smg.lines = append(smg.lines, []Segment{})
	smg.lastCol0 = 0
	return smg
}

// AddMapping maps generated column col0 of the current line to a source location
func (smg *SourceMapGenerator) AddMapping(col0 int, sourceURL string, sourceLine0, sourceCol0 int) error {
	if len(smg.lines) == 0 {
		return ErrNoLine
	}
	if _, exists := smg.sourcesContent[sourceURL]; !exists {
		return fmt.Errorf("%w %q", ErrUnknownSource, sourceURL)
	}
	if col0 < smg.lastCol0 {
		return ErrMappingOrder
	}
	if sourceLine0 < 0 || sourceCol0 < 0 {
		return ErrMissingLocation
	}

	smg.hasMappings = true
	smg.lastCol0 = col0
	last := len(smg.lines) - 1
	smg.lines[last] = append(smg.lines[last], Segment{
		Col0:        col0,
		SourceURL:   sourceURL,
		SourceLine0: sourceLine0,
		SourceCol0:  sourceCol0,
	})
	return nil
}

// HasMappings reports whether at least one mapping was recorded
func (smg *SourceMapGenerator) HasMappings() bool {
	return smg.hasMappings
}

// ToJSON builds the source map, or returns nil when nothing was mapped
func (smg *SourceMapGenerator) ToJSON() *SourceMap {
	if !smg.hasMappings {
		return nil
	}

	sourcesIndex := make(map[string]int, len(smg.sources))
	sourcesContent := make([]*string, len(smg.sources))
	for i, url := range smg.sources {
		sourcesIndex[url] = i
		sourcesContent[i] = smg.sourcesContent[url]
	}

	lastSourceIndex := 0
	lastSourceLine0 := 0
	lastSourceCol0 := 0

	lineStrs := make([]string, 0, len(smg.lines))
	for _, segments := range smg.lines {
		lastCol0 := 0
		segmentStrs := make([]string, 0, len(segments))
		for _, segment := range segments {
			var sb strings.Builder
			// zero-based starting column of the line in the generated code
			sb.WriteString(toBase64VLQ(segment.Col0 - lastCol0))
			lastCol0 = segment.Col0
			// zero-based index into the "sources" list
			sourceIndex := sourcesIndex[segment.SourceURL]
			sb.WriteString(toBase64VLQ(sourceIndex - lastSourceIndex))
			lastSourceIndex = sourceIndex
			// the zero-based starting line in the original source
			sb.WriteString(toBase64VLQ(segment.SourceLine0 - lastSourceLine0))
			lastSourceLine0 = segment.SourceLine0
			// the zero-based starting column in the original source
			sb.WriteString(toBase64VLQ(segment.SourceCol0 - lastSourceCol0))
			lastSourceCol0 = segment.SourceCol0
			segmentStrs = append(segmentStrs, sb.String())
		}
		lineStrs = append(lineStrs, strings.Join(segmentStrs, ","))
	}

	return &SourceMap{
		Version:        SourceMapVersion,
		File:           smg.file,
		Sources:        append([]string{}, smg.sources...),
		SourcesContent: sourcesContent,
		Mappings:       strings.Join(lineStrs, ";"),
	}
}

// ToJsComment renders the map as an inline `//# sourceMappingURL=` comment
func (smg *SourceMapGenerator) ToJsComment() (string, error) {
	sourceMap := smg.ToJSON()
	if sourceMap == nil {
		return "", nil
	}
	data, err := json.Marshal(sourceMap)
	if err != nil {
		return "", fmt.Errorf("encode source map: %w", err)
	}
	return "//" + jsB64Prefix + base64.StdEncoding.EncodeToString(data), nil
}

const b64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func toBase64VLQ(value int) string {
	if value < 0 {
		value = (-value << 1) + 1
	} else {
		value = value << 1
	}

	var sb strings.Builder
	for {
		digit := value & 31
		value = value >> 5
		if value > 0 {
			digit = digit | 32
		}
		sb.WriteByte(b64Digits[digit])
		if value == 0 {
			break
		}
	}
	return sb.String()
}
