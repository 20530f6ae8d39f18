package ml_parser

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"ngc-linker/packages/compiler/util"
)

var (
	errUnexpectedEOF = errors.New("unexpected character \"EOF\"")
	errInvalidHex    = errors.New("invalid hexadecimal escape sequence")
)

const eof = rune(-1)

// Range is the part of a source file to tokenize. Positions are byte offsets
// into the file content; lines and columns are 0-based.
type Range struct {
	StartPos  int
	StartLine int
	StartCol  int
	EndPos    int
}

type cursorState struct {
	peek   rune
	width  int
	offset int
	line   int
	column int
}

// cursor walks the characters of a template. Spans always point at the
// underlying file, so a template read out of a string literal maps back to
// the literal's position in the enclosing source.
type cursor interface {
	init() error
	peek() rune
	advance() error
	clone() cursor
	getSpan(start cursor) *util.ParseSourceSpan
	getChars(start cursor) string
	charsLeft() int
	diff(other cursor) int
	location() *util.ParseLocation
}

type plainCursor struct {
	state cursorState
	file  *util.ParseSourceFile
	input string
	end   int
}

func newPlainCursor(file *util.ParseSourceFile, r Range) *plainCursor {
	return &plainCursor{
		file:  file,
		input: file.Content,
		end:   r.EndPos,
		state: cursorState{offset: r.StartPos, line: r.StartLine, column: r.StartCol},
	}
}

func (c *plainCursor) init() error {
	c.updatePeek(&c.state)
	return nil
}

func (c *plainCursor) peek() rune { return c.state.peek }

func (c *plainCursor) advance() error { return c.advanceState(&c.state) }

func (c *plainCursor) clone() cursor {
	cp := *c
	return &cp
}

func (c *plainCursor) charsLeft() int { return c.end - c.state.offset }

func (c *plainCursor) diff(other cursor) int {
	return c.state.offset - other.(*plainCursor).state.offset
}

func (c *plainCursor) location() *util.ParseLocation {
	return util.NewParseLocation(c.file, c.state.offset, c.state.line, c.state.column)
}

func (c *plainCursor) getSpan(start cursor) *util.ParseSourceSpan {
	startLoc := start.location()
	return util.NewParseSourceSpan(startLoc, c.location(), startLoc, nil)
}

func (c *plainCursor) getChars(start cursor) string {
	return c.input[start.(*plainCursor).state.offset:c.state.offset]
}

func (c *plainCursor) advanceState(state *cursorState) error {
	if state.offset >= c.end {
		return errUnexpectedEOF
	}
	if state.peek == '\n' {
		state.line++
		state.column = 0
	} else {
		state.column++
	}
	state.offset += state.width
	c.updatePeek(state)
	return nil
}

func (c *plainCursor) updatePeek(state *cursorState) {
	if state.offset >= c.end {
		state.peek, state.width = eof, 0
		return
	}
	state.peek, state.width = utf8.DecodeRuneInString(c.input[state.offset:])
}

// escapedCursor reads the raw text of a JS string literal and yields the
// decoded characters. state tracks the decoded character and the position
// where it starts, internal the position of the last raw character consumed.
type escapedCursor struct {
	plainCursor
	internal cursorState
}

func newEscapedCursor(file *util.ParseSourceFile, r Range) *escapedCursor {
	c := &escapedCursor{plainCursor: *newPlainCursor(file, r)}
	c.internal = c.state
	return c
}

func (c *escapedCursor) init() error {
	c.plainCursor.init()
	c.internal = c.state
	return c.processEscapeSequence()
}

func (c *escapedCursor) clone() cursor {
	cp := *c
	return &cp
}

func (c *escapedCursor) diff(other cursor) int {
	return c.state.offset - other.(*escapedCursor).state.offset
}

func (c *escapedCursor) advance() error {
	c.state = c.internal
	if err := c.advanceState(&c.state); err != nil {
		return err
	}
	c.internal = c.state
	return c.processEscapeSequence()
}

func (c *escapedCursor) getChars(start cursor) string {
	cur := start.clone().(*escapedCursor)
	var chars []rune
	for cur.internal.offset < c.internal.offset {
		chars = append(chars, cur.peek())
		if err := cur.advance(); err != nil {
			break
		}
	}
	return string(chars)
}

func (c *escapedCursor) processEscapeSequence() error {
	if c.internal.peek != '\\' {
		return nil
	}
	// skip the backslash
	if err := c.advanceState(&c.internal); err != nil {
		return err
	}

	switch c.internal.peek {
	case 'n':
		c.state.peek = '\n'
	case 'r':
		c.state.peek = '\r'
	case 'v':
		c.state.peek = '\v'
	case 't':
		c.state.peek = '\t'
	case 'b':
		c.state.peek = '\b'
	case 'f':
		c.state.peek = '\f'
	case 'u':
		if err := c.advanceState(&c.internal); err != nil {
			return err
		}
		if c.internal.peek == '{' {
			// \u{1F600}
			if err := c.advanceState(&c.internal); err != nil {
				return err
			}
			digitStart := c.internal.offset
			for c.internal.peek != '}' {
				if err := c.advanceState(&c.internal); err != nil {
					return err
				}
			}
			return c.decodeHexDigits(digitStart, c.internal.offset)
		}
		digitStart := c.internal.offset
		for range 3 {
			if err := c.advanceState(&c.internal); err != nil {
				return err
			}
		}
		return c.decodeHexDigits(digitStart, digitStart+4)
	case 'x':
		if err := c.advanceState(&c.internal); err != nil {
			return err
		}
		digitStart := c.internal.offset
		if err := c.advanceState(&c.internal); err != nil {
			return err
		}
		return c.decodeHexDigits(digitStart, digitStart+2)
	case '\n', '\r':
		// line continuation
		if err := c.advanceState(&c.internal); err != nil {
			return err
		}
		c.state = c.internal
		return c.processEscapeSequence()
	default:
		c.state.peek = c.internal.peek
	}
	return nil
}

func (c *escapedCursor) decodeHexDigits(start, end int) error {
	if end > len(c.input) {
		return errInvalidHex
	}
	code, err := strconv.ParseUint(c.input[start:end], 16, 32)
	if err != nil {
		return errInvalidHex
	}
	c.state.peek = rune(code)
	return nil
}
