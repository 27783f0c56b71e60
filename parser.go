package linecsv

import (
	"errors"
	"fmt"
	"iter"
)

const (
	defaultScratchSize = 2048
	defaultFieldSlots  = 64
)

var (
	// ErrUnterminatedQuote is returned when a quoted field is not closed before the end of the line.
	ErrUnterminatedQuote = errors.New("linecsv: unterminated quoted field")
	// ErrCapacity is the sentinel every *CapacityError unwraps to.
	ErrCapacity = errors.New("linecsv: capacity exceeded")
	// ErrInvalidDialect is returned when the delimiter, quote, and comment characters are not mutually distinct.
	ErrInvalidDialect = errors.New("linecsv: delimiter, quote, and comment characters must be distinct")
)

// ParseError carries location information for parsing errors. Line is filled
// in by stream-level readers; the single-line parser only knows Column.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line == 0 {
		return fmt.Sprintf("linecsv: parse error on column %d: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("linecsv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CapacityError reports that caller-supplied storage was too small for the
// data being decoded: either the scratch buffer or the field slot array.
type CapacityError struct {
	What string // "scratch buffer" or "field slots"
	Need int
	Have int
}

// Error formats the capacity error with the required and available sizes.
func (e *CapacityError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("linecsv: %s capacity exceeded: need at least %d, have %d", e.What, e.Need, e.Have)
}

// Unwrap returns ErrCapacity so callers can match with errors.Is.
func (e *CapacityError) Unwrap() error {
	if e == nil {
		return nil
	}
	return ErrCapacity
}

// ParseFunc decodes one line into the supplied field slots and returns the
// number of fields written. (*Parser).ParseLine satisfies it.
type ParseFunc func(line string, fields []string) (int, error)

// Parser decodes single lines of CSV text into caller-owned field slots.
// It owns a fixed-capacity scratch buffer reused across every ParseLine call,
// so one Parser must not be shared between concurrent callers.
type Parser struct {
	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// Comment marks a skipped line when it is the first character. Default is '#'.
	Comment byte

	buf []byte
}

// NewParser returns a Parser with the default dialect and a scratch buffer
// of the default capacity.
func NewParser() *Parser {
	return &Parser{buf: make([]byte, 0, defaultScratchSize)}
}

// NewParserBuffer returns a Parser that decodes into the supplied scratch
// buffer, panicking if the buffer has no capacity. The Parser owns buf for
// its lifetime; a field longer than cap(buf) fails with a *CapacityError.
func NewParserBuffer(buf []byte) *Parser {
	if cap(buf) == 0 {
		panic("linecsv: parser scratch buffer cannot be nil or empty")
	}
	return &Parser{buf: buf[:0]}
}

// dialect resolves zero-value fields to their defaults and rejects collisions.
func (p *Parser) dialect() (comma, quote, comment byte, err error) {
	comma = p.Comma
	if comma == 0 {
		comma = ','
	}
	quote = p.Quote
	if quote == 0 {
		quote = '"'
	}
	comment = p.Comment
	if comment == 0 {
		comment = '#'
	}
	if comma == quote || comma == comment || quote == comment {
		return 0, 0, 0, ErrInvalidDialect
	}
	return comma, quote, comment, nil
}

// ParseLine decodes one line (without its terminator) into fields and returns
// the number of slots written. An empty line, or a line starting with the
// comment character, decodes to zero fields and leaves fields untouched.
//
// The scan is a single left-to-right pass. A quote character followed by a
// second quote character decodes to one literal quote; a lone quote toggles
// the quoted state, inside which the delimiter is ordinary text. A trailing
// delimiter yields one additional empty field. The only allocations on the
// steady-state path are the strings materialised into fields.
//
// Slots below the returned count hold the decoded fields; on error the slots
// already committed during the scan remain written and the count is zero.
func (p *Parser) ParseLine(line string, fields []string) (int, error) {
	comma, quote, comment, err := p.dialect()
	if err != nil {
		return 0, err
	}
	if len(line) == 0 || line[0] == comment {
		return 0, nil
	}
	if p.buf == nil {
		p.buf = make([]byte, 0, defaultScratchSize)
	}

	buf := p.buf[:0]
	flen := 0
	quoted := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == quote:
			// Lookahead-1 escape: a doubled quote is one literal quote,
			// a lone quote toggles the quoted span.
			if i+1 < len(line) && line[i+1] == quote {
				if len(buf) == cap(buf) {
					return 0, &CapacityError{What: "scratch buffer", Need: len(buf) + 1, Have: cap(buf)}
				}
				buf = append(buf, quote)
				i++
				continue
			}
			quoted = !quoted
		case c == comma && !quoted:
			if flen == len(fields) {
				return 0, &CapacityError{What: "field slots", Need: flen + 1, Have: len(fields)}
			}
			fields[flen] = string(buf)
			flen++
			buf = buf[:0]
		default:
			if len(buf) == cap(buf) {
				return 0, &CapacityError{What: "scratch buffer", Need: len(buf) + 1, Have: cap(buf)}
			}
			buf = append(buf, c)
		}
	}

	if quoted {
		return 0, &ParseError{Column: len(line) + 1, Err: ErrUnterminatedQuote}
	}

	// The trailing accumulated bytes always commit as the final field; after
	// a trailing delimiter the scratch is empty, so the line gains one empty
	// field, matching spreadsheet-export conventions.
	if flen == len(fields) {
		return 0, &CapacityError{What: "field slots", Need: flen + 1, Have: len(fields)}
	}
	fields[flen] = string(buf)
	flen++
	return flen, nil
}

// Records turns a lazy sequence of lines into a lazy sequence of records
// decoded into the supplied slots. Every yielded slice is fields[:n] for the
// line just decoded: the backing array is reused, so each element must be
// consumed (or copied) before the next one is requested. Lines that decode
// to zero fields are skipped. The sequence is single-pass and stops at the
// first parse error, yielding (nil, err).
func (p *Parser) Records(lines iter.Seq[string], fields []string) iter.Seq2[[]string, error] {
	if lines == nil {
		panic("linecsv: line sequence cannot be nil")
	}
	if len(fields) == 0 {
		panic("linecsv: field slots cannot be nil or empty")
	}
	return func(yield func([]string, error) bool) {
		for line := range lines {
			n, err := p.ParseLine(line, fields)
			if err != nil {
				yield(nil, err)
				return
			}
			if n == 0 {
				continue
			}
			if !yield(fields[:n], nil) {
				return
			}
		}
	}
}
