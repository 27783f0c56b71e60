package linecsv

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"iter"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxLineSize = 1 << 20

// LineReader splits a text stream into lines without their terminators.
// LF, CRLF, and lone CR all end a line. A UTF-8 byte order mark is stripped
// and UTF-16 input (with BOM) is decoded transparently.
type LineReader struct {
	sc   *bufio.Scanner
	done bool
}

// NewLineReader creates a LineReader over r, panicking if r is nil.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("linecsv: line source cannot be nil")
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	sc := bufio.NewScanner(transform.NewReader(r, dec))
	sc.Split(scanTerminatedLines)
	sc.Buffer(make([]byte, 0, defaultScratchSize), maxLineSize)
	return &LineReader{sc: sc}
}

// ReadLine returns the next line, or io.EOF after the last one.
func (lr *LineReader) ReadLine() (string, error) {
	if lr == nil || lr.sc == nil || lr.done {
		return "", io.EOF
	}
	if lr.sc.Scan() {
		return lr.sc.Text(), nil
	}
	lr.done = true
	if err := lr.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Lines returns a single-pass sequence over the remaining lines. The
// sequence stops after yielding a read error.
func (lr *LineReader) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			line, err := lr.ReadLine()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// scanTerminatedLines is a bufio.SplitFunc accepting LF, CRLF, and lone CR.
func scanTerminatedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	end := bytes.IndexByte(data, '\n')
	if cr := bytes.IndexByte(data, '\r'); cr >= 0 && (end < 0 || cr < end) {
		if cr == len(data)-1 && !atEOF {
			// The CR may begin a CRLF pair; wait for more data.
			return 0, nil, nil
		}
		if cr+1 < len(data) && data[cr+1] == '\n' {
			return cr + 2, data[:cr], nil
		}
		return cr + 1, data[:cr], nil
	}
	if end >= 0 {
		return end + 1, data[:end], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// RecordReader decodes a text stream into records, one line at a time.
// Read returns a slice of the reader's own slot array: the record is valid
// only until the next call, matching the parser's reuse contract. Blank and
// comment lines never surface.
type RecordReader struct {
	// Parser supplies the dialect and scratch buffer. Adjust its fields
	// before the first Read.
	Parser *Parser

	lr       *LineReader
	slots    []string
	line     int
	finished bool
}

// NewRecordReader creates a RecordReader over r with a default-sized slot
// array, panicking if r is nil.
func NewRecordReader(r io.Reader) *RecordReader {
	return NewRecordReaderSlots(r, make([]string, defaultFieldSlots))
}

// NewRecordReaderSlots creates a RecordReader decoding into the supplied
// caller-owned slot array, panicking if r is nil or slots is empty. A record
// wider than len(slots) fails with a *CapacityError.
func NewRecordReaderSlots(r io.Reader, slots []string) *RecordReader {
	if len(slots) == 0 {
		panic("linecsv: field slots cannot be nil or empty")
	}
	return &RecordReader{
		Parser: NewParser(),
		lr:     NewLineReader(r),
		slots:  slots,
	}
}

// Read returns the next record, reusing the reader's slot array, or io.EOF
// when the stream is exhausted.
func (r *RecordReader) Read() ([]string, error) {
	return r.ReadContext(context.Background())
}

// ReadContext is Read with cooperative cancellation, checked before each
// line is consumed and never during the scan of one line.
func (r *RecordReader) ReadContext(ctx context.Context) ([]string, error) {
	if r == nil || r.lr == nil {
		return nil, io.EOF
	}
	if r.finished {
		return nil, io.EOF
	}
	if r.Parser == nil {
		r.Parser = NewParser()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := r.lr.ReadLine()
		if err != nil {
			r.finished = true
			return nil, err
		}
		r.line++

		n, err := r.Parser.ParseLine(line, r.slots)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) && perr.Line == 0 {
				perr.Line = r.line
			}
			return nil, err
		}
		if n == 0 {
			continue
		}
		return r.slots[:n], nil
	}
}

// ReadAll exhausts the reader, returning owned copies of every record.
func (r *RecordReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, append([]string(nil), record...))
	}
}

// Line reports the number of lines consumed so far, counting skipped ones.
func (r *RecordReader) Line() int {
	if r == nil {
		return 0
	}
	return r.line
}
