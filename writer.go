package linecsv

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

var (
	errNilWriter      = errors.New("linecsv: writer is nil")
	errWriterNoTarget = errors.New("linecsv: writer destination cannot be nil")
)

// Writer encodes records as CSV text, quoting and escaping fields only where
// the dialect requires it. Output is buffered; call Flush when done.
type Writer struct {
	dst *bufio.Writer

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// Terminator ends each record. Default is "\r\n".
	Terminator string

	err error
}

// NewWriter creates a new Writer with internal buffering tuned for bulk writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:   bufio.NewWriterSize(w, defaultScratchSize),
		Comma: ',',
		Quote: '"',
	}
}

// Reset updates the underlying writer while preserving the configuration.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultScratchSize)
	} else {
		w.dst.Reset(dst)
	}
	w.err = nil
}

// Write encodes a single record. Fields are separated by exactly one
// delimiter and the record ends with the configured terminator. A field is
// wrapped in quotes when it contains the delimiter, the quote character, or
// a terminator byte; quote characters in field content are always doubled.
func (w *Writer) Write(record []string) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	comma := w.Comma
	if comma == 0 {
		comma = ','
	}
	quote := w.Quote
	if quote == 0 {
		quote = '"'
	}
	if comma == quote {
		return ErrInvalidDialect
	}
	term := w.Terminator
	if term == "" {
		term = "\r\n"
	}

	for i := range record {
		if i > 0 {
			if err := w.dst.WriteByte(comma); err != nil {
				w.err = err
				return err
			}
		}
		if err := w.writeField(record[i], comma, quote, term); err != nil {
			w.err = err
			return err
		}
	}

	if _, err := w.dst.WriteString(term); err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteAllContext writes multiple records, checking ctx between records.
// Cancellation never interrupts the encoding of an in-progress record.
func (w *Writer) WriteAllContext(ctx context.Context, records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

func (w *Writer) writeField(field string, comma, quote byte, term string) error {
	if !fieldNeedsQuote(field, comma, quote, term) {
		_, err := w.dst.WriteString(field)
		return err
	}
	if err := w.dst.WriteByte(quote); err != nil {
		return err
	}

	// Copy plain runs between quote characters, doubling each quote.
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == quote {
			if start < i {
				if _, err := w.dst.WriteString(field[start:i]); err != nil {
					return err
				}
			}
			if _, err := w.dst.Write([]byte{quote, quote}); err != nil {
				return err
			}
			start = i + 1
		}
	}
	if start < len(field) {
		if _, err := w.dst.WriteString(field[start:]); err != nil {
			return err
		}
	}
	return w.dst.WriteByte(quote)
}

func fieldNeedsQuote(field string, comma, quote byte, term string) bool {
	for i := 0; i < len(field); i++ {
		if field[i] == quote || field[i] == comma {
			return true
		}
	}
	return strings.ContainsAny(field, term)
}
