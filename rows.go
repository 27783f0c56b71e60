package linecsv

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"
)

// ErrMissingColumn is returned when a defined column is absent from the header.
var ErrMissingColumn = errors.New("linecsv: column not found in header")

// ValueFunc converts one field's raw text into a typed value.
type ValueFunc func(s string) (any, error)

// FieldDef names a column and how its text becomes a value. A nil Parse
// keeps the raw string.
type FieldDef struct {
	Name  string
	Parse ValueFunc
}

// Row holds one record's converted values in field-definition order.
type Row []any

// RowReader reads typed, named rows from CSV text. The first record is the
// header; columns are located by name, so physical column order does not
// matter. Everything here is built on ParseLine via RecordReader.
type RowReader struct {
	// NullIfEmpty maps an empty field to a nil value instead of invoking
	// the field's ValueFunc.
	NullIfEmpty bool

	rr      *RecordReader
	defs    []FieldDef
	header  []string
	cols    []int
	started bool
}

// NewRowReader creates a RowReader over r for the given field definitions,
// panicking if r is nil or no definitions are supplied. The header is read
// lazily on first use.
func NewRowReader(r io.Reader, defs ...FieldDef) *RowReader {
	if len(defs) == 0 {
		panic("linecsv: row reader needs at least one field definition")
	}
	return &RowReader{
		rr:   NewRecordReader(r),
		defs: slices.Clone(defs),
	}
}

// Parser exposes the underlying dialect so it can be adjusted before the
// first read.
func (rw *RowReader) Parser() *Parser {
	return rw.rr.Parser
}

func (rw *RowReader) init() error {
	if rw.started {
		return nil
	}
	record, err := rw.rr.Read()
	if err != nil {
		if err == io.EOF {
			return errors.New("linecsv: missing header record")
		}
		return err
	}
	rw.header = append([]string(nil), record...)
	rw.cols = make([]int, len(rw.defs))
	for i, def := range rw.defs {
		idx := slices.Index(rw.header, def.Name)
		if idx < 0 {
			return fmt.Errorf("%w: %q", ErrMissingColumn, def.Name)
		}
		rw.cols[i] = idx
	}
	rw.started = true
	return nil
}

// Header returns the header record, reading it if necessary.
func (rw *RowReader) Header() ([]string, error) {
	if err := rw.init(); err != nil {
		return nil, err
	}
	return rw.header, nil
}

// Next returns the next row, or io.EOF after the last record. Conversion
// errors name the offending column and line.
func (rw *RowReader) Next() (Row, error) {
	if err := rw.init(); err != nil {
		return nil, err
	}
	record, err := rw.rr.Read()
	if err != nil {
		return nil, err
	}

	row := make(Row, len(rw.defs))
	for i, col := range rw.cols {
		def := rw.defs[i]
		if col >= len(record) {
			return nil, fmt.Errorf("linecsv: line %d: record has %d fields, column %q wants field %d",
				rw.rr.Line(), len(record), def.Name, col+1)
		}
		raw := record[col]
		if rw.NullIfEmpty && raw == "" {
			row[i] = nil
			continue
		}
		if def.Parse == nil {
			row[i] = raw
			continue
		}
		v, err := def.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("linecsv: line %d: column %q: %w", rw.rr.Line(), def.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

// ReadAll exhausts the reader, returning every remaining row.
func (rw *RowReader) ReadAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := rw.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Stock ValueFuncs for common column types. Locale-sensitive formats need a
// caller-supplied ValueFunc instead.

// StringValue keeps the raw field text.
func StringValue(s string) (any, error) {
	return s, nil
}

// IntValue parses a base-10 integer.
func IntValue(s string) (any, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// FloatValue parses a 64-bit float.
func FloatValue(s string) (any, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// BoolValue parses a boolean with strconv.ParseBool semantics.
func BoolValue(s string) (any, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// TimeValue returns a ValueFunc parsing timestamps with the given layout.
func TimeValue(layout string) ValueFunc {
	return func(s string) (any, error) {
		v, err := time.Parse(layout, s)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
