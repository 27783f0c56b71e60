// # linecsv: Line-Oriented CSV Parsing and Writing for Go
//
// linecsv converts between CSV text and tabular records one line at a time. The core is a single-pass field scanner that decodes into caller-owned storage, and a symmetric writer that re-quotes and re-escapes only where the dialect requires it.
//
// # Features
//
// - `Parser.ParseLine` decodes one line into a reusable field slot array with a fixed-capacity scratch buffer; steady-state parsing allocates only the field strings themselves.
// - Configurable dialect: field delimiter, quote character, comment character, and record terminator.
// - Blank lines and comment lines decode to zero fields and are skipped by the stream readers.
// - Explicit error taxonomy: `ErrUnterminatedQuote`, `*CapacityError` (required vs. available size), `ErrInvalidDialect`, with positions via `*ParseError`.
// - `LineReader`/`RecordReader` adapt any io.Reader, accepting LF, CRLF, and lone CR terminators and decoding BOM-marked UTF-16 input.
// - `RowReader` turns records into typed, named values through caller-supplied conversion functions, with header-driven column lookup and optional null-if-empty handling.
// - Context-aware variants cancel between records, never mid-scan.
//
// # Getting Started
//
// The module path is `github.com/linecsv/linecsv`. A Parser or Writer instance is cheap; construct one per concurrent caller, since scratch storage is reused across calls.
package linecsv
