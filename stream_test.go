package linecsv

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestLineReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lf",
			input: "a\nb\n",
			want:  []string{"a", "b"},
		},
		{
			name:  "crlf",
			input: "a\r\nb\r\n",
			want:  []string{"a", "b"},
		},
		{
			name:  "loneCR",
			input: "a\rb\rc",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "mixedTerminators",
			input: "a\nb\r\nc\rd",
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "noFinalTerminator",
			input: "only",
			want:  []string{"only"},
		},
		{
			name:  "blankLinesPreserved",
			input: "a\n\nb\n",
			want:  []string{"a", "", "b"},
		},
		{
			name:  "utf8BOMStripped",
			input: "\ufeffx,y\nz,w\n",
			want:  []string{"x,y", "z,w"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			lr := NewLineReader(strings.NewReader(tc.input))
			var got []string
			for {
				line, err := lr.ReadLine()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				got = append(got, line)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLineReaderUTF16(t *testing.T) {
	t.Parallel()

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, _, err := transform.String(enc, "a,b\nc,d")
	require.NoError(t, err)

	lr := NewLineReader(strings.NewReader(encoded))
	first, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "a,b", first)
	second, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "c,d", second)
	_, err = lr.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestLineReaderLines(t *testing.T) {
	t.Parallel()

	lr := NewLineReader(strings.NewReader("a\nb\n"))
	var got []string
	for line, err := range lr.Lines() {
		require.NoError(t, err)
		got = append(got, line)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestNewLineReaderNilPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewLineReader(nil) })
}

func TestRecordReader(t *testing.T) {
	t.Parallel()

	const input = "# planets, inner only\nname,kind\n\nMercury,Planet\nVenus,Planet\n"

	r := NewRecordReader(strings.NewReader(input))
	records, err := r.ReadAll()
	require.NoError(t, err)

	want := [][]string{
		{"name", "kind"},
		{"Mercury", "Planet"},
		{"Venus", "Planet"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, r.Line())
}

func TestRecordReaderReusesSlots(t *testing.T) {
	t.Parallel()

	r := NewRecordReader(strings.NewReader("alpha\nbeta\n"))

	first, err := r.Read()
	require.NoError(t, err)
	second, err := r.Read()
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Same(t, &first[0], &second[0], "records should alias the reader's slot array")
	assert.Equal(t, "beta", second[0])

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestRecordReaderErrorCarriesLine(t *testing.T) {
	t.Parallel()

	r := NewRecordReader(strings.NewReader("ok,fine\n\"bad\n"))

	_, err := r.Read()
	require.NoError(t, err)

	_, err = r.Read()
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestRecordReaderContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRecordReader(strings.NewReader("a,b\n"))
	_, err := r.ReadContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The reader stays usable once the pressure is off.
	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, record)
}

func TestRecordReaderSlotsCapacity(t *testing.T) {
	t.Parallel()

	r := NewRecordReaderSlots(strings.NewReader("a,b,c\n"), make([]string, 2))
	_, err := r.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacity)

	var cerr *CapacityError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "field slots", cerr.What)
	assert.Equal(t, 3, cerr.Need)
	assert.Equal(t, 2, cerr.Have)
}

func TestRecordReaderCustomDialect(t *testing.T) {
	t.Parallel()

	r := NewRecordReader(strings.NewReader("%note\nleft;right\n"))
	r.Parser.Comma = ';'
	r.Parser.Comment = '%'

	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "right"}, record)
}

func TestNewRecordReaderSlotsPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewRecordReaderSlots(strings.NewReader(""), nil) })
}

type failReader struct {
	err error
}

func (f *failReader) Read([]byte) (int, error) {
	return 0, f.err
}

func TestRecordReaderPropagatesReadError(t *testing.T) {
	t.Parallel()

	exp := errors.New("disk on fire")
	r := NewRecordReader(&failReader{err: exp})

	_, err := r.Read()
	assert.ErrorIs(t, err, exp)
}
