// Package csvio reads delimited text into the header and raw rows that
// columnar.Load builds a Table from. Input may be compressed; the format is
// detected from the file extension unless set explicitly.
package csvio

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/compression"
	"github.com/ajitpratap0/bears/pkg/errors"
)

const bom = "\ufeff"

// Options controls how input is parsed
type Options struct {
	// Delimiter separates fields; defaults to ','
	Delimiter rune
	// Comment, if set, marks lines to skip
	Comment rune
	// TrimLeadingSpace ignores leading white space in a field
	TrimLeadingSpace bool
	// Compression overrides detection from the file extension
	Compression compression.Algorithm
}

// Option configures reading
type Option func(*Options)

// WithDelimiter sets the field delimiter
func WithDelimiter(d rune) Option {
	return func(o *Options) { o.Delimiter = d }
}

// WithComment skips lines starting with c
func WithComment(c rune) Option {
	return func(o *Options) { o.Comment = c }
}

// WithTrimLeadingSpace ignores leading white space in fields
func WithTrimLeadingSpace(trim bool) Option {
	return func(o *Options) { o.TrimLeadingSpace = trim }
}

// WithCompression forces the input compression format
func WithCompression(alg compression.Algorithm) Option {
	return func(o *Options) { o.Compression = alg }
}

func newOptions(opts []Option) Options {
	o := Options{Delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Read parses uncompressed CSV from r. The first record is the header. Rows
// are returned as parsed; a row whose field count differs from the header is
// left for columnar.Load to reject with its row number.
func Read(r io.Reader, opts ...Option) ([]string, [][]string, error) {
	o := newOptions(opts)

	if o.Compression != "" && o.Compression != compression.None {
		dec, err := compression.NewReader(r, o.Compression)
		if err != nil {
			return nil, nil, err
		}
		defer dec.Close()
		r = dec
	}

	reader := csv.NewReader(r)
	reader.Comma = o.Delimiter
	reader.Comment = o.Comment
	reader.TrimLeadingSpace = o.TrimLeadingSpace
	reader.FieldsPerRecord = -1 // Load reports count mismatches

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.New(errors.ErrorTypeSchema, "input has no header row")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read header")
	}
	header[0] = strings.TrimPrefix(header[0], bom)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read rows")
	}
	return header, rows, nil
}

// ReadFile reads path, decompressing it according to its extension unless
// WithCompression is given
func ReadFile(path string, opts ...Option) ([]string, [][]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the caller
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input").
			WithDetail("path", path)
	}
	defer f.Close()

	o := newOptions(opts)
	if o.Compression == "" {
		opts = append(opts, WithCompression(compression.FromPath(path)))
	}

	header, rows, err := Read(f, opts...)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, nil, e.WithDetail("path", path)
		}
		return nil, nil, err
	}
	return header, rows, nil
}

// Load reads r into a Table
func Load(r io.Reader, opts []Option, loadOpts ...columnar.LoadOption) (*columnar.Table, error) {
	header, rows, err := Read(r, opts...)
	if err != nil {
		return nil, err
	}
	return columnar.Load(header, rows, loadOpts...)
}

// LoadFile reads path into a Table
func LoadFile(path string, opts []Option, loadOpts ...columnar.LoadOption) (*columnar.Table, error) {
	header, rows, err := ReadFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return columnar.Load(header, rows, loadOpts...)
}
