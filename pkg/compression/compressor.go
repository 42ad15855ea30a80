// Package compression wraps readers and writers with the compression formats
// bears reads input from and writes output to.
//
// # Algorithm Selection
//
// The algorithm is picked explicitly or detected from a file extension:
//
//	.gz        gzip
//	.zst/.zstd zstd
//	.lz4       lz4 frame
//	.sz        snappy framed
//	.s2        s2
//
// # Basic Usage
//
//	r, err := compression.NewReader(f, compression.FromPath(path))
//	defer r.Close()
//
//	w, err := compression.NewWriter(out, &compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Better,
//	})
//	defer w.Close()
package compression

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/bears/pkg/errors"
)

// Algorithm names a compression format
type Algorithm string

const (
	None   Algorithm = "none"
	Gzip   Algorithm = "gzip"
	Zstd   Algorithm = "zstd"
	LZ4    Algorithm = "lz4"
	Snappy Algorithm = "snappy"
	// S2 streams are readable by framed snappy decoders
	S2 Algorithm = "s2"
)

// Level trades speed for ratio. Each codec maps it onto its own scale.
type Level int

const (
	Fastest Level = 1
	Default Level = 5
	Better  Level = 7
	Best    Level = 9
)

// Config selects the codec used by NewWriter
type Config struct {
	Algorithm Algorithm
	Level     Level
}

// DefaultConfig writes uncompressed
func DefaultConfig() *Config {
	return &Config{Algorithm: None, Level: Default}
}

type codec struct {
	ext    string
	reader func(io.Reader) (io.ReadCloser, error)
	writer func(io.Writer, Level) (io.WriteCloser, error)
}

var codecs = map[Algorithm]codec{
	Gzip: {
		ext: ".gz",
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		writer: func(w io.Writer, l Level) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzipLevels.pick(l, gzip.DefaultCompression))
		},
	},
	Zstd: {
		ext: ".zst",
		reader: func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		},
		writer: func(w io.Writer, l Level) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(zstdLevels.pick(l, zstd.SpeedDefault)))
		},
	},
	LZ4: {
		ext: ".lz4",
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		},
		writer: func(w io.Writer, l Level) (io.WriteCloser, error) {
			lw := lz4.NewWriter(w)
			if err := lw.Apply(lz4.CompressionLevelOption(lz4Levels.pick(l, lz4.Level5))); err != nil {
				return nil, err
			}
			return lw, nil
		},
	},
	Snappy: {
		ext: ".sz",
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(snappy.NewReader(r)), nil
		},
		writer: func(w io.Writer, _ Level) (io.WriteCloser, error) {
			return snappy.NewBufferedWriter(w), nil
		},
	},
	S2: {
		ext: ".s2",
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(s2.NewReader(r)), nil
		},
		writer: func(w io.Writer, _ Level) (io.WriteCloser, error) {
			return s2.NewWriter(w), nil
		},
	},
}

type levels[T any] map[Level]T

func (m levels[T]) pick(l Level, fallback T) T {
	if v, ok := m[l]; ok {
		return v
	}
	return fallback
}

var (
	gzipLevels = levels[int]{Fastest: gzip.BestSpeed, Better: 7, Best: gzip.BestCompression}
	zstdLevels = levels[zstd.EncoderLevel]{
		Fastest: zstd.SpeedFastest,
		Better:  zstd.SpeedBetterCompression,
		Best:    zstd.SpeedBestCompression,
	}
	lz4Levels = levels[lz4.CompressionLevel]{Fastest: lz4.Fast, Best: lz4.Level9}
)

// extra spellings accepted by FromPath
var aliases = map[string]Algorithm{".gzip": Gzip, ".zstd": Zstd}

// FromPath detects the algorithm from the extension of path. Unknown
// extensions are None.
func FromPath(path string) Algorithm {
	ext := strings.ToLower(filepath.Ext(path))
	if alg, ok := aliases[ext]; ok {
		return alg
	}
	for alg, c := range codecs {
		if c.ext == ext {
			return alg
		}
	}
	return None
}

// Extension is the file extension written for alg; "" for None
func Extension(alg Algorithm) string {
	return codecs[alg].ext
}

// Parse validates an algorithm name, case-insensitively. "" is None.
func Parse(name string) (Algorithm, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if alg == "" || alg == None {
		return None, nil
	}
	if _, ok := codecs[alg]; !ok {
		return "", unsupported(name)
	}
	return alg, nil
}

// NewReader decompresses src. Closing the result does not close src.
func NewReader(src io.Reader, alg Algorithm) (io.ReadCloser, error) {
	if alg == "" || alg == None {
		return io.NopCloser(src), nil
	}
	c, ok := codecs[alg]
	if !ok {
		return nil, unsupported(string(alg))
	}
	r, err := c.reader(src)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "open "+string(alg)+" stream")
	}
	return r, nil
}

// NewWriter compresses into dst according to config; nil writes plain bytes.
// Close flushes the stream and leaves dst open.
func NewWriter(dst io.Writer, config *Config) (io.WriteCloser, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Algorithm == "" || config.Algorithm == None {
		return nopWriteCloser{dst}, nil
	}
	c, ok := codecs[config.Algorithm]
	if !ok {
		return nil, unsupported(string(config.Algorithm))
	}
	w, err := c.writer(dst, config.Level)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "create "+string(config.Algorithm)+" writer")
	}
	return w, nil
}

func unsupported(name string) error {
	return errors.Newf(errors.ErrorTypeValidation, "unsupported compression algorithm: %s", name)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
