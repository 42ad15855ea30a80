package output

import (
	"os"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/compression"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// WriteFile writes t to path in format, compressed per comp (nil for none)
func WriteFile(path string, t *columnar.Table, format Format, comp *compression.Config, opts ...Option) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the caller
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output").
			WithDetail("path", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close output").
				WithDetail("path", path)
		}
	}()

	w, err := compression.NewWriter(f, comp)
	if err != nil {
		return err
	}

	formatter, err := New(format, w, opts...)
	if err != nil {
		_ = w.Close()
		return err
	}
	if err := formatter.Format(t); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to finish compressed output")
	}
	return nil
}
