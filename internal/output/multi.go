package output

import (
	"go.uber.org/multierr"

	"github.com/inodb/vibe-anno/internal/annotate"
	"github.com/inodb/vibe-anno/internal/vcf"
)

// MultiWriter fans results out to several writers.
type MultiWriter struct {
	writers []annotate.ResultWriter
}

// NewMultiWriter creates a writer that forwards to each of writers in order.
func NewMultiWriter(writers ...annotate.ResultWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteHeader writes every header, stopping at the first error.
func (m *MultiWriter) WriteHeader() error {
	for _, w := range m.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

// Write forwards one result, stopping at the first error.
func (m *MultiWriter) Write(v *vcf.Variant, r annotate.Result) error {
	for _, w := range m.writers {
		if err := w.Write(v, r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer and returns all errors combined.
func (m *MultiWriter) Flush() error {
	var err error
	for _, w := range m.writers {
		err = multierr.Append(err, w.Flush())
	}
	return err
}
