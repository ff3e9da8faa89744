// Package dataset renders frame streams as labeled CSV training data.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rudresh69/SIH2025/internal/sim"
)

// Writer streams frames to CSV, one row per frame, with the canonical
// column header written first.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
	rows        int
}

// NewWriter wraps w. Nothing is written until the first frame.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteFrame appends one frame row, emitting the header first if needed.
func (w *Writer) WriteFrame(frame sim.Frame) error {
	if !w.wroteHeader {
		if err := w.csv.Write(sim.Header()); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		w.wroteHeader = true
	}
	if err := w.csv.Write(frame.Record()); err != nil {
		return fmt.Errorf("write csv row %d: %w", w.rows, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of frame rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush writes buffered rows to the underlying writer and reports any
// accumulated write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
