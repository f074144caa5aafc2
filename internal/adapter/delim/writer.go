package delim

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
)

// Writer persists detection tables. Writes go to a temporary file in the
// destination directory and are renamed into place only after a successful
// flush, so a crash mid-run never leaves a truncated usable output file.
type Writer struct{}

// NewWriter creates a table writer.
func NewWriter() *Writer { return &Writer{} }

// WriteTable writes the records as a comma-delimited table with the
// canonical header, atomically.
func (w *Writer) WriteTable(path string, records []domain.Detection) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := writeRows(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

func writeRows(f *os.File, records []domain.Detection) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(domain.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Fields()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTable loads a whole persisted table into memory, returning the records
// in file order. Intended for the modest intermediate and final tables, not
// raw granules.
func ReadTable(path string) ([]domain.Detection, ScanStats, error) {
	var records []domain.Detection
	r := NewReader()
	stats, err := r.ScanFile(path, func(d domain.Detection) error {
		records = append(records, d)
		return nil
	})
	return records, stats, err
}
