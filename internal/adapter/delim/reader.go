// Package delim reads and writes the delimited granule tables the pipeline
// consumes and produces. Input granules may be comma- or whitespace-
// delimited; output is always comma-delimited in canonical column order.
package delim

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
)

// ScanStats counts the rows seen while scanning one file.
type ScanStats struct {
	Scanned int // data rows read, well-formed or not
	Skipped int // malformed rows dropped
}

// Reader streams detections out of granule files. It is stateless; one
// Reader can scan many files.
type Reader struct{}

// NewReader creates a granule file reader.
func NewReader() *Reader { return &Reader{} }

// ScanFile streams every well-formed detection in the file to fn, in file
// order. Malformed rows (wrong field count, unparsable values) are counted
// and skipped without aborting the file. A file that cannot be opened or has
// no usable header fails with domain.ErrUnreadableFile. An error returned by
// fn aborts the scan and is returned as-is.
//
// Memory stays bounded by one row at a time regardless of file size.
func (r *Reader) ScanFile(path string, fn func(domain.Detection) error) (ScanStats, error) {
	var stats ScanStats

	f, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("%w: %s: %v", domain.ErrUnreadableFile, path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 256*1024)
	headerLine, err := readLine(br)
	if err != nil {
		return stats, fmt.Errorf("%w: %s: missing header row", domain.ErrUnreadableFile, path)
	}

	comma := strings.Contains(headerLine, ",")
	header := splitRow(headerLine, comma)
	colIdx, err := mapColumns(header)
	if err != nil {
		return stats, fmt.Errorf("%w: %s: %v", domain.ErrUnreadableFile, path, err)
	}

	if comma {
		return r.scanCSV(br, colIdx, stats, fn)
	}
	return r.scanWhitespace(br, colIdx, stats, fn)
}

// scanCSV streams comma-delimited rows through encoding/csv, which tolerates
// quoted fields. A row-level parse error skips that row and continues.
func (r *Reader) scanCSV(br *bufio.Reader, colIdx map[string]int, stats ScanStats, fn func(domain.Detection) error) (ScanStats, error) {
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1 // field count is checked per row below
	cr.TrimLeadingSpace = true

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			stats.Scanned++
			stats.Skipped++
			continue
		}
		stats.Scanned++
		if err := r.emitRow(row, colIdx, &stats, fn); err != nil {
			return stats, err
		}
	}
}

func (r *Reader) scanWhitespace(br *bufio.Reader, colIdx map[string]int, stats ScanStats, fn func(domain.Detection) error) (ScanStats, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stats.Scanned++
		if err := r.emitRow(strings.Fields(line), colIdx, &stats, fn); err != nil {
			return stats, err
		}
	}
	return stats, sc.Err()
}

// emitRow reorders a raw row into canonical column order, parses it, and
// hands it to fn. Parse failures count as skipped.
func (r *Reader) emitRow(row []string, colIdx map[string]int, stats *ScanStats, fn func(domain.Detection) error) error {
	canonical, ok := reorder(row, colIdx)
	if !ok {
		stats.Skipped++
		return nil
	}
	det, err := domain.ParseDetection(canonical)
	if err != nil {
		stats.Skipped++
		return nil
	}
	return fn(det)
}

// mapColumns resolves the canonical column set against a header row. Every
// column in domain.Columns must be present (any order, case-insensitive).
func mapColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	colIdx := make(map[string]int, len(domain.Columns))
	for _, col := range domain.Columns {
		i, ok := idx[strings.ToLower(col)]
		if !ok {
			return nil, fmt.Errorf("header missing column %q", col)
		}
		colIdx[col] = i
	}
	return colIdx, nil
}

// reorder maps a raw row into canonical column order. Returns false if the
// row is too short to hold every mapped column.
func reorder(row []string, colIdx map[string]int) ([]string, bool) {
	out := make([]string, len(domain.Columns))
	for c, col := range domain.Columns {
		i := colIdx[col]
		if i >= len(row) {
			return nil, false
		}
		out[c] = strings.TrimSpace(row[i])
	}
	return out, true
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func splitRow(line string, comma bool) []string {
	if comma {
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return strings.Fields(line)
}
