package delim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
)

const commaGranule = `date,time,satelliteFlag,lat,lon,brightness1,brightness2,sampleNumber,fireRadiativePower,confidence,detectionType
20150901,0321,T,-1.5,110.2,325.4,296.1,512,45.7,80,2
20150902,1745,A,-2.25,108.975,341,301.5,87,120.3,95,0
`

const whitespaceGranule = `date time satelliteFlag lat lon brightness1 brightness2 sampleNumber fireRadiativePower confidence detectionType
20150901 0321 T -1.5 110.2 325.4 296.1 512 45.7 80 2
20150902 1745 A -2.25 108.975 341 301.5 87 120.3 95 0
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func scanAll(t *testing.T, path string) ([]domain.Detection, ScanStats) {
	t.Helper()
	var recs []domain.Detection
	stats, err := NewReader().ScanFile(path, func(d domain.Detection) error {
		recs = append(recs, d)
		return nil
	})
	require.NoError(t, err)
	return recs, stats
}

func TestScanFile_CommaDelimited(t *testing.T) {
	recs, stats := scanAll(t, writeFixture(t, "g.csv", commaGranule))

	require.Len(t, recs, 2)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, -1.5, recs[0].Lat)
	assert.Equal(t, "A", recs[1].Satellite)
	assert.Equal(t, 120.3, recs[1].FRP)
}

func TestScanFile_WhitespaceDelimited(t *testing.T) {
	commaRecs, _ := scanAll(t, writeFixture(t, "g.csv", commaGranule))
	spaceRecs, _ := scanAll(t, writeFixture(t, "g.txt", whitespaceGranule))

	// Both encodings of the same table parse identically.
	assert.Empty(t, cmp.Diff(commaRecs, spaceRecs))
}

func TestScanFile_ColumnOrderIndependent(t *testing.T) {
	shuffled := `lon,lat,date,time,satelliteFlag,brightness1,brightness2,sampleNumber,fireRadiativePower,confidence,detectionType
110.2,-1.5,20150901,0321,T,325.4,296.1,512,45.7,80,2
`
	recs, _ := scanAll(t, writeFixture(t, "g.csv", shuffled))

	require.Len(t, recs, 1)
	assert.Equal(t, -1.5, recs[0].Lat)
	assert.Equal(t, 110.2, recs[0].Lon)
}

func TestScanFile_MalformedRowsSkipped(t *testing.T) {
	content := commaGranule +
		"20150903,0800,T,not-a-latitude,110,300,290,5,1.5,50,0\n" + // bad lat
		"20150230,0800,T,-1,110,300,290,5,1.5,50,0\n" + // impossible date
		"20150904,0800,T,-1\n" // short row
	recs, stats := scanAll(t, writeFixture(t, "g.csv", content))

	assert.Len(t, recs, 2)
	assert.Equal(t, 5, stats.Scanned)
	assert.Equal(t, 3, stats.Skipped)
}

func TestScanFile_MissingFile(t *testing.T) {
	_, err := NewReader().ScanFile(filepath.Join(t.TempDir(), "nope.csv"), func(domain.Detection) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestScanFile_EmptyFile(t *testing.T) {
	_, err := NewReader().ScanFile(writeFixture(t, "empty.csv", ""), func(domain.Detection) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestScanFile_MissingColumn(t *testing.T) {
	content := strings.Replace(commaGranule, "confidence", "conf", 1)
	_, err := NewReader().ScanFile(writeFixture(t, "g.csv", content), func(domain.Detection) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestScanFile_CallbackErrorAborts(t *testing.T) {
	path := writeFixture(t, "g.csv", commaGranule)
	calls := 0
	_, err := NewReader().ScanFile(path, func(domain.Detection) error {
		calls++
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestWriteTable_ReadTable_RoundTrip(t *testing.T) {
	original, _ := scanAll(t, writeFixture(t, "g.csv", commaGranule))
	path := filepath.Join(t.TempDir(), "out", "table.csv")

	require.NoError(t, NewWriter().WriteTable(path, original))

	reread, stats, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Skipped)
	assert.Empty(t, cmp.Diff(original, reread), "persisted table must re-read identically")
}

func TestWriteTable_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty_out.csv")
	require.NoError(t, NewWriter().WriteTable(path, nil))

	recs, _, err := ReadTable(path)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestWriteTable_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.csv")
	original, _ := scanAll(t, writeFixture(t, "g.csv", commaGranule))

	require.NoError(t, NewWriter().WriteTable(path, original))
	// Overwrite is also atomic.
	require.NoError(t, NewWriter().WriteTable(path, original[:1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "table.csv", entries[0].Name())
}
