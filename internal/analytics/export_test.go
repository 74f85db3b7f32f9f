package analytics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportTime = time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

func TestFilename(t *testing.T) {
	assert.Equal(t, "analytics-2025-03-09.json", Filename(FormatJSON, exportTime))
	assert.Equal(t, "analytics-2025-03-09.csv", Filename(FormatCSV, exportTime))
	assert.Equal(t, "analytics-2025-03-10.csv", Filename(FormatCSV, exportTime.Add(7*time.Hour)))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}

func TestWriteJSONRoundTrip(t *testing.T) {
	snap := Default(exportTime)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, snap))

	assert.Contains(t, buf.String(), "\n  \"summary\": {")
	assert.Contains(t, buf.String(), "Pune → Mumbai")

	var got Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.ExportDate.Equal(snap.ExportDate))
	got.ExportDate = snap.ExportDate
	assert.Equal(t, snap, got)
}

func TestWriteCSVSections(t *testing.T) {
	snap := Default(exportTime)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, snap))

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	index := map[string]int{}
	for i, rec := range records {
		if len(rec) == 1 {
			index[rec[0]] = i
		}
	}
	for _, section := range []string{"ANALYTICS SUMMARY", "MONTHLY COST SAVINGS", "FLEET STATUS", "TOP ROUTES", "RECENT ARBITRAGE OPPORTUNITIES"} {
		_, ok := index[section]
		assert.True(t, ok, "missing section %s", section)
	}
	assert.Less(t, index["ANALYTICS SUMMARY"], index["MONTHLY COST SAVINGS"])
	assert.Less(t, index["TOP ROUTES"], index["RECENT ARBITRAGE OPPORTUNITIES"])

	assert.Equal(t, []string{"Export Date", "2025-03-09T18:00:00Z"}, records[1])
	assert.Equal(t, []string{"Jan", "$2500", "$4200"}, records[index["MONTHLY COST SAVINGS"]+2])
	assert.Equal(t, []string{"Critical", "1"}, records[index["FLEET STATUS"]+5])

	last := records[len(records)-1]
	require.Len(t, last, 9)
	assert.Equal(t, "ARB-002", last[0])
	assert.Equal(t, "$3300", last[6])
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	snap := Default(exportTime)
	snap.TopRoutes = []RouteVolume{{Route: "Nashik, MH → Surat", Deliveries: 10}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, snap))
	assert.Contains(t, buf.String(), "\"Nashik, MH → Surat\",10")
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), Default(exportTime)))
}
