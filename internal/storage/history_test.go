package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHistoryRows(t *testing.T) {
	rows := [][]interface{}{
		{"Timestamp", "Type", "Title", "Status", "Links", "Data"},
		{"2026-03-01T09:00:00Z", "single_medicine", "Dolo 650", "completed", "https://drive.google.com/a", `{"medicine_name":"Dolo 650"}`},
		{},
		{"2026-03-01T10:00:00Z", "strip_verification", "Crocin vs Dolo 650", "MISMATCH DETECTED", "https://drive.google.com/b\nhttps://drive.google.com/c", "not json"},
		{"2026-03-01T11:00:00Z", "prescription"},
	}

	items := parseHistoryRows(rows, 1)
	require.Len(t, items, 3)

	// newest first
	assert.Equal(t, "5", items[0].ID)
	assert.Equal(t, "prescription", items[0].Type)
	assert.Empty(t, items[0].ImageLink)
	assert.Nil(t, items[0].Data)

	assert.Equal(t, "4", items[1].ID)
	assert.Equal(t, "MISMATCH DETECTED", items[1].Status)
	assert.Equal(t, "https://drive.google.com/b", items[1].ImageLink)
	assert.Nil(t, items[1].Data)

	assert.Equal(t, "2", items[2].ID)
	assert.Equal(t, "Dolo 650", items[2].Title)
	assert.JSONEq(t, `{"medicine_name":"Dolo 650"}`, string(items[2].Data))
}

func TestStartRow(t *testing.T) {
	assert.Equal(t, 1, startRow("Sheet1!A1:F20"))
	assert.Equal(t, 2, startRow("'Audit Log'!A2:F"))
	assert.Equal(t, 1, startRow("Sheet1!A:F"))
	assert.Equal(t, 1, startRow(""))
}
