// history.go - Audit sheet rows read back as history entries

package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Audit sheet columns, in order
const (
	colTimestamp = iota
	colType
	colTitle
	colStatus
	colLinks
	colData
)

// HistoryItem is one past analysis as recorded in the audit sheet
type HistoryItem struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Date      string          `json:"date"`
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	ImageLink string          `json:"image_link,omitempty"`
}

// parseHistoryRows converts raw sheet rows into history items, newest first.
// rowOffset is the 1-based sheet row of rows[0]; IDs are sheet row numbers.
// A header row and empty rows are skipped.
func parseHistoryRows(rows [][]interface{}, rowOffset int) []HistoryItem {
	items := make([]HistoryItem, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && strings.EqualFold(cell(row, colTimestamp), "timestamp") {
			continue
		}

		item := HistoryItem{
			ID:     fmt.Sprintf("%d", rowOffset+i),
			Date:   cell(row, colTimestamp),
			Type:   cell(row, colType),
			Title:  cell(row, colTitle),
			Status: cell(row, colStatus),
		}
		if links := strings.Fields(cell(row, colLinks)); len(links) > 0 {
			item.ImageLink = links[0]
		}
		if data := cell(row, colData); data != "" && json.Valid([]byte(data)) {
			item.Data = json.RawMessage(data)
		}
		if item.Date == "" && item.Type == "" {
			continue
		}

		items = append(items, item)
	}

	for l, r := 0, len(items)-1; l < r; l, r = l+1, r-1 {
		items[l], items[r] = items[r], items[l]
	}
	return items
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}
