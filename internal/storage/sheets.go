// sheets.go - Appends analysis results to the audit spreadsheet and reads them back

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var rangeStartRow = regexp.MustCompile(`![A-Za-z]+(\d+)`)

// SheetsLogger writes one row per analysis to a spreadsheet range
type SheetsLogger struct {
	service       *sheets.Service
	spreadsheetID string
	valueRange    string
	cache         *HistoryCache
	now           func() time.Time
}

// NewSheetsLogger creates a logger for spreadsheetID. cache may be nil.
func NewSheetsLogger(ctx context.Context, spreadsheetID, valueRange string, cache *HistoryCache, opts ...option.ClientOption) (*SheetsLogger, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}

	return &SheetsLogger{
		service:       service,
		spreadsheetID: spreadsheetID,
		valueRange:    valueRange,
		cache:         cache,
		now:           time.Now,
	}, nil
}

// LogScanResult appends [timestamp, type, title, status, links, result JSON]
func (s *SheetsLogger) LogScanResult(ctx context.Context, op ai.Operation, result *ai.AnalysisResult, imageLinks []string) error {
	if s == nil {
		return nil
	}
	if result == nil {
		return fmt.Errorf("no result to log")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	row := []interface{}{
		s.now().UTC().Format(time.RFC3339),
		string(op),
		result.Title(),
		result.Status(),
		strings.Join(imageLinks, "\n"),
		string(data),
	}

	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.valueRange, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append audit row: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}

	fields := logrus.Fields{"operation": op, "spreadsheet_id": s.spreadsheetID}
	if resp.Updates != nil {
		fields["updated_range"] = resp.Updates.UpdatedRange
	}
	logger.WithFields(fields).Info("Audit row appended")
	return nil
}

// ReadHistory returns all audit rows, newest first. Results are served from the cache
// while it is fresh.
func (s *SheetsLogger) ReadHistory(ctx context.Context) ([]HistoryItem, error) {
	if s.cache == nil {
		return s.fetchHistory(ctx)
	}
	return s.cache.GetOrLoad(ctx, s.fetchHistory)
}

func (s *SheetsLogger) fetchHistory(ctx context.Context) ([]HistoryItem, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.valueRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit history: %w", err)
	}

	return parseHistoryRows(resp.Values, startRow(resp.Range)), nil
}

// startRow extracts the first row number of an A1 range, defaulting to 1
func startRow(a1 string) int {
	if m := rangeStartRow.FindStringSubmatch(a1); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
