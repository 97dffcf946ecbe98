package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// table is a parsed spreadsheet: one header row plus data rows.
type table struct {
	headers []string
	rows    [][]string
}

var errEmptyFile = errors.New("file contains no data rows")

func parseTabular(filename string, data []byte) (*table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx":
		return parseXLSX(data)
	}
	return nil, fmt.Errorf("unsupported file extension %q, expected .csv or .xlsx", filepath.Ext(filename))
}

func parseCSV(data []byte) (*table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, errEmptyFile
	}

	return &table{headers: records[0], rows: records[1:]}, nil
}

func parseXLSX(data []byte) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, errEmptyFile
	}

	return &table{headers: rows[0], rows: rows[1:]}, nil
}

func contentTypeFor(filename string) string {
	if strings.ToLower(filepath.Ext(filename)) == ".xlsx" {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// columnIndex locates the first header matching any of the candidate names,
// compared case-insensitively with surrounding whitespace ignored.
func (t *table) columnIndex(candidates ...string) int {
	for i, h := range t.headers {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if name == c {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseCount reads integers the way analytics exports write them: possibly
// empty, possibly with thousands separators.
func parseCount(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"01/02/2006",
	"Jan 2, 2006",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
