package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/model"

	"github.com/xuri/excelize/v2"
)

// WorkbookSource reads an SIS spreadsheet export with one sheet per entity
// ("schools", "students"). The first row holds the field names, either in the
// SIS camelCase form or snake_case.
type WorkbookSource struct {
	path string
}

func NewWorkbookSource(path string) *WorkbookSource {
	return &WorkbookSource{path: path}
}

func (s *WorkbookSource) Name() string { return config.SourceXLSX }

func (s *WorkbookSource) NeedsSIS() bool { return false }

func (s *WorkbookSource) Fetch(ctx context.Context, _ model.Credentials, entity model.EntityType) (*Collection, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fetchError(entity, fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	file, err := excelize.OpenReader(f)
	if err != nil {
		return nil, fetchError(entity, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer file.Close()

	sheet, ok := findSheet(file.GetSheetList(), string(entity))
	if !ok {
		return nil, fetchError(entity, fmt.Errorf("workbook has no %q sheet", entity))
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fetchError(entity, fmt.Errorf("failed to get rows: %w", err))
	}

	records := rowsToRecords(rows)
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fetchError(entity, err)
	}
	return decodeCollection(entity, raw)
}

func findSheet(sheets []string, name string) (string, bool) {
	for _, sheet := range sheets {
		if strings.EqualFold(strings.TrimSpace(sheet), name) {
			return sheet, true
		}
	}
	return "", false
}

// rowsToRecords turns data rows into objects keyed by header. Empty cells are
// left out so they read the same as a missing JSON field.
func rowsToRecords(rows [][]string) []map[string]string {
	records := []map[string]string{}
	if len(rows) == 0 {
		return records
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = fieldName(col)
	}

	for _, row := range rows[1:] {
		record := make(map[string]string)
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v := strings.TrimSpace(cell); v != "" {
				record[header[i]] = v
			}
		}
		if len(record) == 0 {
			continue // blank row
		}
		records = append(records, record)
	}
	return records
}

// fieldName converts "student_unique_id" or "Student Unique ID" style headers
// to the SIS field name "studentUniqueId". Headers already in camelCase pass
// through untouched.
func fieldName(header string) string {
	header = strings.TrimSpace(header)
	if !strings.ContainsAny(header, "_ -") {
		if header == "" {
			return ""
		}
		return strings.ToLower(header[:1]) + header[1:]
	}

	parts := strings.FieldsFunc(header, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	var b strings.Builder
	for i, part := range parts {
		part = strings.ToLower(part)
		if i > 0 {
			part = strings.ToUpper(part[:1]) + part[1:]
		}
		b.WriteString(part)
	}
	return b.String()
}
