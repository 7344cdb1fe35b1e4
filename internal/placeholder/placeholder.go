// Package placeholder fills free-form templates whose cells or paragraphs carry
// {{key}} tokens. Unlike the periodic report there are no fixed coordinates.
package placeholder

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"koken-report/internal/logger"

	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
)

// Record is the flat key/value source for token substitution.
// A nil value renders as an empty string.
type Record map[string]interface{}

var tokenPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Substitute replaces every {{key}} in text whose key exists in record.
// Tokens without a matching key are left as they are.
func Substitute(text string, record Record) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := token[2 : len(token)-2]
		value, ok := record[key]
		if !ok {
			return token
		}
		return stringify(value)
	})
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

// FillWorkbook substitutes tokens in every string cell of every sheet of wb.
// Formula cells are left alone. Returns the number of cells rewritten.
func FillWorkbook(wb *excelize.File, record Record) (int, error) {
	rewritten := 0
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return rewritten, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		for r, row := range rows {
			for c, value := range row {
				if !strings.Contains(value, "{{") {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					continue
				}
				if formula, _ := wb.GetCellFormula(sheet, cell); formula != "" {
					continue
				}
				filled := Substitute(value, record)
				if filled == value {
					continue
				}
				if err := wb.SetCellStr(sheet, cell, filled); err != nil {
					return rewritten, fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
				}
				rewritten++
			}
		}
	}
	return rewritten, nil
}

// FillXLSX loads a workbook from data, fills it and returns the new workbook bytes.
// Load errors are returned as they come from the workbook reader.
func FillXLSX(data []byte, record Record) ([]byte, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	n, err := FillWorkbook(wb, record)
	if err != nil {
		return nil, err
	}
	logger.Debug("placeholder: %d cells filled", n)

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FillDOCX fills a Word document. Word sometimes splits a token across runs
// while editing; such tokens are not found and stay in the output.
func FillDOCX(data []byte, record Record) ([]byte, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer r.Close()

	doc := r.Editable()

	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatch(doc.GetContent(), -1) {
		token, key := m[0], m[1]
		if seen[token] {
			continue
		}
		seen[token] = true

		value, ok := record[key]
		if !ok {
			continue
		}
		if err := doc.Replace(token, stringify(value), -1); err != nil {
			return nil, fmt.Errorf("failed to replace %s: %w", token, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return buf.Bytes(), nil
}

// Fill dispatches on the template file name: .docx documents or .xlsx/.xlsm workbooks
func Fill(name string, data []byte, record Record) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return FillDOCX(data, record)
	case ".xlsx", ".xlsm", "":
		return FillXLSX(data, record)
	default:
		return nil, fmt.Errorf("unsupported template type: %s", name)
	}
}
