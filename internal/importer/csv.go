// Package importer reads registry CSV exports into person, asset and guardian records.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Row is one CSV line keyed by its header
type Row map[string]string

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a header-first CSV. Input is UTF-8 (with or without BOM) or
// Shift_JIS/CP932 as written by Excel on Japanese Windows.
func ReadCSV(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	data, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(Row, len(header))
		for j, col := range rec {
			if j < len(header) && header[j] != "" {
				row[header[j]] = strings.TrimSpace(col)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decode(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		return raw[len(utf8BOM):], nil
	}
	if utf8.Valid(raw) {
		return raw, nil
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv as Shift_JIS: %w", err)
	}
	return decoded, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
