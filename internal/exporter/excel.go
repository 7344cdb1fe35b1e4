package exporter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"koken-report/internal/model"
	"koken-report/internal/report"

	"github.com/xuri/excelize/v2"
)

const (
	personsSheet = "対象者一覧"
	assetsSheet  = "財産一覧"
)

// ExcelExporter writes the ledger workbook
type ExcelExporter struct {
	// Stateless
}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export writes 台帳_<date>.xlsx into outDir
func (e *ExcelExporter) Export(ledger *Ledger, outDir string) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	styler, err := NewStyler(f)
	if err != nil {
		return nil, err
	}

	if err := e.writePersons(f, styler, ledger); err != nil {
		return nil, err
	}
	if err := e.writeAssets(f, styler, ledger); err != nil {
		return nil, err
	}

	// Remove default "Sheet1"
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		f.DeleteSheet("Sheet1")
	}

	path := filepath.Join(outDir, fmt.Sprintf("台帳_%s.xlsx", ledger.Date))
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", path, err)
	}
	return []string{path}, nil
}

func (e *ExcelExporter) writePersons(f *excelize.File, s *Styler, ledger *Ledger) error {
	if _, err := f.NewSheet(personsSheet); err != nil {
		return err
	}

	headers := []string{"No", "ID", model.ColName, model.ColKana, model.ColGuardianType,
		model.ColReportMonth, "報告期間", model.ColStatus, model.ColKeyPerson, "活動件数",
		"関係者件数", "財産件数", "財産合計"}
	e.writeRow(f, personsSheet, 1, headers, s.HeaderStyle)
	freezeHeader(f, personsSheet)

	today := ledgerDate(ledger.Date)
	for i, p := range ledger.Persons {
		row := i + 2
		assets := ledger.Assets[p.ID]

		period := "報告月未設定"
		style := s.WarnStyle
		if month, ok := model.ParseReportMonth(p.ReportMonth); ok {
			pr := report.ReportingPeriod(month, today)
			period = fmt.Sprintf("%s〜%s", pr.Start.Format("2006/01/02"), pr.End.Format("2006/01/02"))
			style = s.DefaultStyle
		}

		related := ledger.RelatedParties[p.ID]
		values := []interface{}{i + 1, p.ID, p.Name, p.Kana, p.GuardianType, p.ReportMonth,
			period, p.Status, keyPersons(related), len(ledger.Activities[p.ID]), len(related),
			len(assets), totalValuation(assets)}
		for col, v := range values {
			f.SetCellValue(personsSheet, cellName(col+1, row), v)
		}
		f.SetCellStyle(personsSheet, cellName(1, row), cellName(len(values)-1, row), style)
		f.SetCellStyle(personsSheet, cellName(len(values), row), cellName(len(values), row), s.MoneyStyle)
	}

	f.SetColWidth(personsSheet, "C", "D", 20)
	f.SetColWidth(personsSheet, "G", "G", 26)
	f.SetColWidth(personsSheet, "I", "I", 24)
	f.SetColWidth(personsSheet, "M", "M", 16)
	return nil
}

func (e *ExcelExporter) writeAssets(f *excelize.File, s *Styler, ledger *Ledger) error {
	if _, err := f.NewSheet(assetsSheet); err != nil {
		return err
	}

	headers := []string{model.ColPersonID, model.ColName, model.ColAssetType, model.ColInstitution,
		model.ColDetail, model.ColAccountNumber, model.ColValue, model.ColStorageLocation,
		model.ColNote, model.ColUpdatedAt}
	e.writeRow(f, assetsSheet, 1, headers, s.HeaderStyle)
	freezeHeader(f, assetsSheet)

	row := 2
	for _, p := range ledger.Persons {
		for _, a := range ledger.Assets[p.ID] {
			var value interface{} = a.Value
			if v, ok := model.ParseValuation(a.Value); ok {
				value = v
			}
			values := []interface{}{p.ID, p.Name, string(a.Type), a.Institution, a.Detail,
				a.AccountNumber, value, a.StorageLocation, a.Note, a.UpdatedAt}
			for col, v := range values {
				f.SetCellValue(assetsSheet, cellName(col+1, row), v)
			}
			f.SetCellStyle(assetsSheet, cellName(1, row), cellName(len(values), row), s.DefaultStyle)
			f.SetCellStyle(assetsSheet, cellName(7, row), cellName(7, row), s.MoneyStyle)
			row++
		}
	}

	f.SetColWidth(assetsSheet, "B", "B", 20)
	f.SetColWidth(assetsSheet, "D", "F", 22)
	f.SetColWidth(assetsSheet, "G", "G", 16)
	f.SetColWidth(assetsSheet, "I", "I", 30)
	return nil
}

func (e *ExcelExporter) writeRow(f *excelize.File, sheet string, row int, values []string, style int) {
	for i, val := range values {
		cell := cellName(i+1, row)
		f.SetCellValue(sheet, cell, val)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func freezeHeader(f *excelize.File, sheet string) {
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}

// totalValuation sums the parseable valuations of a person's assets
func totalValuation(assets []model.AssetRecord) int64 {
	var total int64
	for _, a := range assets {
		if v, ok := model.ParseValuation(a.Value); ok {
			total += v
		}
	}
	return total
}

// keyPersons lists the key contacts as "name(relationship)"
func keyPersons(parties []model.RelatedPartyRecord) string {
	var names []string
	for _, r := range parties {
		if !r.KeyPerson {
			continue
		}
		if r.Relationship != "" {
			names = append(names, fmt.Sprintf("%s(%s)", r.Name, r.Relationship))
		} else {
			names = append(names, r.Name)
		}
	}
	return strings.Join(names, "、")
}

func ledgerDate(s string) time.Time {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Now()
}
