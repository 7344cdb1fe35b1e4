package report

import (
	"errors"
	"fmt"
	"os"
	"time"

	"koken-report/internal/config"
	"koken-report/internal/logger"
	"koken-report/internal/model"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrTemplateNotFound is returned when the template path does not exist
	ErrTemplateNotFound = errors.New("テンプレートファイルが見つかりません")
	// ErrTemplateUnreadable is returned when the template exists but is not a workbook
	ErrTemplateUnreadable = errors.New("テンプレートファイルを読み込めません")
)

// Filler writes person, guardian and asset records into the periodic court report template
type Filler struct {
	layout config.LayoutConfig
	now    func() time.Time
}

// Option customises a Filler
type Option func(*Filler)

// WithClock replaces time.Now, used for the creation date and the reporting period
func WithClock(now func() time.Time) Option {
	return func(f *Filler) {
		f.now = now
	}
}

// NewFiller creates a Filler for the given cell layout
func NewFiller(layout config.LayoutConfig, opts ...Option) *Filler {
	f := &Filler{layout: layout, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Result summarises what a generation run wrote
type Result struct {
	ReportSheet   string // Empty when no sheet matched
	AssetsSheet   string
	Period        *Period
	BankRows      int // Deposit rows written
	BankDropped   int // Deposit records beyond template capacity
	CashTotal     *int64
	FacilityTotal *int64
}

// Generate fills a fresh copy of the template at templatePath and returns the workbook bytes.
// Only a missing or unreadable template is an error; every other problem skips that piece.
func (f *Filler) Generate(person model.PersonRecord, guardian model.GuardianRecord, assets []model.AssetRecord, templatePath string) ([]byte, error) {
	data, _, err := f.GenerateWithResult(person, guardian, assets, templatePath)
	return data, err
}

// GenerateWithResult is Generate plus a summary of the sections written
func (f *Filler) GenerateWithResult(person model.PersonRecord, guardian model.GuardianRecord, assets []model.AssetRecord, templatePath string) ([]byte, *Result, error) {
	wb, err := openTemplate(templatePath)
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	res := f.fill(wb, person, guardian, assets)

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return buf.Bytes(), res, nil
}

func openTemplate(path string) (*excelize.File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrTemplateNotFound)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateUnreadable, path, err)
	}
	return wb, nil
}

func (f *Filler) fill(wb *excelize.File, person model.PersonRecord, guardian model.GuardianRecord, assets []model.AssetRecord) *Result {
	today := dateOnly(f.now())
	res := &Result{}

	if sheet, ok := resolveSheet(wb, f.layout.ReportSheet); ok {
		res.ReportSheet = sheet
		res.Period = f.fillReportSheet(newSheetWriter(wb, sheet), person, guardian, today)
	} else {
		logger.LogSkip("report", "no sheet name contains %q", f.layout.ReportSheet)
	}

	if sheet, ok := resolveSheet(wb, f.layout.AssetsSheet); ok {
		res.AssetsSheet = sheet
		f.fillAssetsSheet(newSheetWriter(wb, sheet), person, assets, today, res)
	} else {
		logger.LogSkip("assets", "no sheet name contains %q", f.layout.AssetsSheet)
	}

	return res
}

func (f *Filler) fillReportSheet(w *sheetWriter, person model.PersonRecord, guardian model.GuardianRecord, today time.Time) *Period {
	cells := f.layout.Report

	w.Set(cells.PersonName, person.Name)
	w.Set(cells.PersonAddress, person.Address)
	w.Set(cells.PersonPostal, person.PostalCode)
	w.Set(cells.Residence, person.Residence)

	w.Set(cells.GuardianAddress, guardian.Address)
	w.Set(cells.GuardianName, guardian.Name)
	w.Set(cells.GuardianPhone, guardian.Phone)

	month, ok := model.ParseReportMonth(person.ReportMonth)
	if !ok {
		logger.LogSkip("period", "report month %q is not 1-12; period and creation date left as is", person.ReportMonth)
		return nil
	}

	period := ReportingPeriod(month, today)
	w.Set(cells.PeriodStart, period.Start)
	w.Set(cells.PeriodEnd, period.End)
	w.Set(cells.CreateDate, today)
	return &period
}

func (f *Filler) fillAssetsSheet(w *sheetWriter, person model.PersonRecord, assets []model.AssetRecord, today time.Time, res *Result) {
	layout := f.layout.Assets

	w.Set(layout.PersonName, person.Name)

	// Blank the region so rows from an earlier, longer report cannot survive
	w.ClearRange(layout.ClearStartRow, layout.ClearEndRow, layout.ClearStartCol, layout.ClearEndCol)

	res.BankRows, res.BankDropped = f.writeBankRows(w, assets, today)

	var cashItems, facilityItems []model.AssetRecord
	for _, a := range assets {
		switch {
		case a.IsCash():
			cashItems = append(cashItems, a)
		case a.IsFacilityDeposit():
			facilityItems = append(facilityItems, a)
		}
	}

	// An empty category stays blank rather than showing 0
	if len(cashItems) > 0 {
		total := sumValuations(cashItems)
		w.Set(layout.CashTotal, total)
		res.CashTotal = &total
	}
	if len(facilityItems) > 0 {
		total := sumValuations(facilityItems)
		w.Set(layout.FacilityTotal, total)
		res.FacilityTotal = &total
	}
}

// writeBankRows writes deposit records in input order, one row pair each.
// Records that do not fit before BankMaxRow are dropped.
func (f *Filler) writeBankRows(w *sheetWriter, assets []model.AssetRecord, today time.Time) (written, dropped int) {
	layout := f.layout.Assets
	cols := layout.Columns

	row := layout.BankStartRow
	for _, bank := range assets {
		if !bank.IsBankDeposit() {
			continue
		}
		if row > layout.BankMaxRow {
			dropped++
			continue
		}

		w.SetAt(cols.Name, row, bank.Institution)
		w.SetAt(cols.Branch, row, bank.Detail)

		if bank.IsTimeDeposit() {
			w.SetAt(cols.Time, row, layout.FilledMarker)
			w.SetAt(cols.Ordinary, row, layout.EmptyMarker)
		} else {
			w.SetAt(cols.Ordinary, row, layout.FilledMarker)
			w.SetAt(cols.Time, row, layout.EmptyMarker)
		}

		w.SetAt(cols.Number, row, bank.AccountNumber)
		w.SetAt(cols.Date, row, confirmedDate(bank.UpdatedAt, today))

		if v, ok := model.ParseValuation(bank.Value); ok {
			w.SetAt(cols.Value, row, v)
		} else {
			logger.LogSkip("assets", "valuation %q of %s is not numeric; written as text", bank.Value, bank.Institution)
			w.SetAt(cols.Value, row, bank.Value)
		}

		w.SetAt(cols.Admin, row, layout.AdminLabel)

		written++
		row += layout.BankRowStep
	}

	if dropped > 0 {
		logger.Warn("財産目録: 預貯金 %d件がテンプレートの行数を超えたため出力されませんでした", dropped)
	}
	return written, dropped
}

// confirmedDate is the asset's last update date, or today when none is recorded.
// Dates that do not parse are written as the original text.
func confirmedDate(updatedAt string, today time.Time) interface{} {
	if updatedAt == "" {
		return today
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, updatedAt); err == nil {
			return dateOnly(t)
		}
	}
	return updatedAt
}

func sumValuations(items []model.AssetRecord) int64 {
	var total int64
	for _, item := range items {
		if v, ok := model.ParseValuation(item.Value); ok {
			total += v
		}
	}
	return total
}
