package exporter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"koken-report/internal/importer"
	"koken-report/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleLedger() *Ledger {
	return &Ledger{
		Persons: []model.PersonRecord{
			{ID: "1", Name: "山田 花子", ReportMonth: "8", DateOfBirth: "1945-03-05", Status: "受任中"},
			{ID: "2", Name: "鈴木 次郎", ReportMonth: ""},
		},
		Assets: map[string][]model.AssetRecord{
			"1": {
				{ID: "a1", PersonID: "1", Type: model.AssetTypeBankDeposit, Institution: "A銀行", Value: "1,200,000", UpdatedAt: "2026-03-31"},
				{ID: "a2", PersonID: "1", Type: model.AssetTypeCash, Value: "不明"},
				{ID: "a3", PersonID: "1", Type: model.AssetTypeCash, Value: "5000"},
			},
		},
		Activities: map[string][]model.ActivityRecord{
			"1": {
				{ID: "10", PersonID: "1", Date: "2026-04-01", Type: "面会", Expense: "480", Important: true},
				{ID: "11", PersonID: "1", Date: "2026-03-01", Type: "電話"},
			},
		},
		RelatedParties: map[string][]model.RelatedPartyRecord{
			"1": {
				{ID: "20", PersonID: "1", Relationship: "ケアマネ", Name: "介護 太郎", KeyPerson: true},
				{ID: "21", PersonID: "1", Relationship: "親族", Name: "山田 一郎"},
			},
			"2": {
				{ID: "22", PersonID: "2", Name: "鈴木 三郎", KeyPerson: true, UpdatedAt: "2026-01-05"},
			},
		},
		Guardian: &model.GuardianRecord{ID: "1", Name: "佐藤 一郎", Phone: "03-0000-0000"},
		Date:     "2026-10-19",
	}
}

func TestGetExporters(t *testing.T) {
	exps := GetExporters([]string{"excel", " XLSX ", "csv", "html", "csv"})
	require.Len(t, exps, 2)
	assert.IsType(t, &ExcelExporter{}, exps[0])
	assert.IsType(t, &CSVExporter{}, exps[1])

	assert.Empty(t, GetExporters([]string{"pdf"}))
}

func TestExcelExport(t *testing.T) {
	dir := t.TempDir()

	files, err := NewExcelExporter().Export(sampleLedger(), dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "台帳_2026-10-19.xlsx"), files[0])

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{personsSheet, assetsSheet}, f.GetSheetList())

	get := func(sheet, cell string) string {
		v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "山田 花子", get(personsSheet, "C2"))
	assert.Equal(t, "2025/08/01〜2026/07/31", get(personsSheet, "G2"))
	assert.Equal(t, "介護 太郎(ケアマネ)", get(personsSheet, "I2"))
	assert.Equal(t, "2", get(personsSheet, "J2"))
	assert.Equal(t, "2", get(personsSheet, "K2"))
	assert.Equal(t, "3", get(personsSheet, "L2"))
	assert.Equal(t, "1205000", get(personsSheet, "M2"), "unparseable valuations are left out of the total")
	assert.Equal(t, "報告月未設定", get(personsSheet, "G3"))
	assert.Equal(t, "鈴木 三郎", get(personsSheet, "I3"))
	assert.Equal(t, "0", get(personsSheet, "J3"))
	assert.Equal(t, "1", get(personsSheet, "K3"))
	assert.Equal(t, "0", get(personsSheet, "L3"))

	assert.Equal(t, "A銀行", get(assetsSheet, "D2"))
	assert.Equal(t, "1200000", get(assetsSheet, "G2"))
	assert.Equal(t, "不明", get(assetsSheet, "G3"))
	assert.Empty(t, get(assetsSheet, "A5"))
}

func TestCSVExportReadsBack(t *testing.T) {
	dir := t.TempDir()
	ledger := sampleLedger()

	files, err := NewCSVExporter().Export(ledger, dir)
	require.NoError(t, err)
	require.Len(t, files, 5)
	for i, name := range []string{"persons", "activities", "assets", "related", "system"} {
		assert.Equal(t, filepath.Join(dir, name+"_2026-10-19.csv"), files[i])
	}

	open := func(path string) *os.File {
		f, err := os.Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { f.Close() })
		return f
	}

	persons, err := importer.ReadPersons(open(files[0]))
	require.NoError(t, err)
	assert.Equal(t, ledger.Persons, persons)

	activities, err := importer.ReadActivities(open(files[1]))
	require.NoError(t, err)
	assert.Equal(t, ledger.Activities["1"], activities)

	assets, err := importer.ReadAssets(open(files[2]))
	require.NoError(t, err)
	assert.Equal(t, ledger.Assets["1"], assets)

	related, err := importer.ReadRelatedParties(open(files[3]))
	require.NoError(t, err)
	assert.Equal(t, append(ledger.RelatedParties["1"], ledger.RelatedParties["2"]...), related)

	guardians, err := importer.ReadGuardians(open(files[4]))
	require.NoError(t, err)
	require.Len(t, guardians, 1)
	assert.Equal(t, *ledger.Guardian, guardians[0])
}

func TestCSVExportWithoutGuardian(t *testing.T) {
	ledger := sampleLedger()
	ledger.Guardian = nil

	files, err := NewCSVExporter().Export(ledger, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

// closeFailer buffers writes and fails on Close like a full disk would
type closeFailer struct {
	bytes.Buffer
	closed bool
}

func (c *closeFailer) Close() error {
	c.closed = true
	return errors.New("no space left on device")
}

func TestEncodeShiftJISReportsCloseError(t *testing.T) {
	out := &closeFailer{}
	err := encodeShiftJIS(out, personHeader, [][]string{{"1", "山田 花子"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space left on device")
	assert.True(t, out.closed)
	assert.NotZero(t, out.Len(), "rows were flushed before closing")
}
