package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"koken-report/internal/model"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// CSVExporter writes every registry table as Shift_JIS CSV,
// the encoding Excel opens directly on Japanese Windows.
type CSVExporter struct{}

// NewCSVExporter creates a new CSVExporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

var (
	personHeader = []string{model.ColPersonID, model.ColCaseNumber, model.ColBasicCaseNumber,
		model.ColName, model.ColKana, model.ColDOB, model.ColGuardianType, model.ColDisabilityType,
		model.ColPetitioner, model.ColJudgmentDate, model.ColCourt, model.ColReportMonth,
		model.ColStatus, model.ColAddress, model.ColPostalCode, model.ColResidence}
	assetHeader = []string{model.ColAssetID, model.ColPersonID, model.ColAssetType,
		model.ColInstitution, model.ColDetail, model.ColAccountNumber, model.ColValue,
		model.ColStorageLocation, model.ColNote, model.ColUpdatedAt}
	activityHeader = []string{model.ColActivityID, model.ColPersonID, model.ColActivityDate,
		model.ColActivityType, model.ColLocation, model.ColDuration, model.ColExpense,
		model.ColImportant, model.ColSummary, model.ColCreatedAt}
	relatedHeader = []string{model.ColRelatedID, model.ColPersonID, model.ColRelationship,
		model.ColName, model.ColOrganization, model.ColRelatedPhone, model.ColPostalCode,
		model.ColAddress, model.ColEmail, model.ColLiaisonNote, model.ColUpdatedAt,
		model.ColKeyPerson}
	systemHeader = []string{model.ColGuardianID, model.ColName, model.ColGuardianKana,
		model.ColPostalCode, model.ColAddress, model.ColPhone, model.ColEmail}
)

// csvFile is one table of the export
type csvFile struct {
	name   string
	header []string
	rows   [][]string
}

// Export writes persons, activities, assets and related_<date>.csv and,
// when a guardian is set, system_<date>.csv
func (e *CSVExporter) Export(ledger *Ledger, outDir string) ([]string, error) {
	var written []string

	persons := make([][]string, 0, len(ledger.Persons))
	var activities, assets, related [][]string
	for _, p := range ledger.Persons {
		persons = append(persons, pick(p.Fields(), personHeader))
		for _, a := range ledger.Activities[p.ID] {
			activities = append(activities, pick(a.Fields(), activityHeader))
		}
		for _, a := range ledger.Assets[p.ID] {
			assets = append(assets, []string{a.ID, a.PersonID, string(a.Type), a.Institution,
				a.Detail, a.AccountNumber, a.Value, a.StorageLocation, a.Note, a.UpdatedAt})
		}
		for _, r := range ledger.RelatedParties[p.ID] {
			related = append(related, pick(r.Fields(), relatedHeader))
		}
	}

	files := []csvFile{
		{"persons", personHeader, persons},
		{"activities", activityHeader, activities},
		{"assets", assetHeader, assets},
		{"related", relatedHeader, related},
	}
	if ledger.Guardian != nil {
		files = append(files, csvFile{"system", systemHeader, [][]string{pick(ledger.Guardian.Fields(), systemHeader)}})
	}

	for _, file := range files {
		path := filepath.Join(outDir, fmt.Sprintf("%s_%s.csv", file.name, ledger.Date))
		if err := writeShiftJIS(path, file.header, file.rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func pick(fields map[string]string, header []string) []string {
	row := make([]string, len(header))
	for i, h := range header {
		row[i] = fields[h]
	}
	return row
}

func writeShiftJIS(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encodeShiftJIS(f, header, rows); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// encodeShiftJIS writes the CSV to out and closes it. A failed close is
// returned since the tail of the file may not have reached the disk.
func encodeShiftJIS(out io.WriteCloser, header []string, rows [][]string) error {
	// Characters outside Shift_JIS are replaced instead of failing the export
	enc := transform.NewWriter(out, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
	w := csv.NewWriter(enc)
	// Excel on Windows expects CRLF
	w.UseCRLF = true

	if err := w.Write(header); err != nil {
		out.Close()
		return fmt.Errorf("failed to write: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		out.Close()
		return fmt.Errorf("failed to write: %w", err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close: %w", err)
	}
	return nil
}
