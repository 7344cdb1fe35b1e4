// Package exporter writes the registry out as a ledger workbook or as CSV files
// that the import command reads back.
package exporter

import (
	"koken-report/internal/model"
)

// Ledger is a snapshot of the registry
type Ledger struct {
	Persons        []model.PersonRecord
	Activities     map[string][]model.ActivityRecord // keyed by person id
	Assets         map[string][]model.AssetRecord
	RelatedParties map[string][]model.RelatedPartyRecord
	Guardian       *model.GuardianRecord
	Date           string // YYYY-MM-DD the snapshot was taken
}

// Exporter is one output format. Export writes into outDir and returns the files written.
type Exporter interface {
	Export(ledger *Ledger, outDir string) ([]string, error)
}
