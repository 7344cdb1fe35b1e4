package importer

import (
	"fmt"
	"io"

	"koken-report/internal/logger"
	"koken-report/internal/model"
)

// ImportPersons maps CSV rows to persons. Rows without a person_id are skipped.
func ImportPersons(rows []Row) []model.PersonRecord {
	var persons []model.PersonRecord
	for i, row := range rows {
		row[model.ColPersonID] = SafeID(row[model.ColPersonID])
		if row[model.ColPersonID] == "" {
			logger.LogSkip("import persons", "row %d has no %s", i+2, model.ColPersonID)
			continue
		}
		p := model.PersonFromFields(row)
		p.DateOfBirth = NormalizeDate(p.DateOfBirth)
		p.JudgmentDate = NormalizeDate(p.JudgmentDate)
		persons = append(persons, p)
	}
	return persons
}

// ImportAssets maps CSV rows to assets. Rows without an owning person are skipped.
func ImportAssets(rows []Row) []model.AssetRecord {
	var assets []model.AssetRecord
	for i, row := range rows {
		row[model.ColPersonID] = SafeID(row[model.ColPersonID])
		row[model.ColAssetID] = SafeID(row[model.ColAssetID])
		if row[model.ColPersonID] == "" {
			logger.LogSkip("import assets", "row %d has no %s", i+2, model.ColPersonID)
			continue
		}
		a := model.AssetFromFields(row)
		a.UpdatedAt = NormalizeDate(a.UpdatedAt)
		assets = append(assets, a)
	}
	return assets
}

// ImportActivities maps activity-log rows. Rows without an owning person are skipped.
func ImportActivities(rows []Row) []model.ActivityRecord {
	var activities []model.ActivityRecord
	for i, row := range rows {
		row[model.ColPersonID] = SafeID(row[model.ColPersonID])
		row[model.ColActivityID] = SafeID(row[model.ColActivityID])
		if row[model.ColPersonID] == "" {
			logger.LogSkip("import activities", "row %d has no %s", i+2, model.ColPersonID)
			continue
		}
		a := model.ActivityFromFields(row)
		a.Date = NormalizeDate(a.Date)
		activities = append(activities, a)
	}
	return activities
}

// ImportRelatedParties maps related-party rows. Rows without an owning person are skipped.
func ImportRelatedParties(rows []Row) []model.RelatedPartyRecord {
	var parties []model.RelatedPartyRecord
	for i, row := range rows {
		row[model.ColPersonID] = SafeID(row[model.ColPersonID])
		row[model.ColRelatedID] = SafeID(row[model.ColRelatedID])
		if row[model.ColPersonID] == "" {
			logger.LogSkip("import related", "row %d has no %s", i+2, model.ColPersonID)
			continue
		}
		r := model.RelatedPartyFromFields(row)
		r.UpdatedAt = NormalizeDate(r.UpdatedAt)
		parties = append(parties, r)
	}
	return parties
}

// ImportGuardians maps system-user CSV rows to guardians
func ImportGuardians(rows []Row) []model.GuardianRecord {
	var guardians []model.GuardianRecord
	for _, row := range rows {
		row[model.ColGuardianID] = SafeID(row[model.ColGuardianID])
		g := model.GuardianFromFields(row)
		if g.Name == "" {
			continue
		}
		guardians = append(guardians, g)
	}
	return guardians
}

// ReadPersons is ReadCSV followed by ImportPersons
func ReadPersons(r io.Reader) ([]model.PersonRecord, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("persons: %w", err)
	}
	return ImportPersons(rows), nil
}

// ReadAssets is ReadCSV followed by ImportAssets
func ReadAssets(r io.Reader) ([]model.AssetRecord, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	return ImportAssets(rows), nil
}

// ReadActivities is ReadCSV followed by ImportActivities
func ReadActivities(r io.Reader) ([]model.ActivityRecord, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("activities: %w", err)
	}
	return ImportActivities(rows), nil
}

// ReadRelatedParties is ReadCSV followed by ImportRelatedParties
func ReadRelatedParties(r io.Reader) ([]model.RelatedPartyRecord, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("related parties: %w", err)
	}
	return ImportRelatedParties(rows), nil
}

// ReadGuardians is ReadCSV followed by ImportGuardians
func ReadGuardians(r io.Reader) ([]model.GuardianRecord, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("system users: %w", err)
	}
	return ImportGuardians(rows), nil
}
