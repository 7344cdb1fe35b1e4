package store

import (
	"fmt"

	"koken-report/internal/model"

	"github.com/google/uuid"
)

// ImportBatch is everything one import run read, keyed by table
type ImportBatch struct {
	Source         string
	Persons        []model.PersonRecord
	Activities     []model.ActivityRecord
	Assets         []model.AssetRecord
	RelatedParties []model.RelatedPartyRecord
	Guardians      []model.GuardianRecord
}

// ImportStats counts the rows one Import call stored
type ImportStats struct {
	RunID          string
	Persons        int
	Activities     int
	Assets         int
	RelatedParties int
	SystemUsers    int
}

// Import stores every table of the batch in one transaction and logs the run.
// Either everything is stored or nothing is.
func (s *Store) Import(batch ImportBatch) (*ImportStats, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stats := &ImportStats{RunID: uuid.NewString()}
	for _, p := range batch.Persons {
		if err := upsertPerson(tx, p); err != nil {
			return nil, err
		}
		stats.Persons++
	}
	for _, a := range batch.Activities {
		if _, err := upsertActivity(tx, a); err != nil {
			return nil, err
		}
		stats.Activities++
	}
	for _, a := range batch.Assets {
		if _, err := upsertAsset(tx, a); err != nil {
			return nil, err
		}
		stats.Assets++
	}
	for _, r := range batch.RelatedParties {
		if _, err := upsertRelatedParty(tx, r); err != nil {
			return nil, err
		}
		stats.RelatedParties++
	}
	for _, g := range batch.Guardians {
		if err := setGuardian(tx, g); err != nil {
			return nil, err
		}
		stats.SystemUsers++
	}

	if _, err := tx.Exec(`
		INSERT INTO import_logs (id, source, persons, activities, assets, related_parties, system_users)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, stats.RunID, batch.Source, stats.Persons, stats.Activities, stats.Assets,
		stats.RelatedParties, stats.SystemUsers); err != nil {
		return nil, fmt.Errorf("failed to write import log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return stats, nil
}

// ImportCount returns how many import runs have been logged
func (s *Store) ImportCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM import_logs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count import logs: %w", err)
	}
	return n, nil
}
