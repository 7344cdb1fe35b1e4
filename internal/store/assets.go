package store

import (
	"fmt"

	"koken-report/internal/model"

	"github.com/google/uuid"
)

// UpsertAsset stores the asset and returns its id. Assets without an id get a new one.
func (s *Store) UpsertAsset(a model.AssetRecord) (string, error) {
	return upsertAsset(s.db, a)
}

func upsertAsset(db execer, a model.AssetRecord) (string, error) {
	if a.PersonID == "" {
		return "", fmt.Errorf("asset %q has no person id", a.Institution)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO assets (id, person_id, asset_type, institution, detail, account_number,
			value, storage_location, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id = excluded.person_id,
			asset_type = excluded.asset_type,
			institution = excluded.institution,
			detail = excluded.detail,
			account_number = excluded.account_number,
			value = excluded.value,
			storage_location = excluded.storage_location,
			note = excluded.note,
			updated_at = excluded.updated_at
	`, a.ID, a.PersonID, string(a.Type), a.Institution, a.Detail, a.AccountNumber,
		a.Value, a.StorageLocation, a.Note, a.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to upsert asset %s: %w", a.ID, err)
	}
	return a.ID, nil
}

// ListAssets returns the assets of one person in the order they were first stored
func (s *Store) ListAssets(personID string) ([]model.AssetRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, person_id, asset_type, institution, detail, account_number,
			value, storage_location, note, updated_at
		FROM assets WHERE person_id = ? ORDER BY rowid
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets for %s: %w", personID, err)
	}
	defer rows.Close()

	var assets []model.AssetRecord
	for rows.Next() {
		var a model.AssetRecord
		var assetType string
		if err := rows.Scan(&a.ID, &a.PersonID, &assetType, &a.Institution, &a.Detail,
			&a.AccountNumber, &a.Value, &a.StorageLocation, &a.Note, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		a.Type = model.AssetType(assetType)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
