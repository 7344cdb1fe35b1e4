package store

import (
	"database/sql"
	"errors"
	"fmt"

	"koken-report/internal/model"
)

// SetGuardian stores the system user who files reports. Without an id the
// first existing system user is overwritten, or a new one is created.
func (s *Store) SetGuardian(g model.GuardianRecord) error {
	return setGuardian(s.db, g)
}

func setGuardian(db execer, g model.GuardianRecord) error {
	if g.ID == "" {
		err := db.QueryRow("SELECT id FROM system_users ORDER BY rowid LIMIT 1").Scan(&g.ID)
		if errors.Is(err, sql.ErrNoRows) {
			g.ID = "1"
		} else if err != nil {
			return fmt.Errorf("failed to look up system user: %w", err)
		}
	}
	_, err := db.Exec(`
		INSERT INTO system_users (id, name, kana, postal_code, address, phone, email)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kana = excluded.kana,
			postal_code = excluded.postal_code,
			address = excluded.address,
			phone = excluded.phone,
			email = excluded.email
	`, g.ID, g.Name, g.Kana, g.PostalCode, g.Address, g.Phone, g.Email)
	if err != nil {
		return fmt.Errorf("failed to save system user %s: %w", g.ID, err)
	}
	return nil
}

// GetGuardian returns the first system user or ErrNotFound
func (s *Store) GetGuardian() (model.GuardianRecord, error) {
	var g model.GuardianRecord
	err := s.db.QueryRow(`
		SELECT id, name, kana, postal_code, address, phone, email
		FROM system_users ORDER BY rowid LIMIT 1
	`).Scan(&g.ID, &g.Name, &g.Kana, &g.PostalCode, &g.Address, &g.Phone, &g.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GuardianRecord{}, fmt.Errorf("system user: %w", ErrNotFound)
		}
		return model.GuardianRecord{}, fmt.Errorf("failed to get system user: %w", err)
	}
	return g, nil
}
