package store

import (
	"fmt"

	"koken-report/internal/model"

	"github.com/google/uuid"
)

// UpsertRelatedParty stores a contact and returns its id
func (s *Store) UpsertRelatedParty(r model.RelatedPartyRecord) (string, error) {
	return upsertRelatedParty(s.db, r)
}

func upsertRelatedParty(db execer, r model.RelatedPartyRecord) (string, error) {
	if r.PersonID == "" {
		return "", fmt.Errorf("related party %q has no person id", r.Name)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO related_parties (id, person_id, relationship, name, organization, phone,
			postal_code, address, email, note, updated_at, is_keyperson)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id = excluded.person_id,
			relationship = excluded.relationship,
			name = excluded.name,
			organization = excluded.organization,
			phone = excluded.phone,
			postal_code = excluded.postal_code,
			address = excluded.address,
			email = excluded.email,
			note = excluded.note,
			updated_at = excluded.updated_at,
			is_keyperson = excluded.is_keyperson
	`, r.ID, r.PersonID, r.Relationship, r.Name, r.Organization, r.Phone,
		r.PostalCode, r.Address, r.Email, r.Note, r.UpdatedAt, r.KeyPerson)
	if err != nil {
		return "", fmt.Errorf("failed to upsert related party %s: %w", r.ID, err)
	}
	return r.ID, nil
}

// ListRelatedParties returns a person's contacts, key persons first
func (s *Store) ListRelatedParties(personID string) ([]model.RelatedPartyRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, person_id, relationship, name, organization, phone,
			postal_code, address, email, note, updated_at, is_keyperson
		FROM related_parties WHERE person_id = ? ORDER BY is_keyperson DESC, rowid
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list related parties for %s: %w", personID, err)
	}
	defer rows.Close()

	var parties []model.RelatedPartyRecord
	for rows.Next() {
		var r model.RelatedPartyRecord
		if err := rows.Scan(&r.ID, &r.PersonID, &r.Relationship, &r.Name, &r.Organization,
			&r.Phone, &r.PostalCode, &r.Address, &r.Email, &r.Note, &r.UpdatedAt,
			&r.KeyPerson); err != nil {
			return nil, fmt.Errorf("failed to scan related party: %w", err)
		}
		parties = append(parties, r)
	}
	return parties, rows.Err()
}
