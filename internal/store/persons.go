package store

import (
	"database/sql"
	"errors"
	"fmt"

	"koken-report/internal/model"
)

const personColumns = `id, case_number, basic_case_number, name, kana, date_of_birth, guardian_type,
	disability_type, petitioner, judgment_date, court, report_month, status, address, postal_code, residence`

// UpsertPerson inserts the person or replaces every field of the existing row
func (s *Store) UpsertPerson(p model.PersonRecord) error {
	return upsertPerson(s.db, p)
}

func upsertPerson(db execer, p model.PersonRecord) error {
	if p.ID == "" {
		return fmt.Errorf("person %q has no id", p.Name)
	}
	_, err := db.Exec(`
		INSERT INTO persons (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			case_number = excluded.case_number,
			basic_case_number = excluded.basic_case_number,
			name = excluded.name,
			kana = excluded.kana,
			date_of_birth = excluded.date_of_birth,
			guardian_type = excluded.guardian_type,
			disability_type = excluded.disability_type,
			petitioner = excluded.petitioner,
			judgment_date = excluded.judgment_date,
			court = excluded.court,
			report_month = excluded.report_month,
			status = excluded.status,
			address = excluded.address,
			postal_code = excluded.postal_code,
			residence = excluded.residence,
			updated_at = CURRENT_TIMESTAMP
	`, p.ID, p.CaseNumber, p.BasicCaseNumber, p.Name, p.Kana, p.DateOfBirth, p.GuardianType,
		p.DisabilityType, p.Petitioner, p.JudgmentDate, p.Court, p.ReportMonth, p.Status,
		p.Address, p.PostalCode, p.Residence)
	if err != nil {
		return fmt.Errorf("failed to upsert person %s: %w", p.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row scanner) (model.PersonRecord, error) {
	var p model.PersonRecord
	err := row.Scan(&p.ID, &p.CaseNumber, &p.BasicCaseNumber, &p.Name, &p.Kana, &p.DateOfBirth,
		&p.GuardianType, &p.DisabilityType, &p.Petitioner, &p.JudgmentDate, &p.Court,
		&p.ReportMonth, &p.Status, &p.Address, &p.PostalCode, &p.Residence)
	return p, err
}

// GetPerson returns the person with the given id or ErrNotFound
func (s *Store) GetPerson(id string) (model.PersonRecord, error) {
	row := s.db.QueryRow("SELECT "+personColumns+" FROM persons WHERE id = ?", id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PersonRecord{}, fmt.Errorf("person %s: %w", id, ErrNotFound)
		}
		return model.PersonRecord{}, fmt.Errorf("failed to get person %s: %w", id, err)
	}
	return p, nil
}

// ListPersons returns every person, numeric ids in numeric order
func (s *Store) ListPersons() ([]model.PersonRecord, error) {
	rows, err := s.db.Query("SELECT " + personColumns + " FROM persons ORDER BY CAST(id AS INTEGER), id")
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []model.PersonRecord
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}
