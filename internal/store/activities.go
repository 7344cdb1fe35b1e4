package store

import (
	"fmt"

	"koken-report/internal/model"

	"github.com/google/uuid"
)

// UpsertActivity stores an activity log entry and returns its id
func (s *Store) UpsertActivity(a model.ActivityRecord) (string, error) {
	return upsertActivity(s.db, a)
}

func upsertActivity(db execer, a model.ActivityRecord) (string, error) {
	if a.PersonID == "" {
		return "", fmt.Errorf("activity %q has no person id", a.Type)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO activities (id, person_id, activity_date, activity_type, location,
			duration, expense, is_important, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id = excluded.person_id,
			activity_date = excluded.activity_date,
			activity_type = excluded.activity_type,
			location = excluded.location,
			duration = excluded.duration,
			expense = excluded.expense,
			is_important = excluded.is_important,
			summary = excluded.summary,
			created_at = excluded.created_at
	`, a.ID, a.PersonID, a.Date, a.Type, a.Location, a.Duration, a.Expense,
		a.Important, a.Summary, a.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to upsert activity %s: %w", a.ID, err)
	}
	return a.ID, nil
}

// ListActivities returns a person's activity log, newest first
func (s *Store) ListActivities(personID string) ([]model.ActivityRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, person_id, activity_date, activity_type, location, duration,
			expense, is_important, summary, created_at
		FROM activities WHERE person_id = ? ORDER BY activity_date DESC, rowid DESC
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities for %s: %w", personID, err)
	}
	defer rows.Close()

	var activities []model.ActivityRecord
	for rows.Next() {
		var a model.ActivityRecord
		if err := rows.Scan(&a.ID, &a.PersonID, &a.Date, &a.Type, &a.Location, &a.Duration,
			&a.Expense, &a.Important, &a.Summary, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
