package store

import (
	"path/filepath"
	"testing"

	"koken-report/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "koken.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPersons(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPerson("12")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpsertPerson(model.PersonRecord{ID: "12", Name: "山田 花子", ReportMonth: "8"}))
	require.NoError(t, s.UpsertPerson(model.PersonRecord{ID: "2", Name: "鈴木 次郎"}))
	require.NoError(t, s.UpsertPerson(model.PersonRecord{ID: "12", Name: "山田 花子", ReportMonth: "9", Address: "東京都"}))
	assert.Error(t, s.UpsertPerson(model.PersonRecord{Name: "名無し"}))

	p, err := s.GetPerson("12")
	require.NoError(t, err)
	assert.Equal(t, "9", p.ReportMonth)
	assert.Equal(t, "東京都", p.Address)

	persons, err := s.ListPersons()
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "2", persons[0].ID, "numeric order")
	assert.Equal(t, "12", persons[1].ID)
}

func TestAssets(t *testing.T) {
	s := newTestStore(t)

	id, err := s.UpsertAsset(model.AssetRecord{PersonID: "12", Type: model.AssetTypeBankDeposit, Institution: "A銀行", Value: "1000"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = s.UpsertAsset(model.AssetRecord{ID: "x", PersonID: "12", Type: model.AssetTypeCash, Value: "500"})
	require.NoError(t, err)
	_, err = s.UpsertAsset(model.AssetRecord{ID: "y", PersonID: "13", Type: model.AssetTypeCash})
	require.NoError(t, err)
	_, err = s.UpsertAsset(model.AssetRecord{Institution: "孤児"})
	assert.Error(t, err)

	// update keeps the original position
	_, err = s.UpsertAsset(model.AssetRecord{ID: id, PersonID: "12", Type: model.AssetTypeBankDeposit, Institution: "A銀行", Value: "2000"})
	require.NoError(t, err)

	assets, err := s.ListAssets("12")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, id, assets[0].ID)
	assert.Equal(t, "2000", assets[0].Value)
	assert.Equal(t, model.AssetTypeBankDeposit, assets[0].Type)
	assert.Equal(t, "x", assets[1].ID)

	none, err := s.ListAssets("99")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGuardian(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGuardian()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetGuardian(model.GuardianRecord{Name: "佐藤 一郎"}))
	require.NoError(t, s.SetGuardian(model.GuardianRecord{Name: "佐藤 一郎", Phone: "03-0000-0000"}))

	g, err := s.GetGuardian()
	require.NoError(t, err)
	assert.Equal(t, "1", g.ID)
	assert.Equal(t, "03-0000-0000", g.Phone, "saving without id overwrites the first user")
}

func TestActivities(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertActivity(model.ActivityRecord{ID: "a1", PersonID: "12", Date: "2026-03-01", Type: "面会"})
	require.NoError(t, err)
	id, err := s.UpsertActivity(model.ActivityRecord{PersonID: "12", Date: "2026-04-01", Type: "訪問", Important: true, Expense: "480"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	_, err = s.UpsertActivity(model.ActivityRecord{ID: "b1", PersonID: "13", Date: "2026-05-01"})
	require.NoError(t, err)
	_, err = s.UpsertActivity(model.ActivityRecord{Type: "孤児"})
	assert.Error(t, err)

	_, err = s.UpsertActivity(model.ActivityRecord{ID: "a1", PersonID: "12", Date: "2026-03-01", Type: "面会", Summary: "体調良好"})
	require.NoError(t, err)

	acts, err := s.ListActivities("12")
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, id, acts[0].ID, "newest first")
	assert.True(t, acts[0].Important)
	assert.Equal(t, "480", acts[0].Expense)
	assert.Equal(t, "a1", acts[1].ID)
	assert.False(t, acts[1].Important)
	assert.Equal(t, "体調良好", acts[1].Summary)
}

func TestRelatedParties(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertRelatedParty(model.RelatedPartyRecord{ID: "r1", PersonID: "12", Relationship: "親族", Name: "山田 一郎"})
	require.NoError(t, err)
	_, err = s.UpsertRelatedParty(model.RelatedPartyRecord{ID: "r2", PersonID: "12", Relationship: "ケアマネ", Name: "介護 太郎", KeyPerson: true, Phone: "03-1111-2222"})
	require.NoError(t, err)
	_, err = s.UpsertRelatedParty(model.RelatedPartyRecord{Name: "孤児"})
	assert.Error(t, err)

	parties, err := s.ListRelatedParties("12")
	require.NoError(t, err)
	require.Len(t, parties, 2)
	assert.Equal(t, "r2", parties[0].ID, "key person first")
	assert.True(t, parties[0].KeyPerson)
	assert.Equal(t, "03-1111-2222", parties[0].Phone)
	assert.Equal(t, "r1", parties[1].ID)

	none, err := s.ListRelatedParties("99")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestImport(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Import(ImportBatch{
		Source:         "test",
		Persons:        []model.PersonRecord{{ID: "1", Name: "山田 花子"}, {ID: "2", Name: "鈴木 次郎"}},
		Activities:     []model.ActivityRecord{{ID: "10", PersonID: "1", Type: "面会"}},
		Assets:         []model.AssetRecord{{ID: "a1", PersonID: "1", Type: model.AssetTypeCash, Value: "100"}},
		RelatedParties: []model.RelatedPartyRecord{{ID: "20", PersonID: "2", Name: "鈴木 一郎"}},
		Guardians:      []model.GuardianRecord{{ID: "1", Name: "佐藤 一郎"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 2, stats.Persons)
	assert.Equal(t, 1, stats.Activities)
	assert.Equal(t, 1, stats.Assets)
	assert.Equal(t, 1, stats.RelatedParties)
	assert.Equal(t, 1, stats.SystemUsers)

	acts, err := s.ListActivities("1")
	require.NoError(t, err)
	assert.Len(t, acts, 1)
	parties, err := s.ListRelatedParties("2")
	require.NoError(t, err)
	assert.Len(t, parties, 1)

	n, err := s.ImportCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a bad row rolls the whole run back
	_, err = s.Import(ImportBatch{
		Source:     "bad",
		Persons:    []model.PersonRecord{{ID: "3", Name: "追加"}},
		Activities: []model.ActivityRecord{{ID: "11", PersonID: "3"}, {ID: "12"}},
	})
	assert.Error(t, err)
	_, err = s.GetPerson("3")
	assert.ErrorIs(t, err, ErrNotFound)
	acts, err = s.ListActivities("3")
	require.NoError(t, err)
	assert.Empty(t, acts)

	n, err = s.ImportCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
