package placeholder

import (
	"time"

	"koken-report/internal/model"
)

const (
	// KeyToday is replaced with the fill date as YYYY-MM-DD
	KeyToday = "今日"
	// GuardianPrefix is prepended to every guardian column name
	GuardianPrefix = "後見人_"
)

// RecordFor flattens a person and their guardian into a substitution record.
// Person columns keep their names; guardian columns carry GuardianPrefix so
// that 氏名 and 後見人_氏名 can appear in the same template.
func RecordFor(person model.PersonRecord, guardian *model.GuardianRecord, today time.Time) Record {
	rec := make(Record)
	for k, v := range person.Fields() {
		rec[k] = v
	}
	if guardian != nil {
		for k, v := range guardian.Fields() {
			rec[GuardianPrefix+k] = v
		}
	}
	rec[KeyToday] = today.Format("2006-01-02")
	return rec
}
