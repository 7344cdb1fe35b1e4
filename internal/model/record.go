package model

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// AssetType is the registry category of an asset (財産種別)
type AssetType string

const (
	AssetTypeBankDeposit     AssetType = "預貯金"
	AssetTypeCash            AssetType = "現金"
	AssetTypeSecurities      AssetType = "有価証券"
	AssetTypeInsurance       AssetType = "保険"
	AssetTypeRealEstate      AssetType = "不動産"
	AssetTypeLiability       AssetType = "負債"
	AssetTypeOther           AssetType = "その他"
	AssetTypeFacilityDeposit AssetType = "施設等預入金"
)

// Column names used by the registry and by CSV import/export
const (
	ColPersonID        = "person_id"
	ColCaseNumber      = "ケース番号"
	ColBasicCaseNumber = "基本事件番号"
	ColName            = "氏名"
	ColKana            = "ｼﾒｲ"
	ColDOB             = "生年月日"
	ColGuardianType    = "類型"
	ColDisabilityType  = "障害類型"
	ColPetitioner      = "申立人"
	ColJudgmentDate    = "審判確定日"
	ColCourt           = "管轄家裁"
	ColReportMonth     = "家裁報告月"
	ColStatus          = "現在の状態"
	ColAddress         = "住所"
	ColPostalCode      = "〒"
	ColResidence       = "居所"

	ColAssetID         = "asset_id"
	ColAssetType       = "財産種別"
	ColInstitution     = "名称・機関名"
	ColDetail          = "支店・詳細"
	ColAccountNumber   = "口座番号・記号"
	ColValue           = "評価額・残高"
	ColStorageLocation = "保管場所"
	ColNote            = "備考"
	ColUpdatedAt       = "更新日"

	ColActivityID   = "activity_id"
	ColActivityDate = "記録日"
	ColActivityType = "活動"
	ColLocation     = "場所"
	ColDuration     = "所要時間"
	ColExpense      = "交通費・立替金"
	ColImportant    = "重要"
	ColSummary      = "要点"
	ColCreatedAt    = "作成日時"

	ColRelatedID    = "related_id"
	ColRelationship = "関係種別"
	ColOrganization = "所属・名称"
	ColRelatedPhone = "電話番号"
	ColLiaisonNote  = "連携メモ"
	ColKeyPerson    = "キーパーソン"

	ColGuardianID   = "id"
	ColGuardianKana = "シメイ"
	ColPhone        = "連絡先電話番号"
	ColEmail        = "e-mail"
)

// PersonRecord is a ward as supplied by the person registry
type PersonRecord struct {
	ID              string
	CaseNumber      string
	BasicCaseNumber string
	Name            string
	Kana            string
	DateOfBirth     string
	GuardianType    string
	DisabilityType  string
	Petitioner      string
	JudgmentDate    string
	Court           string
	ReportMonth     string // e.g. "8", "8月", "８月"
	Status          string
	Address         string
	PostalCode      string
	Residence       string
}

// GuardianRecord describes the practitioner filing the report
type GuardianRecord struct {
	ID         string
	Name       string
	Kana       string
	PostalCode string
	Address    string
	Phone      string
	Email      string
}

// AssetRecord is one financial asset line from the asset registry
type AssetRecord struct {
	ID              string
	PersonID        string
	Type            AssetType
	Institution     string
	Detail          string
	AccountNumber   string
	Value           string // raw valuation as entered
	StorageLocation string
	Note            string
	UpdatedAt       string // YYYY-MM-DD when known
}

// ActivityRecord is one entry of a person's activity log (訪問, 面会, 手続 ...)
type ActivityRecord struct {
	ID        string
	PersonID  string
	Date      string // 記録日, YYYY-MM-DD when known
	Type      string
	Location  string
	Duration  string // minutes as entered
	Expense   string // yen as entered
	Important bool
	Summary   string
	CreatedAt string
}

// RelatedPartyRecord is a contact around a person: family, care manager, facility staff
type RelatedPartyRecord struct {
	ID           string
	PersonID     string
	Relationship string
	Name         string
	Organization string
	Phone        string
	PostalCode   string
	Address      string
	Email        string
	Note         string
	UpdatedAt    string
	KeyPerson    bool
}

// PersonFromFields builds a PersonRecord from a column map. Absent columns become "".
func PersonFromFields(fields map[string]string) PersonRecord {
	return PersonRecord{
		ID:              fields[ColPersonID],
		CaseNumber:      fields[ColCaseNumber],
		BasicCaseNumber: fields[ColBasicCaseNumber],
		Name:            fields[ColName],
		Kana:            fields[ColKana],
		DateOfBirth:     fields[ColDOB],
		GuardianType:    fields[ColGuardianType],
		DisabilityType:  fields[ColDisabilityType],
		Petitioner:      fields[ColPetitioner],
		JudgmentDate:    fields[ColJudgmentDate],
		Court:           fields[ColCourt],
		ReportMonth:     fields[ColReportMonth],
		Status:          fields[ColStatus],
		Address:         fields[ColAddress],
		PostalCode:      fields[ColPostalCode],
		Residence:       fields[ColResidence],
	}
}

// Fields returns the person as a column map, the inverse of PersonFromFields
func (p PersonRecord) Fields() map[string]string {
	return map[string]string{
		ColPersonID:        p.ID,
		ColCaseNumber:      p.CaseNumber,
		ColBasicCaseNumber: p.BasicCaseNumber,
		ColName:            p.Name,
		ColKana:            p.Kana,
		ColDOB:             p.DateOfBirth,
		ColGuardianType:    p.GuardianType,
		ColDisabilityType:  p.DisabilityType,
		ColPetitioner:      p.Petitioner,
		ColJudgmentDate:    p.JudgmentDate,
		ColCourt:           p.Court,
		ColReportMonth:     p.ReportMonth,
		ColStatus:          p.Status,
		ColAddress:         p.Address,
		ColPostalCode:      p.PostalCode,
		ColResidence:       p.Residence,
	}
}

// GuardianFromFields builds a GuardianRecord from a system-user column map
func GuardianFromFields(fields map[string]string) GuardianRecord {
	return GuardianRecord{
		ID:         fields[ColGuardianID],
		Name:       fields[ColName],
		Kana:       fields[ColGuardianKana],
		PostalCode: fields[ColPostalCode],
		Address:    fields[ColAddress],
		Phone:      fields[ColPhone],
		Email:      fields[ColEmail],
	}
}

// Fields returns the guardian as a column map, the inverse of GuardianFromFields
func (g GuardianRecord) Fields() map[string]string {
	return map[string]string{
		ColGuardianID:   g.ID,
		ColName:         g.Name,
		ColGuardianKana: g.Kana,
		ColPostalCode:   g.PostalCode,
		ColAddress:      g.Address,
		ColPhone:        g.Phone,
		ColEmail:        g.Email,
	}
}

// AssetFromFields builds an AssetRecord from an asset column map
func AssetFromFields(fields map[string]string) AssetRecord {
	return AssetRecord{
		ID:              fields[ColAssetID],
		PersonID:        fields[ColPersonID],
		Type:            AssetType(strings.TrimSpace(fields[ColAssetType])),
		Institution:     fields[ColInstitution],
		Detail:          fields[ColDetail],
		AccountNumber:   fields[ColAccountNumber],
		Value:           fields[ColValue],
		StorageLocation: fields[ColStorageLocation],
		Note:            fields[ColNote],
		UpdatedAt:       fields[ColUpdatedAt],
	}
}

// ActivityFromFields builds an ActivityRecord from an activity column map
func ActivityFromFields(fields map[string]string) ActivityRecord {
	return ActivityRecord{
		ID:        fields[ColActivityID],
		PersonID:  fields[ColPersonID],
		Date:      fields[ColActivityDate],
		Type:      fields[ColActivityType],
		Location:  fields[ColLocation],
		Duration:  fields[ColDuration],
		Expense:   fields[ColExpense],
		Important: ParseFlag(fields[ColImportant]),
		Summary:   fields[ColSummary],
		CreatedAt: fields[ColCreatedAt],
	}
}

// Fields returns the activity as a column map, the inverse of ActivityFromFields
func (a ActivityRecord) Fields() map[string]string {
	return map[string]string{
		ColActivityID:   a.ID,
		ColPersonID:     a.PersonID,
		ColActivityDate: a.Date,
		ColActivityType: a.Type,
		ColLocation:     a.Location,
		ColDuration:     a.Duration,
		ColExpense:      a.Expense,
		ColImportant:    FormatFlag(a.Important),
		ColSummary:      a.Summary,
		ColCreatedAt:    a.CreatedAt,
	}
}

// RelatedPartyFromFields builds a RelatedPartyRecord from a related-party column map
func RelatedPartyFromFields(fields map[string]string) RelatedPartyRecord {
	return RelatedPartyRecord{
		ID:           fields[ColRelatedID],
		PersonID:     fields[ColPersonID],
		Relationship: fields[ColRelationship],
		Name:         fields[ColName],
		Organization: fields[ColOrganization],
		Phone:        fields[ColRelatedPhone],
		PostalCode:   fields[ColPostalCode],
		Address:      fields[ColAddress],
		Email:        fields[ColEmail],
		Note:         fields[ColLiaisonNote],
		UpdatedAt:    fields[ColUpdatedAt],
		KeyPerson:    ParseFlag(fields[ColKeyPerson]),
	}
}

// Fields returns the related party as a column map, the inverse of RelatedPartyFromFields
func (r RelatedPartyRecord) Fields() map[string]string {
	return map[string]string{
		ColRelatedID:    r.ID,
		ColPersonID:     r.PersonID,
		ColRelationship: r.Relationship,
		ColName:         r.Name,
		ColOrganization: r.Organization,
		ColRelatedPhone: r.Phone,
		ColPostalCode:   r.PostalCode,
		ColAddress:      r.Address,
		ColEmail:        r.Email,
		ColLiaisonNote:  r.Note,
		ColUpdatedAt:    r.UpdatedAt,
		ColKeyPerson:    FormatFlag(r.KeyPerson),
	}
}

// ParseFlag reads the check-box columns (重要, キーパーソン).
// Spreadsheet and database exports write these as TRUE/True/1/★.
func ParseFlag(s string) bool {
	switch strings.ToUpper(width.Narrow.String(strings.TrimSpace(s))) {
	case "TRUE", "1", "1.0", "★", "○", "YES":
		return true
	}
	return false
}

// FormatFlag renders a check-box column the way ParseFlag reads it back
func FormatFlag(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// ParseReportMonth extracts the month number from values such as "8", "8月" or "８月".
// ok is false for empty, non-numeric or out-of-range input.
func ParseReportMonth(s string) (month int, ok bool) {
	s = width.Narrow.String(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "月"))
	if s == "" {
		return 0, false
	}

	m, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheet exports sometimes carry "8.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		m = int(f)
	}
	if m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// ParseValuation parses a raw valuation the way the registry stores it
// ("1000000", "1000000.0", "1,000,000"), truncating toward zero.
// NaN, infinities and values outside int64 are not valuations.
func ParseValuation(raw string) (int64, bool) {
	s := width.Narrow.String(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "円")
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// IsBankDeposit reports whether the asset belongs in the deposit table
func (a AssetRecord) IsBankDeposit() bool {
	return a.Type == AssetTypeBankDeposit
}

// IsCash reports whether the asset is cash on hand
func (a AssetRecord) IsCash() bool {
	return a.Type == AssetTypeCash
}

// IsFacilityDeposit reports whether the asset is money held by a care facility.
// Registries without a dedicated category record these as "その他" named after the facility.
func (a AssetRecord) IsFacilityDeposit() bool {
	if a.Type == AssetTypeFacilityDeposit {
		return true
	}
	return a.Type == AssetTypeOther && strings.Contains(a.Institution, "施設")
}

// IsTimeDeposit reports whether detail or note marks the account as 定期/定額
func (a AssetRecord) IsTimeDeposit() bool {
	text := a.Detail + a.Note
	return strings.Contains(text, "定期") || strings.Contains(text, "定額")
}
