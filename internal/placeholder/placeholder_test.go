package placeholder

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"koken-report/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSubstitute(t *testing.T) {
	rec := Record{
		"氏名":   "山田 花子",
		"住所":   nil,
		"報告月":  8,
		"審判日":  time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC),
		"作成日時": time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain key", "{{氏名}}様", "山田 花子様"},
		{"nil renders empty", "住所: {{住所}}", "住所: "},
		{"missing key untouched", "{{不明}}", "{{不明}}"},
		{"number", "{{報告月}}月", "8月"},
		{"date", "{{審判日}}", "2020-04-01"},
		{"datetime", "{{作成日時}}", "2026-10-19 09:30:00"},
		{"several tokens", "{{氏名}} / {{報告月}} / {{不明}}", "山田 花子 / 8 / {{不明}}"},
		{"no tokens", "そのまま", "そのまま"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, rec))
		})
	}
}

func TestFillXLSX(t *testing.T) {
	src := excelize.NewFile()
	_, err := src.NewSheet("別紙")
	require.NoError(t, err)
	require.NoError(t, src.SetCellValue("Sheet1", "A1", "{{氏名}}様"))
	require.NoError(t, src.SetCellValue("Sheet1", "B2", "{{unknown}}"))
	require.NoError(t, src.SetCellValue("Sheet1", "C3", "[{{住所}}]"))
	require.NoError(t, src.SetCellValue("Sheet1", "D4", 12345))
	require.NoError(t, src.SetCellFormula("Sheet1", "E5", `"{{氏名}}"&"!"`))
	require.NoError(t, src.SetCellValue("別紙", "A1", "作成日 {{今日}}"))
	buf, err := src.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, src.Close())

	out, err := FillXLSX(buf.Bytes(), Record{"氏名": "山田 花子", "住所": nil, "今日": "2026-10-19"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	get := func(sheet, cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "山田 花子様", get("Sheet1", "A1"))
	assert.Equal(t, "{{unknown}}", get("Sheet1", "B2"))
	assert.Equal(t, "[]", get("Sheet1", "C3"))
	assert.Equal(t, "12345", get("Sheet1", "D4"))
	assert.Equal(t, "作成日 2026-10-19", get("別紙", "A1"))

	formula, err := f.GetCellFormula("Sheet1", "E5")
	require.NoError(t, err)
	assert.Equal(t, `"{{氏名}}"&"!"`, formula)
}

func TestFillXLSXInvalidWorkbook(t *testing.T) {
	_, err := FillXLSX([]byte("not a workbook"), Record{})
	assert.Error(t, err)
}

// minimalDocx builds the smallest package the docx reader accepts
func minimalDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	write := func(name, body string) {
		part, err := w.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(part, body)
		require.NoError(t, err)
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)
	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`)
	write("word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`)

	body := ""
	for _, p := range paragraphs {
		body += "<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>\n"
	}
	write("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
`+body+`</w:body>
</w:document>`)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatal("word/document.xml missing")
	return ""
}

func TestFillDOCX(t *testing.T) {
	src := minimalDocx(t, "{{氏名}}様", "後見人 {{後見人_氏名}}", "{{unknown}}", "再掲 {{氏名}}")

	out, err := FillDOCX(src, Record{"氏名": "山田 花子", "後見人_氏名": "佐藤 一郎"})
	require.NoError(t, err)

	doc := documentXML(t, out)
	assert.Contains(t, doc, "山田 花子様")
	assert.Contains(t, doc, "後見人 佐藤 一郎")
	assert.Contains(t, doc, "再掲 山田 花子")
	assert.Contains(t, doc, "{{unknown}}")
	assert.NotContains(t, doc, "{{氏名}}")
}

func TestFillDispatch(t *testing.T) {
	rec := Record{"氏名": "山田 花子"}

	out, err := Fill("letter.DOCX", minimalDocx(t, "{{氏名}}"), rec)
	require.NoError(t, err)
	assert.Contains(t, documentXML(t, out), "山田 花子")

	_, err = Fill("notes.txt", []byte("{{氏名}}"), rec)
	assert.Error(t, err)
}

func TestRecordFor(t *testing.T) {
	person := model.PersonRecord{ID: "12", Name: "山田 花子", ReportMonth: "8", Address: "東京都千代田区1-1"}
	guardian := &model.GuardianRecord{Name: "佐藤 一郎", Phone: "03-0000-0000"}
	today := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	rec := RecordFor(person, guardian, today)
	assert.Equal(t, "山田 花子", rec[model.ColName])
	assert.Equal(t, "12", rec[model.ColPersonID])
	assert.Equal(t, "東京都千代田区1-1", rec[model.ColAddress])
	assert.Equal(t, "佐藤 一郎", rec[GuardianPrefix+model.ColName])
	assert.Equal(t, "03-0000-0000", rec[GuardianPrefix+model.ColPhone])
	assert.Equal(t, "2026-10-19", rec[KeyToday])

	rec = RecordFor(person, nil, today)
	_, ok := rec[GuardianPrefix+model.ColName]
	assert.False(t, ok)
	assert.Equal(t, "{{後見人_氏名}} 様", Substitute("{{後見人_氏名}} 様", rec))
}
