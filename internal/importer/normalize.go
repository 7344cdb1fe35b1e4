package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

var eraBase = map[string]int{
	"明治": 1868, "M": 1868,
	"大正": 1912, "T": 1912,
	"昭和": 1926, "S": 1926,
	"平成": 1989, "H": 1989,
	"令和": 2019, "R": 2019,
}

var eraPattern = regexp.MustCompile(`^(明治|大正|昭和|平成|令和|[MTSHRmtshr])\s*(\d+|元)\D+(\d+)\D+(\d+)`)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006年1月2日",
	"20060102",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04",
	time.RFC3339,
}

// NormalizeDate renders a registry date as YYYY-MM-DD. Japanese era dates
// (令和5年4月1日, R5.4.1, 平成元年...) are converted to the western calendar.
// Full-width digits are accepted. Text that is not a date is returned trimmed
// but otherwise unchanged; "" and "nan" become "".
func NormalizeDate(s string) string {
	text := strings.TrimSpace(width.Narrow.String(s))
	if text == "" || strings.EqualFold(text, "nan") {
		return ""
	}

	if m := eraPattern.FindStringSubmatch(text); m != nil {
		base := eraBase[strings.ToUpper(m[1])]
		year := 1
		if m[2] != "元" {
			year, _ = strconv.Atoi(m[2])
		}
		west := base
		if year > 0 {
			west = base + year - 1
		}
		month, _ := strconv.Atoi(m[3])
		day, _ := strconv.Atoi(m[4])
		return fmt.Sprintf("%d-%02d-%02d", west, month, day)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return text
}

// SafeID renders numeric ids the way they were keyed in: "12.0" -> "12".
// Fractions are truncated. Non-numeric ids are returned trimmed.
func SafeID(s string) string {
	text := strings.TrimSpace(s)
	if text == "" || strings.EqualFold(text, "nan") {
		return ""
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) >= math.MaxInt64 {
		return text
	}
	return strconv.FormatInt(int64(f), 10)
}
