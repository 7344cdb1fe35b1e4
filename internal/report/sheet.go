package report

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// resolveSheet finds the sheet whose name contains substr. Template authors add
// spaces and suffixes such as "(定期報告)", so exact names are not reliable.
// When several sheets match, the last one in workbook order wins.
func resolveSheet(f *excelize.File, substr string) (string, bool) {
	if substr == "" {
		return "", false
	}
	found := ""
	for _, name := range f.GetSheetList() {
		if strings.Contains(name, substr) {
			found = name
		}
	}
	return found, found != ""
}
