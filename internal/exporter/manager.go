package exporter

import (
	"strings"
)

// GetExporters returns the exporters for the requested formats, each at most once
func GetExporters(formats []string) []Exporter {
	exporters := []Exporter{}
	seen := make(map[string]bool)

	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case "excel", "xlsx":
			f = "excel"
		}
		if seen[f] {
			continue
		}
		seen[f] = true

		switch f {
		case "excel":
			exporters = append(exporters, NewExcelExporter())
		case "csv":
			exporters = append(exporters, NewCSVExporter())
		}
	}
	return exporters
}
