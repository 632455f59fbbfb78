package tabular

import (
	"path/filepath"
	"strings"
)

// ResultExt is the extension of every batch result file.
const ResultExt = ".xlsx"

// ResultName derives the result file name for an uploaded input name:
// "result_" + the base name without its final extension + ".xlsx".
// "report.v2.csv" becomes "result_report.v2.xlsx".
func ResultName(input string) string {
	base := filepath.Base(strings.ReplaceAll(input, "\\", "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		stem = "input"
	}
	return "result_" + stem + ResultExt
}
