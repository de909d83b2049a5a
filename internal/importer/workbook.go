package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// table is the decoded form of a workbook's first sheet: a column-name
// index plus the raw data rows. Column names are matched after
// lower-casing and trimming, so "PUBLISHER " and "publisher" are the same
// column. Extra columns are simply never looked up.
type table struct {
	columns map[string]int
	rows    [][]string
}

// readWorkbook parses the first sheet of an xlsx/xls stream into a table.
func readWorkbook(r io.Reader) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &table{columns: map[string]int{}}, nil
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}

	return &table{columns: columns, rows: rows[1:]}, nil
}

// missingColumns returns the expected column names absent from the
// header, in expected order.
func (t *table) missingColumns(expected []string) []string {
	var missing []string
	for _, name := range expected {
		if _, ok := t.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// cell returns the trimmed value of the named column in the given row,
// or "" when the column is absent or the row is short (trailing empty
// cells are not materialized by the decoder).
func (t *table) cell(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
