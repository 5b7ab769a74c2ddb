package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
)

// Workbook reads hierarchy sheets out of an xlsx container. It knows nothing
// about the domain beyond sheet naming; rows come out as raw header/value
// pairs for the field mapper to interpret.
type Workbook struct {
	file *excelize.File
	// normalized sheet name -> actual sheet name
	sheets map[string]string
	// buffered rows per level, so a sheet can be re-read safely
	rows map[importer.Level][]importer.RawRow
}

var _ importer.Workbook = (*Workbook)(nil)

// OpenWorkbook parses workbook bytes. Malformed containers fail fast with no
// partial state.
func OpenWorkbook(r io.Reader) (importer.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: not a valid spreadsheet: %w", err)
	}

	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheets[normalizeSheetName(name)] = name
	}

	return &Workbook{
		file:   f,
		sheets: sheets,
		rows:   make(map[importer.Level][]importer.RawRow),
	}, nil
}

// Rows returns the buffered rows of the level's sheet and whether the sheet
// exists in the workbook. Fully empty rows are skipped; row numbers are the
// spreadsheet's own (header is row 1).
func (w *Workbook) Rows(level importer.Level) ([]importer.RawRow, bool, error) {
	if buffered, ok := w.rows[level]; ok {
		return buffered, true, nil
	}

	actual, ok := w.lookupSheet(level)
	if !ok {
		return nil, false, nil
	}

	cells, err := w.file.GetRows(actual)
	if err != nil {
		return nil, true, fmt.Errorf("read sheet %q: %w", actual, err)
	}
	if len(cells) == 0 {
		w.rows[level] = nil
		return nil, true, nil
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(strings.ToLower(h))
	}

	out := make([]importer.RawRow, 0, len(cells)-1)
	for i, row := range cells[1:] {
		raw := importer.RawRow{
			Sheet:  level.SheetName(),
			Number: i + 2,
		}
		empty := true
		for col, header := range headers {
			if header == "" {
				continue
			}
			value := ""
			if col < len(row) {
				value = row[col]
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			raw.Fields = append(raw.Fields, importer.RawField{Name: header, Value: value})
		}
		if empty {
			continue
		}
		out = append(out, raw)
	}

	w.rows[level] = out
	return out, true, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) lookupSheet(level importer.Level) (string, bool) {
	if actual, ok := w.sheets[normalizeSheetName(level.SheetName())]; ok {
		return actual, true
	}
	for _, alias := range level.SheetAliases() {
		if actual, ok := w.sheets[normalizeSheetName(alias)]; ok {
			return actual, true
		}
	}
	return "", false
}

// normalizeSheetName lower-cases and strips spaces and underscores, so
// "Use Cases", "use_cases", and "Usecases" all address the same sheet.
func normalizeSheetName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "_", "")
}
