// internal/table/xlsx.go
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "forecast-bot/internal/common/errors"
)

const maxSheetName = 31

// ReadWorkbook decodes one sheet of an xlsx stream. An empty sheet name
// selects the first sheet. The first non-empty row becomes the header.
func ReadWorkbook(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewMalformedTableError(sheet, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewMalformedTableError(sheet, fmt.Errorf("workbook has no sheets"))
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperrors.NewCatalogNotFoundError(fmt.Sprintf("sheet %q", sheet))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewMalformedTableError(sheet, err)
	}

	for len(rows) > 0 && isBlank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, apperrors.NewMalformedTableError(sheet, fmt.Errorf("sheet has no header row"))
	}

	header := trimAll(rows[0])
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		body = append(body, trimAll(row))
	}
	return New(header, body), nil
}

// Sheet is one named sheet of a workbook being written.
type Sheet struct {
	Name  string
	Table *Table
}

// WriteWorkbook encodes t as a single-sheet xlsx document.
func WriteWorkbook(sheet string, t *Table) ([]byte, error) {
	return WriteSheets([]Sheet{{Name: sheet, Table: t}})
}

// WriteSheets encodes several tables as sheets of one xlsx document, in order.
func WriteSheets(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		name := SheetName(sh.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %q: %w", name, err)
		}

		if err := writeRow(f, name, 1, sh.Table.Header); err != nil {
			return nil, err
		}
		for r, row := range sh.Table.Rows {
			if err := writeRow(f, name, r+2, row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// SheetName makes name acceptable as an xlsx sheet title.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "-" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
