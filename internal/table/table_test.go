// internal/table/table_test.go
package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "forecast-bot/internal/common/errors"
)

func sampleTable() *Table {
	return New(
		[]string{"Показатель", "2024", "2025", "2026"},
		[][]string{
			{"ВВП", "3.5", "1.0", "1.5"},
			{"Инфляция", "4.3"},
		},
	)
}

func TestNew_PadsShortRows(t *testing.T) {
	tbl := sampleTable()
	assert.Len(t, tbl.Rows[1], 4)
	assert.Equal(t, []string{"2024", "2025", "2026"}, tbl.Columns())
	assert.Equal(t, []string{"ВВП", "Инфляция"}, tbl.Labels())
}

func TestCell(t *testing.T) {
	tbl := sampleTable()

	tests := []struct {
		name   string
		label  string
		column string
		want   string
		wantOK bool
	}{
		{name: "present", label: "ВВП", column: "2025", want: "1.0", wantOK: true},
		{name: "padded blank", label: "Инфляция", column: "2026", wantOK: false},
		{name: "unknown column", label: "ВВП", column: "2030", wantOK: false},
		{name: "unknown row", label: "Безработица", column: "2024", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tbl.Cell(tt.label, tt.column)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	tbl := sampleTable()
	c := tbl.Clone()
	c.Rows[0][1] = "-3.5"
	assert.Equal(t, "3.5", tbl.Rows[0][1])
}

func TestFloatColumn(t *testing.T) {
	tbl := New(
		[]string{"Показатель", "целые", "дробные", "пропуск", "текст", "пусто"},
		[][]string{
			{"ВВП", "2", "2", "13", "3.5-4.0", ""},
			{"Инфляция", "3", "4.5", "", "4", ""},
			{"", "0.5", "", "", "", ""},
		},
	)

	assert.False(t, tbl.FloatColumn("целые"))
	assert.True(t, tbl.FloatColumn("дробные"))
	assert.True(t, tbl.FloatColumn("пропуск"))
	assert.False(t, tbl.FloatColumn("текст"))
	assert.False(t, tbl.FloatColumn("пусто"))
	assert.False(t, tbl.FloatColumn("Показатель"))
	assert.False(t, tbl.FloatColumn("нет"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"3.5", 3.5, true},
		{"3,5", 3.5, true},
		{" -12 ", -12, true},
		{"1 234,5", 1234.5, true},
		{"", 0, false},
		{"nan", 0, false},
		{"н/д", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestWorkbook_ReadsBackWhatWasWritten(t *testing.T) {
	data, err := WriteSheets([]Sheet{
		{Name: "трлн руб", Table: sampleTable()},
		{Name: "% ВВП", Table: New([]string{"Показатель", "2024"}, [][]string{{"Доходы", "35.1"}})},
	})
	require.NoError(t, err)

	first, err := ReadWorkbook(bytes.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, sampleTable().Header, first.Header)
	v, ok := first.Cell("ВВП", "2026")
	assert.True(t, ok)
	assert.Equal(t, "1.5", v)

	second, err := ReadWorkbook(bytes.NewReader(data), "% ВВП")
	require.NoError(t, err)
	assert.Equal(t, []string{"Доходы"}, second.Labels())
}

func TestReadWorkbook_Errors(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("not a zip")), "")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeMalformedTable))

	data, err := WriteWorkbook("Все", sampleTable())
	require.NoError(t, err)
	_, err = ReadWorkbook(bytes.NewReader(data), "КСП")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeCatalogNotFound))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", SheetName("-"))
	assert.Equal(t, "a_b", SheetName("a/b"))
	assert.Len(t, []rune(SheetName("Очень длинное название группы переменных прогноза")), 31)
}
