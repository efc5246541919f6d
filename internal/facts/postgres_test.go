package facts

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/common/logger"
)

var factsColumns = []string{"variable", "period", "period_order", "value", "precision"}

func newMockSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresSource(db, logger.NewTestLogger(t)), mock
}

func TestPostgresSource_Sheet(t *testing.T) {
	src, mock := newMockSource(t)

	rows := sqlmock.NewRows(factsColumns).
		AddRow("ВВП", "2022", 2022, -1.2, 1).
		AddRow("ВВП", "2023", 2023, 3.6, 1).
		AddRow("Инфляция", "2022", 2022, 11.94, 2).
		AddRow("Инфляция", "2023", 2023, nil, 2).
		AddRow("Ключевая ставка", "2023", 2023, 16.0, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT variable, period, period_order, value, precision")).
		WithArgs(SheetAll).
		WillReturnRows(rows)

	sheet, err := src.Sheet(context.Background(), SheetAll)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"2022", "2023"}, sheet.Periods())

	v, ok := sheet.Value("ВВП", "2022")
	assert.True(t, ok)
	assert.InDelta(t, -1.2, v, 1e-9)

	_, ok = sheet.Value("Инфляция", "2023")
	assert.False(t, ok, "NULL value is a missing fact")

	assert.Equal(t, 2, sheet.Precision("Инфляция"))
	assert.Equal(t, DefaultPrecision, sheet.Precision("Ключевая ставка"))
}

func TestPostgresSource_OrdersPeriodsByPeriodOrder(t *testing.T) {
	src, mock := newMockSource(t)

	rows := sqlmock.NewRows(factsColumns).
		AddRow("ВВП", "IV кв. 2024", 4, 4.5, nil).
		AddRow("ВВП", "I кв. 2024", 1, 5.4, nil).
		AddRow("ВВП", "II кв. 2024", 2, 4.1, nil)
	mock.ExpectQuery("FROM forecast_facts").WithArgs(SheetShortTerm).WillReturnRows(rows)

	sheet, err := src.Sheet(context.Background(), SheetShortTerm)
	require.NoError(t, err)
	assert.Equal(t, []string{"I кв. 2024", "II кв. 2024", "IV кв. 2024"}, sheet.Periods())
}

func TestPostgresSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
	}{
		{
			name: "query failure",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM forecast_facts").WillReturnError(errors.New("connection reset"))
			},
			wantCode: apperrors.ErrCodeFactsUnavailable,
		},
		{
			name: "unknown sheet",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM forecast_facts").WillReturnRows(sqlmock.NewRows(factsColumns))
			},
			wantCode: apperrors.ErrCodeCatalogNotFound,
		},
		{
			name: "row iteration failure",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(factsColumns).
					AddRow("ВВП", "2023", 2023, 3.6, 1).
					RowError(0, errors.New("broken pipe"))
				mock.ExpectQuery("FROM forecast_facts").WillReturnRows(rows)
			},
			wantCode: apperrors.ErrCodeFactsUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, mock := newMockSource(t)
			tt.mock(mock)

			_, err := src.Sheet(context.Background(), "ФЗоФБ трлн руб")
			assert.True(t, apperrors.Is(err, tt.wantCode), "got %v", err)
		})
	}
}
