package facts

import (
	"context"
	"database/sql"
	"sort"
	"strconv"

	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/table"
)

const sheetQuery = `
		SELECT variable, period, period_order, value, precision
		FROM forecast_facts
		WHERE sheet = $1
		ORDER BY row_order, period_order`

// PostgresSource serves facts sheets from the forecast_facts table, one row
// per (sheet, variable, period).
type PostgresSource struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresSource(db *sql.DB, log logger.Logger) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "facts-postgres"}),
	}
}

func (s *PostgresSource) Sheet(ctx context.Context, name string) (*Sheet, error) {
	rows, err := s.db.QueryContext(ctx, sheetQuery, name)
	if err != nil {
		s.logger.Error("Facts query failed", map[string]interface{}{"sheet": name, "error": err.Error()})
		return nil, apperrors.NewFactsUnavailableError(name, err)
	}
	defer rows.Close()

	var (
		labels      []string
		cells       = make(map[string]map[string]string)
		precisions  = make(map[string]string)
		periodOrder = make(map[string]int)
	)
	for rows.Next() {
		var (
			variable, period string
			order            int
			value            sql.NullFloat64
			precision        sql.NullInt64
		)
		if err := rows.Scan(&variable, &period, &order, &value, &precision); err != nil {
			return nil, apperrors.NewFactsUnavailableError(name, err)
		}
		if _, seen := cells[variable]; !seen {
			labels = append(labels, variable)
			cells[variable] = make(map[string]string)
		}
		if _, seen := periodOrder[period]; !seen {
			periodOrder[period] = order
		}
		if value.Valid {
			cells[variable][period] = strconv.FormatFloat(value.Float64, 'f', -1, 64)
		}
		if precision.Valid {
			precisions[variable] = strconv.FormatInt(precision.Int64, 10)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewFactsUnavailableError(name, err)
	}
	if len(labels) == 0 {
		return nil, apperrors.NewCatalogNotFoundError("facts sheet " + name)
	}

	periods := make([]string, 0, len(periodOrder))
	for p := range periodOrder {
		periods = append(periods, p)
	}
	sort.SliceStable(periods, func(i, j int) bool {
		if periodOrder[periods[i]] != periodOrder[periods[j]] {
			return periodOrder[periods[i]] < periodOrder[periods[j]]
		}
		return periods[i] < periods[j]
	})

	header := append([]string{LabelColumn}, periods...)
	header = append(header, PrecisionColumn)
	body := make([][]string, 0, len(labels))
	for _, label := range labels {
		row := make([]string, 0, len(header))
		row = append(row, label)
		for _, p := range periods {
			row = append(row, cells[label][p])
		}
		row = append(row, precisions[label])
		body = append(body, row)
	}

	s.logger.Debug("Loaded facts sheet", map[string]interface{}{
		"sheet":     name,
		"variables": len(labels),
		"periods":   len(periods),
	})
	return NewSheet(name, table.New(header, body))
}
