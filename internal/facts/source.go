package facts

import (
	"context"
	stderrors "errors"

	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/table"
)

// Source loads facts sheets by name.
type Source interface {
	Sheet(ctx context.Context, name string) (*Sheet, error)
}

// TableReader is the part of the catalog store the workbook source needs.
type TableReader interface {
	ReadTable(ctx context.Context, sheet string, segments ...string) (*table.Table, error)
}

// WorkbookSource reads sheets of the facts workbook stored alongside the
// catalog.
type WorkbookSource struct {
	reader TableReader
	path   []string
}

func NewWorkbookSource(reader TableReader, path ...string) *WorkbookSource {
	return &WorkbookSource{reader: reader, path: path}
}

func (s *WorkbookSource) Sheet(ctx context.Context, name string) (*Sheet, error) {
	t, err := s.reader.ReadTable(ctx, name, s.path...)
	if err != nil {
		var stdErr *apperrors.StandardError
		if stderrors.As(err, &stdErr) {
			return nil, err
		}
		return nil, apperrors.NewFactsUnavailableError(name, err)
	}
	return NewSheet(name, t)
}
