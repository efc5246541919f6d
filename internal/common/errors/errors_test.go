// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	warns  []string
	errors []string
	fields []map[string]interface{}
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.warns = append(l.warns, msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, msg)
	l.fields = append(l.fields, fields)
}

func TestIs_WrappedStandardError(t *testing.T) {
	base := NewCatalogNotFoundError("Данные/Минфин/2030")
	wrapped := fmt.Errorf("list documents: %w", base)

	assert.True(t, Is(wrapped, ErrCodeCatalogNotFound))
	assert.False(t, Is(wrapped, ErrCodeMalformedTable))
	assert.Equal(t, ErrCodeCatalogNotFound, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestMalformedTableError_Unwrap(t *testing.T) {
	cause := stderrors.New("zip: not a valid zip file")
	err := NewMalformedTableError("Факты.xlsx", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "MALFORMED_TABLE")
}

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    ErrorCode
		wantMessage string
		wantWarn    bool
	}{
		{
			name:        "not found keeps session alive",
			err:         NewCatalogNotFoundError("x"),
			wantCode:    ErrCodeCatalogNotFound,
			wantMessage: MessageSelectionUnavailable,
			wantWarn:    true,
		},
		{
			name:        "empty selection",
			err:         NewEmptySelectionError(),
			wantCode:    ErrCodeEmptySelection,
			wantMessage: MessageEmptySelection,
			wantWarn:    true,
		},
		{
			name:        "missing column aborts report",
			err:         NewMissingColumnError("Все", "Показатель"),
			wantCode:    ErrCodeMissingColumn,
			wantMessage: MessageReportFailed,
		},
		{
			name:        "plain error becomes internal",
			err:         stderrors.New("boom"),
			wantCode:    ErrCodeInternal,
			wantMessage: MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			h := NewErrorHandler(log)

			stdErr, msg := h.Handle(tt.err, map[string]interface{}{"chatId": int64(42)})

			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantMessage, msg)
			if tt.wantWarn {
				assert.Len(t, log.warns, 1)
				assert.Empty(t, log.errors)
			} else {
				assert.Len(t, log.errors, 1)
				assert.Empty(t, log.warns)
			}
			assert.Equal(t, int64(42), log.fields[0]["chatId"])
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeCatalogNotFound))
	assert.Equal(t, "USER_INPUT", GetErrorCategory(ErrCodeInvalidSelection))
	assert.Equal(t, "DATA", GetErrorCategory(ErrCodeFactsUnavailable))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeInternal))
}
