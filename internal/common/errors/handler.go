// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"
)

const (
	MessageSelectionUnavailable = "Выбранные данные недоступны. Выберите другой вариант."
	MessageReportFailed         = "Не удалось сформировать отчёт, попробуйте выбрать другие данные."
	MessageEmptySelection       = "Вы не выбрали ни одной переменной"
	MessageInternal             = "Что-то пошло не так. Для начала напишите /start"
)

// ErrorHandler turns failures into the text shown to the user and logs them.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it and returns it together with the message
// the conversation should show.
func (h *ErrorHandler) Handle(err error, fields map[string]interface{}) (*StandardError, string) {
	stdErr := h.normalizeError(err)
	h.logError(stdErr, fields)
	return stdErr, UserMessage(stdErr.Code)
}

// UserMessage maps an error code to user-visible text.
func UserMessage(code ErrorCode) string {
	switch {
	case code == ErrCodeCatalogNotFound:
		return MessageSelectionUnavailable
	case code == ErrCodeEmptySelection:
		return MessageEmptySelection
	case IsDataError(code):
		return MessageReportFailed
	}
	return MessageInternal
}

func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(stdErr *StandardError, fields map[string]interface{}) {
	out := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}

	if IsUserInputError(stdErr.Code) || stdErr.Code == ErrCodeCatalogNotFound {
		h.logger.Warn("Request rejected", out)
		return
	}
	h.logger.Error("Request failed", out)
}
