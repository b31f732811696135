package domain

import "fmt"

// ErrorCode identifies a pipeline failure in a machine-readable way.
type ErrorCode string

const (
	CodeEmptyFile               ErrorCode = "EMPTY_FILE"
	CodeTooLarge                ErrorCode = "FILE_TOO_LARGE"
	CodeUnsupportedType         ErrorCode = "UNSUPPORTED_TYPE"
	CodeInvalidSignature        ErrorCode = "INVALID_SIGNATURE"
	CodeFilenameInvalid         ErrorCode = "FILENAME_INVALID"
	CodeUnsupportedFormat       ErrorCode = "UNSUPPORTED_FORMAT"
	CodeMalformedFile           ErrorCode = "MALFORMED_FILE"
	CodeNoWorksheets            ErrorCode = "NO_WORKSHEETS"
	CodeEmptyWorksheet          ErrorCode = "EMPTY_WORKSHEET"
	CodeMissingColumns          ErrorCode = "MISSING_COLUMNS"
	CodeInvalidData             ErrorCode = "INVALID_DATA"
	CodeNoActiveAgents          ErrorCode = "NO_ACTIVE_AGENTS"
	CodeInvalidTargetAgentCount ErrorCode = "INVALID_TARGET_AGENT_COUNT"
)

// Error is a typed pipeline failure: a code plus a human message, optionally
// carrying the structured detail the caller needs to show every problem at
// once. It never wraps a partial result.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// Set for CodeMissingColumns.
	MissingColumns   []string `json:"missing_columns,omitempty"`
	AvailableColumns []string `json:"available_columns,omitempty"`

	// Set for CodeInvalidData.
	RowErrors []string `json:"row_errors,omitempty"`
	ValidRows int      `json:"valid_rows,omitempty"`
	TotalRows int      `json:"total_rows,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func NewMissingColumnsError(missing, available []string) *Error {
	return &Error{
		Code:             CodeMissingColumns,
		Message:          fmt.Sprintf("missing required columns: %v", missing),
		MissingColumns:   missing,
		AvailableColumns: available,
	}
}

func NewInvalidDataError(rowErrors []string, validRows, totalRows int) *Error {
	return &Error{
		Code:      CodeInvalidData,
		Message:   fmt.Sprintf("%d of %d rows failed validation", totalRows-validRows, totalRows),
		RowErrors: rowErrors,
		ValidRows: validRows,
		TotalRows: totalRows,
	}
}
