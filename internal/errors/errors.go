// Package errors carries the error codes the API reports to clients.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for the HTTP layer.
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeTooLarge   Code = "PAYLOAD_TOO_LARGE"
	CodeParse      Code = "PARSE_ERROR"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// Rendering describes how a code is written to the client. Fallback is used
// when the error has no message of its own or must not show it.
type Rendering struct {
	Status      int
	Fallback    string
	ShowDetails bool
}

var renderings = map[Code]Rendering{
	CodeValidation: {http.StatusBadRequest, "入力内容に誤りがあります", true},
	CodeNotFound:   {http.StatusNotFound, "対象が見つかりません", false},
	CodeTooLarge:   {http.StatusRequestEntityTooLarge, "ファイルサイズが大きすぎます", true},
	CodeParse:      {http.StatusUnprocessableEntity, "ファイルの解析に失敗しました", true},
	CodeInternal:   {http.StatusInternalServerError, "サーバーエラーが発生しました", false},
}

// Rendering returns how c is written. Unknown codes render as internal errors.
func (c Code) Rendering() Rendering {
	if r, ok := renderings[c]; ok {
		return r
	}
	return renderings[CodeInternal]
}

// Error is a coded failure with an optional client-visible payload.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code to err. A nil err yields a plain coded error.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code { return e.code }
func (e *Error) Message() string { return e.message }
func (e *Error) Details() any { return e.details }

func (e *Error) WithDetails(details any) *Error {
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var coded *Error
	if stdErrors.As(err, &coded) {
		return coded
	}
	return nil
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	coded := As(err)
	return coded != nil && coded.code == code
}
