package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
)

const maxJSONBody = 5 << 20

type dataResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type errorBody struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
	Details any            `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// internalErrorBody is sent when a response cannot be encoded.
var internalErrorBody = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"サーバーエラーが発生しました"}}` + "\n")

// writeJSON encodes v before any header is written, so an encoding failure
// still yields a 500 envelope.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		buf.Write(internalErrorBody)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, dataResponse{Data: data, Message: message})
}

// writeError maps an error to its HTTP status and JSON envelope. Errors
// without a code are reported as internal errors and never leak their text.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		appErr = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "")
	}
	rendering := appErr.Code().Rendering()

	body := errorBody{Code: appErr.Code(), Message: appErr.Message()}
	if appErr.Code() == pkgerrors.CodeInternal || body.Message == "" {
		body.Message = rendering.Fallback
	}
	if rendering.ShowDetails {
		body.Details = appErr.Details()
	}

	if rendering.Status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", err)
	} else {
		s.log.Debug(s.log.WithField(r.Context(), "error", err.Error()), "request rejected")
	}
	writeJSON(w, rendering.Status, errorResponse{Error: body})
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "リクエストが大きすぎます")
		case errors.Is(err, io.EOF):
			return pkgerrors.New(pkgerrors.CodeValidation, "リクエスト本文が空です")
		default:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "JSONの形式が正しくありません")
		}
	}
	return nil
}
