package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/ingest"
	"github.com/munakata1001/mitumorisyo/internal/merge"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

type uploadResponse struct {
	Data        []model.LineItem `json:"data"`
	Message     string           `json:"message"`
	ParsedCount int              `json:"parsedCount"`
}

func (s *server) uploadLimit() int {
	if s.maxUploadFiles > 0 && s.maxUploadFiles <= validate.MaxFiles {
		return s.maxUploadFiles
	}
	return validate.MaxFiles
}

// handleFileUpload parses up to three spreadsheets or PDFs and combines the
// rows according to parseMode. Nothing is stored.
func (s *server) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.uploadLimit()
	r.Body = http.MaxBytesReader(w, r.Body, int64(limit)*validate.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "ファイルサイズが大きすぎます"))
			return
		}
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "ファイルがアップロードされていません"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeValidation, "ファイルがアップロードされていません"))
		return
	}

	infos := make([]validate.FileInfo, len(headers))
	for i, h := range headers {
		infos[i] = validate.FileInfo{Name: h.Filename, Size: h.Size}
	}
	if err := validate.Files(infos, limit).Err("ファイル検証エラー"); err != nil {
		s.writeError(w, r, err)
		return
	}

	mode, err := merge.ParseMode(r.FormValue("parseMode"))
	if err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "解析モードが不正です"))
		return
	}
	if want := mode.FileCount(); want > 0 && len(headers) != want {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%sモードでは%dつのファイルが必要です", mode.Label(), want)))
		return
	}

	files := make([]ingest.File, len(headers))
	for i, h := range headers {
		data, err := readUpload(h)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		files[i] = ingest.File{Name: h.Filename, Data: data}
	}

	results, err := ingest.ParseAll(r.Context(), files, func(f ingest.File, err error) {
		s.metrics.IncFileParsed(f.Kind(), err == nil)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rows, err := merge.Combine(mode, results)
	if err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "ファイル数が解析モードと一致しません"))
		return
	}
	s.metrics.AddRows(string(mode), len(rows))

	writeJSON(w, http.StatusOK, uploadResponse{
		Data:        rows,
		Message:     fmt.Sprintf("%d個のファイルの解析が完了しました", len(files)),
		ParsedCount: len(rows),
	})
}

func readUpload(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", h.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, validate.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", h.Filename, err)
	}
	return data, nil
}
