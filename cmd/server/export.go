package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/export"
	"github.com/munakata1001/mitumorisyo/internal/model"
)

// handleExportPayload renders an estimate sent in the request body. Derived
// fields are recomputed before rendering.
func (s *server) handleExportPayload(w http.ResponseWriter, r *http.Request) {
	var est model.Estimate
	if err := decodeJSON(w, r, &est); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.estimates.Calculate(r.Context(), est.TableData, est.CostCalculation.ManualCosts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	est.TableData = res.Rows
	est.CostCalculation = res.CostCalculation

	s.renderExport(w, r, chi.URLParam(r, "format"), est)
}

func (s *server) handleExportStored(w http.ResponseWriter, r *http.Request) {
	est, err := s.estimates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderExport(w, r, chi.URLParam(r, "format"), est)
}

func (s *server) renderExport(w http.ResponseWriter, r *http.Request, format string, est model.Estimate) {
	mime, ext, ok := export.ContentType(format)
	if !ok {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("未対応の出力形式です: %s", format)))
		return
	}

	var (
		doc []byte
		err error
	)
	switch format {
	case export.FormatPDF:
		doc, err = export.PDF(est, export.PDFOptions{FontPath: s.pdfFontPath})
	default:
		doc, err = export.Excel(est)
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("render %s: %w", format, err))
		return
	}
	s.metrics.IncExport(format)

	name := export.FileName(est, ext, s.clock())
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="estimate.%s"; filename*=UTF-8''%s`, ext, url.PathEscape(name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
