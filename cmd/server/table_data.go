package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/munakata1001/mitumorisyo/internal/estimate"
	"github.com/munakata1001/mitumorisyo/internal/model"
)

type tableDataRequest struct {
	TableData []model.LineItem `json:"tableData"`
}

func (s *server) handleGetTableData(w http.ResponseWriter, r *http.Request) {
	rows, err := s.estimates.TableData(r.Context(), chi.URLParam(r, "estimateId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rows, "")
}

func (s *server) handleReplaceTableData(w http.ResponseWriter, r *http.Request) {
	var in tableDataRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.estimates.ReplaceTableData(r.Context(), chi.URLParam(r, "estimateId"), in.TableData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res, "明細を更新しました")
}

func (s *server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	row, err := s.estimates.AddRow(r.Context(), chi.URLParam(r, "estimateId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, row, "行を追加しました")
}

func (s *server) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	var patch estimate.RowPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	row, err := s.estimates.UpdateRow(r.Context(), chi.URLParam(r, "estimateId"), chi.URLParam(r, "rowId"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, row, "行を更新しました")
}

func (s *server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	summary, err := s.estimates.DeleteRow(r.Context(), chi.URLParam(r, "estimateId"), chi.URLParam(r, "rowId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary, "行を削除しました")
}
