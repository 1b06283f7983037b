package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

type templateRequest struct {
	model.Template
	// EstimateID copies the rows of a stored estimate instead of TableData.
	EstimateID string `json:"estimateId,omitempty"`
}

type applyTemplateRequest struct {
	EstimateID string `json:"estimateId"`
}

func (s *server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.estimates.ListTemplates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, templates, "")
}

func (s *server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var in templateRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.EstimateID != "" {
		rows, err := s.estimates.TableData(r.Context(), in.EstimateID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in.TableData = rows
	}

	tpl, err := s.estimates.SaveTemplate(r.Context(), in.Template)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, tpl, "テンプレートを保存しました")
}

func (s *server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.estimates.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tpl, "")
}

func (s *server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.estimates.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil, "テンプレートを削除しました")
}

func (s *server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var in applyTemplateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	est, err := s.estimates.ApplyTemplate(r.Context(), chi.URLParam(r, "id"), in.EstimateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, est, "テンプレートを適用しました")
}
