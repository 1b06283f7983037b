package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

func (s *server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	estimates, err := s.estimates.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, estimates, "")
}

func (s *server) handleSaveEstimate(w http.ResponseWriter, r *http.Request) {
	var in model.Estimate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if in.ID == "" {
		status = http.StatusCreated
	}
	est, err := s.estimates.Save(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, status, est, "見積書を保存しました")
}

func (s *server) handleGetEstimate(w http.ResponseWriter, r *http.Request) {
	est, err := s.estimates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, est, "")
}

func (s *server) handleFindEstimateByNumber(w http.ResponseWriter, r *http.Request) {
	est, err := s.estimates.FindByNumber(r.Context(), chi.URLParam(r, "estimateNumber"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, est, "")
}

func (s *server) handleDeleteEstimate(w http.ResponseWriter, r *http.Request) {
	if err := s.estimates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil, "見積書を削除しました")
}

func (s *server) handleUpdateProjectInfo(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInfo
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	est, err := s.estimates.UpdateProjectInfo(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, est, "案件情報を更新しました")
}

type remarksRequest struct {
	RemarksData  model.RemarksData  `json:"remarksData"`
	ApprovalInfo model.ApprovalInfo `json:"approvalInfo"`
}

func (s *server) handleUpdateRemarks(w http.ResponseWriter, r *http.Request) {
	var in remarksRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	est, err := s.estimates.UpdateRemarks(r.Context(), chi.URLParam(r, "id"), in.RemarksData, in.ApprovalInfo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, est, "備考を更新しました")
}
