package main

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

func (s *server) handleGetCostCalculation(w http.ResponseWriter, r *http.Request) {
	summary, err := s.estimates.CostCalculation(r.Context(), chi.URLParam(r, "estimateId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary, "")
}

// handleUpdateCostCalculation accepts the whole cost object as sent by the
// editor. Every numeric field is checked, but only the manual fields are
// applied; the rest is recomputed.
func (s *server) handleUpdateCostCalculation(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		s.writeError(w, r, err)
		return
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "JSONの形式が正しくありません"))
		return
	}
	if err := validate.CostFields(payload).Err("原価の入力内容に誤りがあります"); err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch model.ManualCostsPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "JSONの形式が正しくありません"))
		return
	}

	summary, err := s.estimates.UpdateManualCosts(r.Context(), chi.URLParam(r, "estimateId"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary, "原価計算を更新しました")
}

func (s *server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	res, err := s.estimates.Recalculate(r.Context(), chi.URLParam(r, "estimateId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res, "再計算しました")
}

type calculationRequest struct {
	TableData       []model.LineItem  `json:"tableData"`
	CostCalculation model.CostSummary `json:"costCalculation"`
}

// handleCalculate prices rows that are not stored, e.g. while a draft is
// being edited.
func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var in calculationRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.estimates.Calculate(r.Context(), in.TableData, in.CostCalculation.ManualCosts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res, "")
}
