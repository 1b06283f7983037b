package main

import (
	"net/http"

	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

// handleValidateProjectInfo normalizes a header and reports every invalid
// field at once.
func (s *server) handleValidateProjectInfo(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInfo
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	info := validate.NormalizeProjectInfo(in, s.clock())
	if err := validate.ProjectInfo(info).Err("案件情報の入力内容に誤りがあります"); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, info, "案件情報を検証しました")
}
