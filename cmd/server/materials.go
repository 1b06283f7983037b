package main

import (
	"net/http"
	"strings"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

func (s *server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := s.estimates.Materials(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, materials, "")
}

func (s *server) handleUpsertMaterial(w http.ResponseWriter, r *http.Request) {
	var in model.Material
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)

	m, err := s.estimates.UpsertMaterial(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, m, "材質を登録しました")
}
