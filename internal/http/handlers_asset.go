package http

import (
	"net/http"
	"strconv"

	"rentledger/internal/core"
	"rentledger/internal/session"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	assets, err := s.property.ListAssets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]assetView, 0, len(assets))
	for _, a := range assets {
		out = append(out, newAssetView(a))
	}
	OK(w, out)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	var req assetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.property.CreateAsset(r.Context(), req.asset())
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, newAssetView(a))
}

func (s *Server) handleUpdateMeter(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req meterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Reading == nil {
		writeError(w, r, &requestError{msg: "validation failed", fields: map[string]string{"reading": "required"}})
		return
	}
	a, err := s.property.UpdateMeterReading(r.Context(), id, core.CoerceReading(req.Reading))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, newAssetView(a))
}

func (s *Server) handleAdminTotals(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			writeError(w, r, &requestError{msg: "invalid year"})
			return
		}
		year = y
	}
	d, err := s.ledger.AdminTotals(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, newTotalsView(d))
}
