package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fact_check_news/cache"
	"fact_check_news/checker"
)

type factCheckReq struct {
	Article string `json:"article"`
}

type factCheckResp struct {
	Report string `json:"report"`
	Status string `json:"status"`
}

type detailResp struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleFactCheck(w http.ResponseWriter, r *http.Request) {
	var req factCheckReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, detailResp{Detail: "invalid request body"})
		return
	}

	ctx := r.Context()
	key := cache.Key(req.Article)
	if s.cache != nil {
		report, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Printf("cache get: %v", err)
		} else if ok {
			s.infof("fact-check served from cache key=%s", key)
			writeJSON(w, http.StatusOK, factCheckResp{Report: report, Status: checker.StatusCompleted})
			return
		}
	}

	res, err := s.checker.Check(ctx, req.Article)
	switch {
	case errors.Is(err, checker.ErrArticleTooShort), errors.Is(err, checker.ErrNoClaims):
		writeJSON(w, http.StatusBadRequest, detailResp{Detail: err.Error()})
		return
	case err != nil:
		s.logger.Printf("fact-check failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, detailResp{Detail: fmt.Sprintf("Fact-check failed: %v", err)})
		return
	}
	s.infof("fact-check done claims=%d", len(res.Claims))

	if s.cache != nil && !res.ReportFailed {
		if err := s.cache.Set(ctx, key, res.Report); err != nil {
			s.logger.Printf("cache set: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, factCheckResp{Report: res.Report, Status: checker.StatusCompleted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
