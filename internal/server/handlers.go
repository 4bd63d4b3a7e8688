package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/cluster"
	"github.com/hyperjump/kioku/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	s.logger.Debug("register request", zap.Int("text_len", len(req.Text)))
	id, err := s.pipeline.Register(r.Context(), req.Text)
	if err != nil {
		s.respondDomainError(w, err, "register failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, models.RegisterResponse{DocumentID: id})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	topK := s.searchDefaults().DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("top_k", topK))
	result, err := s.pipeline.Answer(r.Context(), req.Query, topK)
	if err != nil {
		s.respondDomainError(w, err, "search failed")
		return
	}
	s.respondJSON(w, http.StatusOK, models.SearchResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
	})
}

// handleDocuments serves both listing and clustering, selected by ?mode=.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	defaults := s.searchDefaults()
	q := r.URL.Query()

	mode := q.Get("mode")
	if mode == "" {
		mode = "list"
	}
	switch mode {
	case "list":
		limit, err := queryInt(q.Get("limit"), defaults.DefaultLimit)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid_parameter", "limit must be an integer")
			return
		}
		offset, err := queryInt(q.Get("offset"), 0)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid_parameter", "offset must be an integer")
			return
		}
		summaries, total, err := s.storage.List(r.Context(), limit, offset)
		if err != nil {
			s.respondDomainError(w, err, "list failed")
			return
		}
		s.respondJSON(w, http.StatusOK, models.DocumentsResponse{
			Total:     total,
			Documents: summaries,
		})
	case "cluster":
		threshold, err := queryFloat(q.Get("threshold"), defaults.DefaultClusterThreshold)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid_parameter", "threshold must be a number")
			return
		}
		// Validate before touching the store.
		if threshold < 0 || threshold > 1 {
			s.respondError(w, http.StatusBadRequest, "invalid_parameter", "threshold must be in [0,1]")
			return
		}
		docs, err := s.storage.FetchAll(r.Context())
		if err != nil {
			s.respondDomainError(w, err, "cluster fetch failed")
			return
		}
		clusters, err := cluster.Build(docs, threshold)
		if err != nil {
			s.respondDomainError(w, err, "clustering failed")
			return
		}
		total := 0
		for _, c := range clusters {
			total += len(c.Members)
		}
		s.respondJSON(w, http.StatusOK, models.DocumentsResponse{
			Total:    total,
			Clusters: clusters,
		})
	default:
		s.respondError(w, http.StatusBadRequest, "invalid_parameter", "mode must be list or cluster")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]interface{}{
		"store_available": s.storage.Available(),
	}
	if s.storage.Available() {
		count, err := s.storage.Count(ctx)
		if err != nil {
			s.logger.Error("status: count failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		dim, err := s.storage.Dimension(ctx)
		if err != nil {
			s.logger.Error("status: dimension failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		resp["documents"] = count
		resp["embedding_dimensions"] = dim
	}
	defaults := s.searchDefaults()
	resp["config"] = map[string]interface{}{
		"default_top_k":             defaults.DefaultTopK,
		"default_limit":             defaults.DefaultLimit,
		"max_limit":                 defaults.MaxLimit,
		"default_cluster_threshold": defaults.DefaultClusterThreshold,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondDomainError maps the error taxonomy to HTTP statuses and stable codes.
func (s *Server) respondDomainError(w http.ResponseWriter, err error, logMsg string) {
	code, status := "internal", http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrEmptyText):
		code, status = "empty_text", http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidParameter):
		code, status = "invalid_parameter", http.StatusBadRequest
	case errors.Is(err, models.ErrDimensionMismatch):
		code, status = "dimension_mismatch", http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidVector):
		code, status = "invalid_vector", http.StatusBadRequest
	case errors.Is(err, models.ErrStoreUnavailable):
		code, status = "store_unavailable", http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(logMsg, zap.Error(err))
	} else {
		s.logger.Debug(logMsg, zap.String("code", code), zap.Error(err))
	}
	s.respondError(w, status, code, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Code: code, Message: message})
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}
