package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/shelfwise/shelfwise/internal/dirset"
	"github.com/shelfwise/shelfwise/internal/metrics"
	"github.com/shelfwise/shelfwise/internal/search"
)

type searchRequest struct {
	Query     string `json:"query"`
	Threshold int    `json:"threshold"`
	Force     bool   `json:"force"`
}

type directoryRequest struct {
	Directory string `json:"directory"`
}

type buildRequest struct {
	Force bool `json:"force"`
}

type pathRequest struct {
	Path    string `json:"path"`
	Subject string `json:"subject"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := readJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(s.dirs.Valid()) == 0 {
		writeFail(w, http.StatusOK, "No valid search directories configured")
		return
	}

	books, err := s.store.Books(req.Force)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "catalog unavailable: "+err.Error())
		return
	}
	if len(books) == 0 {
		writeFail(w, http.StatusOK, "No ebook files found in the specified directories")
		return
	}

	scorer := s.scorer
	if req.Threshold > 0 && scorer.Mode() == "fuzzy" {
		scorer = search.NewFuzzyScorer(req.Threshold)
	}
	results := search.Search(scorer, books, req.Query)
	metrics.Searches.WithLabelValues(scorer.Mode()).Inc()

	formatted := make([]map[string]any, len(results))
	var totalMB float64
	extensions := map[string]struct{}{}
	directories := map[string]struct{}{}
	for _, b := range books {
		totalMB += b.SizeMB
		extensions[b.Extension] = struct{}{}
		directories[b.Directory] = struct{}{}
	}
	for i, res := range results {
		formatted[i] = map[string]any{
			"filename":  res.Book.Filename,
			"directory": res.Book.Directory,
			"full_path": res.Book.FullPath,
			"size_mb":   res.Book.SizeMB,
			"extension": res.Book.Extension,
			"score":     res.Score,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": formatted,
		"stats": map[string]any{
			"total_books":   len(books),
			"total_size_mb": math.Round(totalMB*10) / 10,
			"file_types":    len(extensions),
			"directories":   len(directories),
			"results_count": len(results),
		},
	})
}

func (s *Server) handleDirectories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"valid_dirs":   s.dirs.Valid(),
		"invalid_dirs": s.dirs.Invalid(),
		"total":        s.dirs.Len(),
	})
}

func (s *Server) handleDirAdd(w http.ResponseWriter, r *http.Request) {
	var req directoryRequest
	if err := readJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.dirs.Add(req.Directory); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, dirset.ErrDuplicate) {
			status = http.StatusConflict
		}
		writeFail(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Directory added successfully",
		"directory": req.Directory,
	})
}

func (s *Server) handleDirRemove(w http.ResponseWriter, r *http.Request) {
	var req directoryRequest
	if err := readJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.dirs.Remove(req.Directory); err != nil {
		writeFail(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Directory removed successfully",
		"directory": req.Directory,
	})
}

func (s *Server) handleDirReset(w http.ResponseWriter, r *http.Request) {
	s.dirs.Reset()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Directories reset to defaults",
		"directories": s.dirs.List(),
	})
}

func (s *Server) handleDirClear(w http.ResponseWriter, r *http.Request) {
	s.dirs.Clear()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "All directories cleared",
		"directories": []string{},
	})
}

func (s *Server) handleCatalogBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeFail(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	c, err := s.store.Build(s.dirs.Valid(), req.Force)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "catalog build failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"metadata": c.Metadata,
		"stats":    c.Stats,
	})
}

func (s *Server) handleCatalogDedupe(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Deduplicate()
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "deduplicate failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Catalog deduplicated",
		"metadata": c.Metadata,
		"stats":    c.Stats,
	})
}

func (s *Server) handleCatalogStats(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Load()
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "catalog unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"metadata": c.Metadata,
		"stats":    c.Stats,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := readJSON(r, &req); err != nil || req.Path == "" {
		writeFail(w, http.StatusBadRequest, "path is required")
		return
	}
	writeJSON(w, http.StatusOK, s.sender.Validate(req.Path))
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := readJSON(r, &req); err != nil || req.Path == "" {
		writeFail(w, http.StatusBadRequest, "path is required")
		return
	}
	result := s.sender.Deliver(r.Context(), req.Path, req.Subject)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
		"results": []any{},
	})
}
