package markets

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"marketdata-backend/lib/serviceutil"
)

// NewHandler binds the service to its http surface. Every route except
// /health sits behind the bearer check; an empty accessToken leaves the api
// open, which is the development default.
func NewHandler(service *Service, accessToken string) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /datos", service.handleGetSnapshot)
	api.HandleFunc("GET /datos/resume", service.handleGetSummary)
	api.HandleFunc("POST /scrape", service.handleScrape)
	api.HandleFunc("GET /sources", service.handleSources)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", service.handleHealth)
	root.Handle("/", serviceutil.RequireBearer(accessToken, api))
	return root
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.Error("encode response", "err", err)
	}
}

func (s *Service) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("nocache") == "1"
	writeJSON(w, http.StatusOK, s.GetSnapshot(r.Context(), force))
}

func (s *Service) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("nocache") == "1"
	writeJSON(w, http.StatusOK, s.GetCategorySummary(r.Context(), force))
}

type scrapeRequest struct {
	Sources    []string `json:"sources"`
	Categories []string `json:"categories"`
}

func (s *Service) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if r.ContentLength != 0 {
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.RunScrape(r.Context(), req.Sources, req.Categories))
}

func (s *Service) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": s.Sources(),
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	hasData, lastUpdated := s.HasData()
	health := map[string]any{
		"status":   "ok",
		"has_data": hasData,
	}
	if !lastUpdated.IsZero() {
		health["last_updated"] = lastUpdated.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, health)
}
