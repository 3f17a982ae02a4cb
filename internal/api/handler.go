package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/postforge/postscore/internal/database"
	"github.com/postforge/postscore/internal/metrics"
	"github.com/postforge/postscore/internal/models"
	"github.com/postforge/postscore/internal/scoring"
	"github.com/postforge/postscore/internal/tracing"
)

// QueueClient enqueues background hybrid jobs.
type QueueClient interface {
	EnqueueHybridAnalyze(ctx context.Context, analysisID, text string, params *models.AdvancedParams) (string, error)
	EnqueueHybridCompare(ctx context.Context, comparisonID, textA, textB string, params *models.AdvancedParams) (string, error)
}

// Handler handles HTTP requests.
type Handler struct {
	db          *database.DB
	engine      *scoring.Engine
	queueClient QueueClient
	metrics     *metrics.Metrics
	mux         *http.ServeMux
}

// NewHandler creates the API handler with CORS support and the metrics
// endpoint.
func NewHandler(db *database.DB, engine *scoring.Engine, queueClient QueueClient, m *metrics.Metrics) http.Handler {
	h := &Handler{
		db:          db,
		engine:      engine,
		queueClient: queueClient,
		metrics:     m,
		mux:         http.NewServeMux(),
	}
	h.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(h.mux)
}

func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler())
	h.mux.HandleFunc("/health", h.handleHealth)
	h.mux.HandleFunc("/api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("/api/compare", h.handleCompare)
	h.mux.HandleFunc("/api/suggestions", h.handleSuggestions)
	h.mux.HandleFunc("/api/timeseries", h.handleTimeSeries)
	h.mux.HandleFunc("/api/hybrid", h.handleHybridAnalyze)
	h.mux.HandleFunc("/api/hybrid/compare", h.handleHybridCompare)
	h.mux.HandleFunc("/api/jobs/", h.handleJobStatus)
	h.mux.HandleFunc("/api/analyses", h.handleListAnalyses)
	h.mux.HandleFunc("/api/analyses/", h.handleAnalysisOperations)
}

// handleHealth handles health check requests.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

type analyzeRequest struct {
	Text   string                 `json:"text"`
	Params *models.AdvancedParams `json:"params,omitempty"`
}

// handleAnalyze scores one post synchronously.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.Bool("params.present", req.Params != nil))

	postMetrics, features := h.engine.ScoreWithFeatures(req.Text, req.Params)
	h.metrics.AnalysesTotal.WithLabelValues(string(h.engine.Profile())).Inc()

	respondJSON(w, map[string]any{
		"metrics":  postMetrics,
		"features": features,
		"profile":  h.engine.Profile(),
	}, http.StatusOK)
}

type compareRequest struct {
	TextA  string                 `json:"text_a"`
	TextB  string                 `json:"text_b"`
	Params *models.AdvancedParams `json:"params,omitempty"`
}

// handleCompare ranks two drafts synchronously.
func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text_a.length", len(req.TextA)),
		attribute.Int("text_b.length", len(req.TextB)))

	result, metricsA, metricsB := h.engine.CompareWithMetrics(req.TextA, req.TextB, req.Params)
	h.metrics.ComparisonsTotal.Inc()

	respondJSON(w, map[string]any{
		"result":    result,
		"metrics_a": metricsA,
		"metrics_b": metricsB,
	}, http.StatusOK)
}

// handleSuggestions generates improvement suggestions.
func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.metrics.SuggestionsTotal.Inc()
	respondJSON(w, map[string]any{
		"suggestions": h.engine.Suggestions(req.Text),
	}, http.StatusOK)
}

// handleTimeSeries synthesizes the hour-by-hour engagement curve.
func (h *Handler) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text   string                 `json:"text"`
		Hours  int                    `json:"hours,omitempty"`
		Params *models.AdvancedParams `json:"params,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	respondJSON(w, map[string]any{
		"points": h.engine.TimeSeries(req.Text, req.Hours, req.Params),
	}, http.StatusOK)
}

// handleHybridAnalyze queues an AI-augmented analysis and returns the
// job ID immediately.
func (h *Handler) handleHybridAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, "Text field is required", http.StatusBadRequest)
		return
	}

	analysisID := uuid.NewString()
	if err := h.db.CreateHybridAnalysis(analysisID, req.Text); err != nil {
		respondError(w, fmt.Sprintf("Failed to create analysis: %v", err), http.StatusInternalServerError)
		return
	}

	taskID, err := h.queueClient.EnqueueHybridAnalyze(r.Context(), analysisID, req.Text, req.Params)
	if err != nil {
		respondError(w, fmt.Sprintf("Failed to enqueue analysis: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{
		"job_id":  analysisID,
		"task_id": taskID,
		"status":  models.JobQueued,
	}, http.StatusAccepted)
}

// handleHybridCompare queues an AI-augmented comparison.
func (h *Handler) handleHybridCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TextA) == "" || strings.TrimSpace(req.TextB) == "" {
		respondError(w, "Both text_a and text_b are required", http.StatusBadRequest)
		return
	}

	comparisonID := uuid.NewString()
	if err := h.db.CreateComparison(comparisonID, req.TextA, req.TextB); err != nil {
		respondError(w, fmt.Sprintf("Failed to create comparison: %v", err), http.StatusInternalServerError)
		return
	}

	taskID, err := h.queueClient.EnqueueHybridCompare(r.Context(), comparisonID, req.TextA, req.TextB, req.Params)
	if err != nil {
		respondError(w, fmt.Sprintf("Failed to enqueue comparison: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{
		"job_id":  comparisonID,
		"task_id": taskID,
		"status":  models.JobQueued,
	}, http.StatusAccepted)
}

// handleJobStatus reports a queued job's state; jobs may be analyses or
// comparisons, so both tables are consulted.
func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if idx := strings.Index(jobID, "/"); idx != -1 {
		jobID = jobID[:idx]
	}
	if jobID == "" {
		respondError(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	analysis, err := h.db.GetHybridAnalysis(jobID)
	if err == nil {
		response := map[string]any{
			"job_id":     jobID,
			"type":       "analysis",
			"status":     analysis.Status,
			"created_at": analysis.CreatedAt,
			"updated_at": analysis.UpdatedAt,
		}
		if analysis.Result != nil {
			response["result"] = analysis.Result
		}
		if analysis.LastError != "" {
			response["last_error"] = analysis.LastError
		}
		respondJSON(w, response, http.StatusOK)
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	comparison, err := h.db.GetComparison(jobID)
	if err == nil {
		response := map[string]any{
			"job_id":     jobID,
			"type":       "comparison",
			"status":     comparison.Status,
			"created_at": comparison.CreatedAt,
			"updated_at": comparison.UpdatedAt,
		}
		if comparison.Result != nil {
			response["result"] = comparison.Result
			response["metrics_a"] = comparison.MetricsA
			response["metrics_b"] = comparison.MetricsB
		}
		if comparison.LastError != "" {
			response["last_error"] = comparison.LastError
		}
		respondJSON(w, response, http.StatusOK)
		return
	}
	if errors.Is(err, database.ErrNotFound) {
		respondJSON(w, map[string]any{
			"job_id": jobID,
			"status": "not_found",
		}, http.StatusNotFound)
		return
	}
	respondError(w, err.Error(), http.StatusInternalServerError)
}

// handleListAnalyses lists stored hybrid analyses with pagination and an
// optional analysis-method filter.
func (h *Handler) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	method := r.URL.Query().Get("method")

	analyses, err := h.db.ListHybridAnalyses(method, limit, offset)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if analyses == nil {
		analyses = []*models.HybridAnalysis{}
	}
	respondJSON(w, analyses, http.StatusOK)
}

// handleAnalysisOperations handles GET and DELETE for one stored analysis.
func (h *Handler) handleAnalysisOperations(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	if id == "" {
		respondError(w, "Analysis ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		analysis, err := h.db.GetHybridAnalysis(id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(w, "analysis not found", http.StatusNotFound)
			} else {
				respondError(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		respondJSON(w, analysis, http.StatusOK)
	case http.MethodDelete:
		if err := h.db.DeleteHybridAnalysis(id); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(w, "analysis not found", http.StatusNotFound)
			} else {
				respondError(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
