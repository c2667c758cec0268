package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"climate-dashboard/internal/models"
	"climate-dashboard/internal/repository"
	"climate-dashboard/internal/services"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// ClimateHandler handles the dashboard data API endpoints
type ClimateHandler struct {
	simService  *services.SimulationService
	caseService *services.CaseStudyService
	archive     *services.ArchiveService
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// NewClimateHandler creates a new climate handler.
// archive may be nil when the run archive is disabled.
func NewClimateHandler(
	simService *services.SimulationService,
	caseService *services.CaseStudyService,
	archive *services.ArchiveService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ClimateHandler {
	return &ClimateHandler{
		simService:  simService,
		caseService: caseService,
		archive:     archive,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// GetSeaLevel handles GET /api/sea-level
func (h *ClimateHandler) GetSeaLevel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	seed, err := parseOptionalInt64(r, "seed")
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	until, err := parseOptionalInt(r, "until")
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	series, err := h.simService.SeaLevel(ctx, services.SeriesRequest{Seed: seed, UntilYear: until})
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, series, http.StatusOK)
}

// GetAnomalyField handles GET /api/anomalies/field
func (h *ClimateHandler) GetAnomalyField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := parseOptionalInt(r, "year")
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	if year == nil {
		h.sendError(w, r, "year is required", http.StatusBadRequest)
		return
	}

	req := services.FieldRequest{Year: *year}

	if s := r.URL.Query().Get("policy"); s != "" {
		policy, err := models.ParseFieldPolicy(s)
		if err != nil {
			h.sendServiceError(w, r, err)
			return
		}
		req.Policy = &policy
	}

	if req.Seed, err = parseOptionalInt64(r, "seed"); err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	field, err := h.simService.AnomalyField(ctx, req)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, field, http.StatusOK)
}

// GetAnomalyGrid handles GET /api/anomalies/grid
func (h *ClimateHandler) GetAnomalyGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := services.GridRequest{Hemisphere: models.Global}

	if s := r.URL.Query().Get("hemisphere"); s != "" {
		hemisphere, err := models.ParseHemisphere(s)
		if err != nil {
			h.sendServiceError(w, r, err)
			return
		}
		req.Hemisphere = hemisphere
	}

	if s := r.URL.Query().Get("scale"); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		if err != nil {
			h.sendError(w, r, "invalid scale, expected number", http.StatusBadRequest)
			return
		}
		req.Scale = &scale
	}

	var err error
	if req.Seed, err = parseOptionalInt64(r, "seed"); err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	grid, err := h.simService.AnomalyGrid(ctx, req)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, grid, http.StatusOK)
}

// ListCaseStudies handles GET /api/case-studies
func (h *ClimateHandler) ListCaseStudies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := map[string]interface{}{
		"regions": h.caseService.Regions(ctx),
		"data":    h.caseService.List(ctx),
	}

	h.sendJSON(w, r, response, http.StatusOK)
}

// GetCaseStudy handles GET /api/case-studies/{region}
func (h *ClimateHandler) GetCaseStudy(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]

	entry, err := h.caseService.Get(r.Context(), region)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, entry, http.StatusOK)
}

// GetCacheStats handles GET /api/cache
func (h *ClimateHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.simService.CacheStats()

	h.sendJSON(w, r, map[string]interface{}{
		"entries": stats.Entries,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	}, http.StatusOK)
}

// ClearCache handles DELETE /api/cache
func (h *ClimateHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed := h.simService.ClearCache(r.Context())

	h.sendJSON(w, r, map[string]int{"removed": removed}, http.StatusOK)
}

// CreateRun handles POST /api/runs
func (h *ClimateHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	if !h.archiveEnabled(w, r) {
		return
	}

	var req services.ArchiveRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	run, err := h.archive.Archive(r.Context(), req)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, run, http.StatusCreated)
}

// ListRuns handles GET /api/runs
func (h *ClimateHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if !h.archiveEnabled(w, r) {
		return
	}

	page, limit, err := parsePagination(r)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	filter := repository.RunFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if s := r.URL.Query().Get("kind"); s != "" {
		kind, err := models.ParseRunKind(s)
		if err != nil {
			h.sendServiceError(w, r, err)
			return
		}
		filter.Kind = &kind
	}

	runs, total, err := h.archive.List(r.Context(), filter)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, PaginatedResponse{
		Data:       runs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, http.StatusOK)
}

// GetRun handles GET /api/runs/{id}
func (h *ClimateHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if !h.archiveEnabled(w, r) {
		return
	}

	run, err := h.archive.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, r, run, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ClimateHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"archive":   "disabled",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.archive != nil {
		status["archive"] = "up"
		if err := h.archive.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_DEGRADED] Archive unreachable", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "degraded"
			status["archive"] = "down"
			code = http.StatusServiceUnavailable
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, r, status, code)
}

func (h *ClimateHandler) archiveEnabled(w http.ResponseWriter, r *http.Request) bool {
	if h.archive == nil {
		h.sendError(w, r, "run archive is disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// sendJSON sends a JSON response
func (h *ClimateHandler) sendJSON(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	h.metrics.RecordAPIRequest(routeTemplate(r), r.Method, strconv.Itoa(statusCode))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(r.Context(), "[API_ENCODE_ERROR] Failed to write response", logging.Fields{
			"path": r.URL.Path,
		}, err)
	}
}

// sendError sends an error response
func (h *ClimateHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, r, response, statusCode)
}

// sendServiceError maps service errors onto HTTP status codes
func (h *ClimateHandler) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *models.ValidationError
	var notFoundErr *repository.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		h.metrics.RecordAPIError("validation_error", routeTemplate(r))
		h.sendError(w, r, validationErr.Message, http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		h.metrics.RecordAPIError("not_found", routeTemplate(r))
		h.sendError(w, r, notFoundErr.Error(), http.StatusNotFound)
	default:
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"path":   r.URL.Path,
			"method": r.Method,
		}, err)
		h.metrics.RecordAPIError("internal_error", routeTemplate(r))
		h.sendError(w, r, "internal server error", http.StatusInternalServerError)
	}
}

// RegisterRoutes registers all API routes
func (h *ClimateHandler) RegisterRoutes(router *mux.Router) {
	router.Use(h.requestMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sea-level", h.GetSeaLevel).Methods("GET")
	api.HandleFunc("/anomalies/field", h.GetAnomalyField).Methods("GET")
	api.HandleFunc("/anomalies/grid", h.GetAnomalyGrid).Methods("GET")
	api.HandleFunc("/case-studies", h.ListCaseStudies).Methods("GET")
	api.HandleFunc("/case-studies/{region}", h.GetCaseStudy).Methods("GET")
	api.HandleFunc("/cache", h.GetCacheStats).Methods("GET")
	api.HandleFunc("/cache", h.ClearCache).Methods("DELETE")
	api.HandleFunc("/runs", h.CreateRun).Methods("POST")
	api.HandleFunc("/runs", h.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", h.GetRun).Methods("GET")
	api.HandleFunc("/docs", SwaggerUI).Methods("GET")
	api.HandleFunc("/docs/openapi.json", OpenAPISpec).Methods("GET")

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

// requestMiddleware tags the request with an ID and records its duration
func (h *ClimateHandler) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))

		h.metrics.APIRequestDuration.WithLabelValues(routeTemplate(r)).Observe(time.Since(start).Seconds())
	})
}

// routeTemplate returns the matched mux path template, falling back to the raw path
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

func parseOptionalInt(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, &models.ValidationError{
			Field:   name,
			Value:   s,
			Message: "invalid " + name + ", expected integer",
		}
	}
	return &v, nil
}

func parseOptionalInt64(r *http.Request, name string) (*int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, &models.ValidationError{
			Field:   name,
			Value:   s,
			Message: "invalid " + name + ", expected integer",
		}
	}
	return &v, nil
}

// maxPage keeps (page-1)*limit well inside int for any accepted limit
const maxPage = 1_000_000

// parsePagination reads page and limit with the same defaults as the other list endpoints
func parsePagination(r *http.Request) (page, limit int, err error) {
	page, limit = 1, 100

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}
	if page > maxPage {
		return 0, 0, &models.ValidationError{
			Field:   "page",
			Value:   strconv.Itoa(page),
			Message: fmt.Sprintf("invalid page, expected integer between 1 and %d", maxPage),
		}
	}
	return page, limit, nil
}
