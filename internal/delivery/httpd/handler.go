package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/models"
	"github.com/RubachokBoss/knowledge-market/internal/service"
)

type Handler struct {
	marketService     service.MarketService
	submissionService service.SubmissionService
	studentService    service.StudentService
	maxImageSize      int64
	logger            zerolog.Logger
}

func NewHandler(
	marketService service.MarketService,
	submissionService service.SubmissionService,
	studentService service.StudentService,
	maxImageSize int64,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		marketService:     marketService,
		submissionService: submissionService,
		studentService:    studentService,
		maxImageSize:      maxImageSize,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/market", func(r chi.Router) {
			r.Post("/", h.OpenMarket)
			r.Get("/", h.GetMarket)
			r.Delete("/", h.CloseMarket)
			r.Post("/phase", h.AdvancePhase)
			r.Post("/round", h.AdvanceRound)
			r.Get("/schedule", h.GetSchedule)
		})

		api.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.Join)
			r.Get("/{id}", h.GetSession)
			r.Delete("/{id}", h.LeaveSession)
			r.Put("/{id}/notes/{topic}", h.RecordNote)
			r.Get("/{id}/assignment", h.GetAssignment)
			r.Post("/{id}/teaching", h.SubmitTeaching)
			r.Post("/{id}/report", h.SubmitReport)
		})

		api.Route("/groups", func(r chi.Router) {
			r.Get("/{group}/submission", h.GetSubmission)
			r.Get("/{group}/image", h.GetTeachingImage)
		})

		api.Get("/rotation", h.GetRotation)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "knowledge-market",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// urlParam returns the decoded chi URL parameter. chi routes on RawPath when
// it is set, and only then is the parameter still escaped.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	value, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return value
}

func getIntQueryParam(r *http.Request, key string) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, false
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}

	return intValue, true
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeSuccessStatus(w, http.StatusOK, data)
}

func writeSuccessStatus(w http.ResponseWriter, status int, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, status, response)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   http.StatusText(http.StatusBadRequest),
			"message": err.Error(),
			"fields":  verr.Fields,
		})
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidAccessCode):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrMarketClosed):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidPhase):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Request timeout")
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
