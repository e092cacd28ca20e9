package httpd

import (
	"net/http"

	"github.com/RubachokBoss/knowledge-market/internal/models"
)

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.studentService.Join(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, response)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := urlParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	session, err := h.studentService.GetSession(r.Context(), sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

func (h *Handler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := urlParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	if err := h.studentService.LeaveSession(r.Context(), sessionID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Session closed successfully",
	})
}

func (h *Handler) RecordNote(w http.ResponseWriter, r *http.Request) {
	sessionID := urlParam(r, "id")
	topic := urlParam(r, "topic")
	if sessionID == "" || topic == "" {
		writeError(w, http.StatusBadRequest, "Session ID and topic are required")
		return
	}

	var req models.RecordNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.studentService.RecordNote(r.Context(), sessionID, topic, req.Text)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	sessionID := urlParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	assignment, err := h.studentService.CurrentAssignment(r.Context(), sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}
