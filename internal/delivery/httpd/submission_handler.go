package httpd

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/RubachokBoss/knowledge-market/internal/models"
)

// sessionGroup resolves the group a student session belongs to. Students
// submit on behalf of their own group only.
func (h *Handler) sessionGroup(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := urlParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return "", false
	}

	session, err := h.studentService.GetSession(r.Context(), sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return "", false
	}
	return session.Group, true
}

func (h *Handler) SubmitTeaching(w http.ResponseWriter, r *http.Request) {
	group, ok := h.sessionGroup(w, r)
	if !ok {
		return
	}

	var req models.SubmitTeachingRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.parseTeachingForm(w, r, &req) {
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, err := h.submissionService.SubmitTeachingMaterial(r.Context(), group, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) parseTeachingForm(w http.ResponseWriter, r *http.Request, req *models.SubmitTeachingRequest) bool {
	if h.maxImageSize > 0 {
		// room for the text field and multipart framing
		r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return false
	}

	req.Text = r.FormValue("text")

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image")
		return false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read image")
		return false
	}

	req.Image = content
	req.ContentType = header.Header.Get("Content-Type")
	if req.ContentType == "" || req.ContentType == "application/octet-stream" {
		req.ContentType = http.DetectContentType(content)
	}
	return true
}

func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	group, ok := h.sessionGroup(w, r)
	if !ok {
		return
	}

	var req models.SubmitReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, err := h.submissionService.SubmitReport(r.Context(), group, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	group := urlParam(r, "group")
	if group == "" {
		writeError(w, http.StatusBadRequest, "Group is required")
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), group)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) GetTeachingImage(w http.ResponseWriter, r *http.Request) {
	group := urlParam(r, "group")
	if group == "" {
		writeError(w, http.StatusBadRequest, "Group is required")
		return
	}

	obj, err := h.submissionService.GetTeachingImage(r.Context(), group)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(obj.Data); err != nil {
		h.logger.Warn().Err(err).Str("group", group).Msg("Failed to write teaching image")
	}
}
