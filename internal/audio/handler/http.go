// Package handler exposes audio upload and listing over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"soundvault/internal/audio/service"
	"soundvault/internal/server/httpx"
	"soundvault/internal/server/middleware"
)

// maxMemory is how much of a multipart upload is buffered in memory before spilling to temp files.
const maxMemory = 32 << 20

// Audio is the part of the audio service the handler needs.
type Audio interface {
	Upload(ctx context.Context, userID int64, filenameCustom string, file service.Upload) (*service.UploadResult, error)
	List(ctx context.Context, userID int64) (*service.Listing, error)
}

// Handler serves /audio-files.
type Handler struct {
	audio  Audio
	logger *zap.Logger
}

// NewHandler returns an audio handler. A nil logger uses the global zap logger.
func NewHandler(audio Audio, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{audio: audio, logger: logger}
}

// Register mounts the routes on r. The routes expect an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/audio-files", h.Upload)
	r.Get("/audio-files", h.List)
}

// Upload stores the multipart "file" part under the name given in the "filename" form field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "multipart form with file and filename is required")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	res, err := h.audio.Upload(r.Context(), userID, r.FormValue("filename"), service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

// List returns the caller's files.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
		return
	}
	res, err := h.audio.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBadRequest):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedMedia):
		httpx.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		h.logger.Error("audio request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.MsgInternal)
	}
}
