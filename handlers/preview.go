package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"magnetview/messaging"
	"magnetview/services/preview"
	"magnetview/services/resolve"
)

const maxRequestBytes = 64 << 10

// PreviewHandler exposes the resolution pipeline to the chat platform's
// webhook push.
type PreviewHandler struct {
	svc *preview.Service
}

func NewPreviewHandler(svc *preview.Service) *PreviewHandler {
	return &PreviewHandler{svc: svc}
}

func (h *PreviewHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/preview", h.handlePreview).Methods(http.MethodPost)
}

type previewResponse struct {
	Messages []messaging.Outbound `json:"messages"`
}

func (h *PreviewHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var event messaging.Event
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	messages, err := h.svc.Handle(r.Context(), event)
	if errors.Is(err, resolve.ErrNoMagnet) {
		writeError(w, http.StatusBadRequest, "no magnet link in message")
		return
	}
	if err != nil {
		log.Printf("[handlers] preview failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{Messages: messages})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[handlers] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
