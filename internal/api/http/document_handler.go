package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/storage"
)

// DocumentHandler backs the URLs the local document store hands out.
type DocumentHandler struct {
	documents storage.DocumentStore
	maxBytes  int64
}

func NewDocumentHandler(documents storage.DocumentStore, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{documents: documents, maxBytes: maxBytes}
}

// Upload accepts the PUT generated by GenerateUploadURL and saves the body
// under the key carried in the query string.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key query parameter is required.")
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	defer body.Close()

	if err := h.documents.SaveFile(key, body); err != nil {
		logger.Error("Failed to save uploaded document", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file.")
		return
	}
	writeResult(w, http.StatusOK, map[string]any{"storage_key": key})
}

// Download streams a stored document back to the caller.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	exists, size, err := h.documents.FileExists(r.Context(), key)
	if err != nil {
		logger.Error("Failed to stat document", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "File not found.")
		return
	}

	f, err := h.documents.ReadFile(key)
	if err != nil {
		logger.Error("Failed to open document", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	if _, err := io.Copy(w, f); err != nil {
		logger.Warn("Document transfer interrupted", "key", key, "error", err)
	}
}
