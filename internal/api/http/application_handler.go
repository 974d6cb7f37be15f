package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/service"
	"ecoloop-backend/internal/storage"
)

const uploadURLTTL = 15 * time.Minute

// ApplicationHandler serves role application endpoints for applicants.
type ApplicationHandler struct {
	applications service.ApplicationService
	documents    storage.DocumentStore
}

func NewApplicationHandler(applications service.ApplicationService, documents storage.DocumentStore) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, documents: documents}
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req service.SubmitApplicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ApplicantID = claims.UserID

	app, err := h.applications.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	apps, err := h.applications.ListMine(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]any{"applications": apps})
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	app, docs, err := h.applications.GetWithDocuments(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if app.ApplicantID != claims.UserID && !hasRole(claims.Roles, domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, "You do not have permission to view this application.")
		return
	}
	writeResult(w, http.StatusOK, map[string]any{
		"application": app,
		"documents":   docs,
	})
}

type uploadURLRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// CreateUploadURL hands back a short-lived URL plus the storage key the
// client should attach to the application.
func (h *ApplicationHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req uploadURLRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, "file_name: file name is required")
		return
	}

	key := storage.NewDocumentKey(claims.UserID, req.FileName)
	url, err := h.documents.GenerateUploadURL(r.Context(), key, req.ContentType, uploadURLTTL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]any{
		"upload_url":  url,
		"storage_key": key,
	})
}

type addDocumentRequest struct {
	FileName    string `json:"file_name"`
	StorageKey  string `json:"storage_key"`
	ContentType string `json:"content_type"`
}

func (h *ApplicationHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc := &domain.RoleApplicationDocument{
		ApplicationID: id,
		FileName:      req.FileName,
		StorageKey:    req.StorageKey,
		ContentType:   req.ContentType,
	}
	if err := h.applications.AddDocument(r.Context(), claims.UserID, doc); err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, doc)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, name+": must be a positive integer")
		return 0, false
	}
	return int32(id), true
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
