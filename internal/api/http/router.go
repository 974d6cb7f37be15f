package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/security"
	"ecoloop-backend/internal/service"
	"ecoloop-backend/internal/storage"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Identity     service.IdentityService
	Applications service.ApplicationService
	Admin        service.AdminService
	Documents    storage.DocumentStore
	Tokens       security.TokenManager
	MaxFileBytes int64
}

// NewRouter assembles the full API route table.
func NewRouter(cfg RouterConfig) *mux.Router {
	auth := NewAuthHandler(cfg.Identity)
	applications := NewApplicationHandler(cfg.Applications, cfg.Documents)
	admin := NewAdminHandler(cfg.Applications, cfg.Admin)
	documents := NewDocumentHandler(cfg.Documents, cfg.MaxFileBytes)

	r := mux.NewRouter()
	r.Use(RequestLogging)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeResult(w, http.StatusOK, map[string]any{"status": "ok"})
	}).Methods(http.MethodGet)

	// Public identity endpoints.
	api.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-otp", auth.VerifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/password-reset/request", auth.RequestPasswordReset).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", auth.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)

	// Document transfer endpoints backed by the local store's URLs.
	api.HandleFunc("/upload/{token}", documents.Upload).Methods(http.MethodPut)
	api.HandleFunc("/files/{key}", documents.Download).Methods(http.MethodGet)

	// Applicant endpoints.
	authed := api.NewRoute().Subrouter()
	authed.Use(Authenticate(cfg.Tokens))
	authed.HandleFunc("/applications", applications.Submit).Methods(http.MethodPost)
	authed.HandleFunc("/applications/mine", applications.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/applications/upload-url", applications.CreateUploadURL).Methods(http.MethodPost)
	authed.HandleFunc("/applications/{id}", applications.Get).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id}/documents", applications.AddDocument).Methods(http.MethodPost)

	// Admin endpoints.
	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(Authenticate(cfg.Tokens), RequireRole(domain.RoleAdmin))
	adminRoutes.HandleFunc("/applications", admin.ListApplications).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/applications/{id}/review", admin.Review).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/users/{id}/blocked", admin.SetUserBlocked).Methods(http.MethodPut)
	adminRoutes.HandleFunc("/activity-log", admin.ListActivityLog).Methods(http.MethodGet)

	return r
}
