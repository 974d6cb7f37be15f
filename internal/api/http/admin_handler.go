package http

import (
	"net/http"
	"strconv"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/service"
)

// AdminHandler serves the review and moderation endpoints. The router
// guards every route here with RequireRole(ADMIN).
type AdminHandler struct {
	applications service.ApplicationService
	admin        service.AdminService
}

func NewAdminHandler(applications service.ApplicationService, admin service.AdminService) *AdminHandler {
	return &AdminHandler{applications: applications, admin: admin}
}

func (h *AdminHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	status := domain.ApplicationStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ApplicationStatusPending
	}

	page, pageSize := pagination(r)
	apps, total, err := h.applications.ListByStatus(r.Context(), status, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

type reviewRequest struct {
	Action     service.ReviewAction `json:"action"`
	AdminNotes string               `json:"admin_notes"`
}

func (h *AdminHandler) Review(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	app, err := h.applications.Review(r.Context(), id, claims.UserID, req.Action, req.AdminNotes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, app)
}

type blockRequest struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

func (h *AdminHandler) SetUserBlocked(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req blockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.admin.SetUserBlocked(r.Context(), claims.UserID, userID, req.Blocked, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}

	message := "User unblocked."
	if req.Blocked {
		message = "User blocked."
	}
	writeResult(w, http.StatusOK, map[string]any{"message": message})
}

func (h *AdminHandler) ListActivityLog(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	entries, total, err := h.admin.ListActivityLog(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]any{
		"entries":   entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func pagination(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			page = int32(v)
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 && v <= 100 {
			pageSize = int32(v)
		}
	}
	return page, pageSize
}
