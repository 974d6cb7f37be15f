package http

import (
	"net/http"

	"ecoloop-backend/internal/service"
)

// AuthHandler serves the identity lifecycle endpoints.
type AuthHandler struct {
	identity service.IdentityService
}

func NewAuthHandler(identity service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegistrationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.identity.RequestRegistration(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeResult(w, http.StatusAccepted, map[string]any{
		"message":         "An OTP has been sent to your email. Verify it to complete registration.",
		"registration_id": receipt.RegistrationID,
		"email":           receipt.Email,
	})
}

type loginRequest struct {
	Email    string              `json:"email"`
	Method   service.LoginMethod `json:"method"`
	Password string              `json:"password,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Method == "" {
		req.Method = service.LoginMethodPassword
	}

	result, err := h.identity.Login(r.Context(), req.Email, req.Method, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if result.OTPSent {
		writeResult(w, http.StatusAccepted, map[string]any{
			"message":  "An OTP has been sent to your email.",
			"otp_sent": true,
		})
		return
	}
	writeResult(w, http.StatusOK, result)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.identity.VerifyOTP(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, result)
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.identity.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	// Same response whether or not the email maps to an account.
	writeResult(w, http.StatusAccepted, map[string]any{
		"message": "If an account exists for this email, an OTP has been sent.",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := h.identity.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, pair)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.identity.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]any{
		"message": "Logged out successfully.",
	})
}
