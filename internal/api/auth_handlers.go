package api

import (
	"net/http"

	"github.com/hackgods/healthcare-portal/internal/auth"
	"github.com/hackgods/healthcare-portal/internal/user"
)

type authResponse struct {
	Message string       `json:"message"`
	User    user.Summary `json:"user"`
	Token   string       `json:"token"`
}

type twoFactorRequiredResponse struct {
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	Message           string `json:"message"`
}

type twoFactorSetupResponse struct {
	Secret  string `json:"secret"`
	QRCode  string `json:"qrCode"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// identity returns the caller set by auth.Authenticate.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

func registerHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req user.RegisterInput
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Register(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{
			Message: "User registered successfully",
			User:    res.User,
			Token:   res.Token,
		})
	}
}

func loginHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req user.LoginInput
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Login(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if res.RequiresTwoFactor {
			writeJSON(w, http.StatusOK, twoFactorRequiredResponse{
				RequiresTwoFactor: true,
				Message:           "Two-factor authentication required",
			})
			return
		}

		writeJSON(w, http.StatusOK, authResponse{
			Message: "Login successful",
			User:    res.User,
			Token:   res.Token,
		})
	}
}

func setupTwoFactorHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup, err := svc.SetupTwoFactor(r.Context(), identity(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, twoFactorSetupResponse{
			Secret:  setup.Secret,
			QRCode:  setup.QRCode,
			Message: "Two-factor authentication setup complete",
		})
	}
}

func disableTwoFactorHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DisableTwoFactor(r.Context(), identity(r).ID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Two-factor authentication disabled"})
	}
}
