package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"nodereg/internal/auth"
	"nodereg/internal/logging"
)

// LoginRecorder counts login outcomes
type LoginRecorder interface {
	RecordLogin(success bool)
}

// AuthHandler handles login requests
type AuthHandler struct {
	auth     *auth.Authenticator
	logger   logrus.FieldLogger
	recorder LoginRecorder
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(a *auth.Authenticator, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: a, logger: logger}
}

// SetRecorder sets the login counter
func (h *AuthHandler) SetRecorder(r LoginRecorder) {
	h.recorder = r
}

// loginRequest is the body of POST /login
type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// LoginResponse carries the token on success. On failure Token is false.
type LoginResponse struct {
	Success bool        `json:"success"`
	Token   interface{} `json:"token"`
}

// Login checks credentials and issues a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) || req.Username == nil || req.Password == nil {
		writeMessage(w, h.logger, MsgMissingFields, http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(*req.Username, *req.Password)
	if h.recorder != nil {
		h.recorder.RecordLogin(err == nil)
	}
	if err != nil {
		entry := logging.FromContext(r.Context(), h.logger).WithField("username", *req.Username)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			entry.Info("Login rejected")
		} else {
			entry.WithError(err).Error("Login failed")
		}
		writeJSON(w, h.logger, LoginResponse{Success: false, Token: false}, http.StatusOK)
		return
	}

	writeJSON(w, h.logger, LoginResponse{Success: true, Token: token}, http.StatusOK)
}
