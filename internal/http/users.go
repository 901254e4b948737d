package httpx

import (
	"net/http"

	"github.com/splax/quill/internal/service/auth"
)

type signupRequest struct {
	Email         string `json:"email" validate:"required,email,max=255"`
	UserName      string `json:"user_name" validate:"required,max=50"`
	Password      string `json:"password" validate:"required,max=72"`
	PasswordCheck string `json:"password_check" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload signupRequest
	if err := r.decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := r.auth.Signup(req.Context(), auth.SignupInput{
		Email:         payload.Email,
		UserName:      payload.UserName,
		Password:      payload.Password,
		PasswordCheck: payload.PasswordCheck,
	})
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user": map[string]any{
			"id":        user.ID,
			"email":     user.Email,
			"user_name": user.UserName,
		},
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload loginRequest
	if err := r.decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	r.setSessionCookie(w, session.Credential(), session.ExpiresIn)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Login successful",
		"user_name":    session.User.UserName,
		"access_token": session.Token,
		"token_type":   "bearer",
		"expires_in":   int(session.ExpiresIn.Seconds()),
	})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	user, ok := currentUser(req)
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":     user.Email,
		"user_name": user.UserName,
	})
}

// handleSignout always succeeds, even without a session.
func (r *Router) handleSignout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	r.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
