package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/splax/quill/internal/domain"
)

type authContextKey string

const contextKeyUser authContextKey = "quill-user"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth resolves the session cookie to a user before invoking the handler.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// ensureAuth validates the access_token cookie and enriches the context.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, bool) {
	cookie, err := req.Cookie(sessionCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return req.Context(), false
	}
	user, err := r.auth.Resolve(req.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			r.logger.Warn("session rejected", "path", req.URL.Path)
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return req.Context(), false
		}
		writeServiceError(w, r.logger, req, err)
		return req.Context(), false
	}
	return context.WithValue(req.Context(), contextKeyUser, user), true
}

// currentUser returns the user resolved by requireAuth.
func currentUser(req *http.Request) (*domain.User, bool) {
	return userFromContext(req.Context())
}

func userFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(contextKeyUser).(*domain.User)
	return user, ok && user != nil
}
