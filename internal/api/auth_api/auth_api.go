package auth_api

import (
	"net/http"

	"github.com/byTonho/logifix/internal/api/apiutil"
	"github.com/byTonho/logifix/internal/services/auth"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type AuthAPI struct {
	svc *auth.Service
}

func New(svc *auth.Service) *AuthAPI {
	return &AuthAPI{svc: svc}
}

// Routes mounts login publicly; /me reports the authenticated actor, so
// only it goes through the authenticator.
func (a *AuthAPI) Routes(authenticated func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", a.login)
	r.With(authenticated).Get("/me", a.me)
	return r
}

func (a *AuthAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, err)
		return
	}

	session, err := a.svc.Login(r.Context(), body.Email, body.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		apiutil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrTooManyAttempts):
		apiutil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	case err != nil:
		apiutil.WriteError(w, err)
	default:
		apiutil.WriteJSON(w, http.StatusOK, session)
	}
}

func (a *AuthAPI) me(w http.ResponseWriter, r *http.Request) {
	apiutil.WriteJSON(w, http.StatusOK, apiutil.ActorFrom(r.Context()))
}
