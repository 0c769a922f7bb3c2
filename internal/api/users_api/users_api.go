package users_api

import (
	"net/http"

	"github.com/byTonho/logifix/internal/api/apiutil"
	"github.com/byTonho/logifix/internal/services/users"
	"github.com/go-chi/chi/v5"
)

type UsersAPI struct {
	svc *users.Service
}

func New(svc *users.Service) *UsersAPI {
	return &UsersAPI{svc: svc}
}

// Routes: the listing stays open so responsible-user pickers can render;
// account management is Master only.
func (a *UsersAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.list)
	r.Group(func(r chi.Router) {
		r.Use(apiutil.RequireMaster)
		r.Get("/{id}", a.get)
		r.Post("/", a.create)
		r.Put("/{id}", a.update)
		r.Delete("/{id}", a.delete)
	})
	return r
}

func (a *UsersAPI) list(w http.ResponseWriter, r *http.Request) {
	us, err := a.svc.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, us)
}

func (a *UsersAPI) get(w http.ResponseWriter, r *http.Request) {
	u, err := a.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, u)
}

func (a *UsersAPI) create(w http.ResponseWriter, r *http.Request) {
	var draft users.Draft
	if err := apiutil.DecodeJSON(r, &draft); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	u, err := a.svc.Create(r.Context(), draft, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, u)
}

func (a *UsersAPI) update(w http.ResponseWriter, r *http.Request) {
	var patch users.Patch
	if err := apiutil.DecodeJSON(r, &patch); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	u, err := a.svc.Update(r.Context(), chi.URLParam(r, "id"), patch, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, u)
}

func (a *UsersAPI) delete(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), chi.URLParam(r, "id"), apiutil.ActorFrom(r.Context())); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusNoContent, nil)
}
