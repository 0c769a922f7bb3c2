package carriers_api

import (
	"net/http"

	"github.com/byTonho/logifix/internal/api/apiutil"
	"github.com/byTonho/logifix/internal/services/carriers"
	"github.com/go-chi/chi/v5"
)

type CarriersAPI struct {
	svc *carriers.Service
}

func New(svc *carriers.Service) *CarriersAPI {
	return &CarriersAPI{svc: svc}
}

// Routes: reads are open to any signed-in user, writes are Master only.
func (a *CarriersAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.list)
	r.Get("/{id}", a.get)
	r.Group(func(r chi.Router) {
		r.Use(apiutil.RequireMaster)
		r.Post("/", a.create)
		r.Put("/{id}", a.update)
		r.Delete("/{id}", a.delete)
	})
	return r
}

func (a *CarriersAPI) list(w http.ResponseWriter, r *http.Request) {
	cs, err := a.svc.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, cs)
}

func (a *CarriersAPI) get(w http.ResponseWriter, r *http.Request) {
	c, err := a.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, c)
}

func (a *CarriersAPI) create(w http.ResponseWriter, r *http.Request) {
	var draft carriers.Draft
	if err := apiutil.DecodeJSON(r, &draft); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	c, err := a.svc.Create(r.Context(), draft, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, c)
}

func (a *CarriersAPI) update(w http.ResponseWriter, r *http.Request) {
	var draft carriers.Draft
	if err := apiutil.DecodeJSON(r, &draft); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	c, err := a.svc.Update(r.Context(), chi.URLParam(r, "id"), draft, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, c)
}

func (a *CarriersAPI) delete(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), chi.URLParam(r, "id"), apiutil.ActorFrom(r.Context())); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusNoContent, nil)
}
