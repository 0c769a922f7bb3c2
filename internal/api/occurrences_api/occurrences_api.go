package occurrences_api

import (
	"context"
	"net/http"
	"time"

	"github.com/byTonho/logifix/internal/api/apiutil"
	"github.com/byTonho/logifix/internal/models"
	"github.com/byTonho/logifix/internal/services/board"
	"github.com/byTonho/logifix/internal/services/occurrences"
	"github.com/go-chi/chi/v5"
)

// CarrierLister supplies carrier names for the finished-view search.
type CarrierLister interface {
	List(ctx context.Context) ([]*models.Carrier, error)
}

type OccurrencesAPI struct {
	svc      *occurrences.Service
	board    *board.Board
	carriers CarrierLister
}

func New(svc *occurrences.Service, b *board.Board, carriers CarrierLister) *OccurrencesAPI {
	return &OccurrencesAPI{svc: svc, board: b, carriers: carriers}
}

func (a *OccurrencesAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.list)
	r.Post("/", a.create)
	r.Get("/board", a.boardView)
	r.Get("/finished", a.finished)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", a.get)
		r.Put("/", a.edit)
		r.Delete("/", a.delete)
		r.Post("/status", a.changeStatus)
		r.Post("/finish", a.finish)
		r.Post("/restore", a.restore)
		r.Post("/flags/{flag}", a.toggleFlag)
		r.Put("/resent", a.setResentDetails)
		r.Post("/notes", a.addNote)
		r.Put("/notes/{noteId}", a.editNote)
		r.Post("/seen", a.markSeen)
	})
	return r
}

func (a *OccurrencesAPI) list(w http.ResponseWriter, r *http.Request) {
	occs, err := a.svc.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, occs)
}

func (a *OccurrencesAPI) get(w http.ResponseWriter, r *http.Request) {
	o, err := a.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

func (a *OccurrencesAPI) create(w http.ResponseWriter, r *http.Request) {
	var draft models.OccurrenceDraft
	if err := apiutil.DecodeJSON(r, &draft); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	o, err := a.svc.Create(r.Context(), draft, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, o)
}

func (a *OccurrencesAPI) edit(w http.ResponseWriter, r *http.Request) {
	var patch models.OccurrencePatch
	if err := apiutil.DecodeJSON(r, &patch); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	o, err := a.svc.EditFields(r.Context(), chi.URLParam(r, "id"), patch, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

func (a *OccurrencesAPI) delete(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), chi.URLParam(r, "id"), apiutil.ActorFrom(r.Context())); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusNoContent, nil)
}

func (a *OccurrencesAPI) changeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	o, err := a.svc.ChangeStatus(r.Context(), chi.URLParam(r, "id"), body.Status, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

func (a *OccurrencesAPI) finish(w http.ResponseWriter, r *http.Request) {
	o, err := a.svc.Finish(r.Context(), chi.URLParam(r, "id"), apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

func (a *OccurrencesAPI) restore(w http.ResponseWriter, r *http.Request) {
	o, err := a.svc.Restore(r.Context(), chi.URLParam(r, "id"), apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

func (a *OccurrencesAPI) toggleFlag(w http.ResponseWriter, r *http.Request) {
	o, err := a.svc.ToggleFlag(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "flag"), apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

func (a *OccurrencesAPI) setResentDetails(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ResentCarrierID    *string `json:"resentCarrierId"`
		ResentTrackingCode *string `json:"resentTrackingCode"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	o, err := a.svc.SetResentDetails(r.Context(), chi.URLParam(r, "id"),
		body.ResentCarrierID, body.ResentTrackingCode, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

func (a *OccurrencesAPI) addNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	o, err := a.svc.AddNote(r.Context(), chi.URLParam(r, "id"), body.Text, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, o)
}

func (a *OccurrencesAPI) editNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	o, err := a.svc.EditNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "noteId"),
		body.Text, apiutil.ActorFrom(r.Context()))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, o)
}

// markSeen records the viewer as caught up on the occurrence's notes.
func (a *OccurrencesAPI) markSeen(w http.ResponseWriter, r *http.Request) {
	o, err := a.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	actor := apiutil.ActorFrom(r.Context())
	if err := a.board.MarkSeen(r.Context(), actor.ID, o); err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusNoContent, nil)
}

// BoardResponse is the kanban payload: the filtered columns plus the
// viewer's unread-note counts keyed by occurrence id.
type BoardResponse struct {
	Columns []board.Column `json:"columns"`
	Unread  map[string]int `json:"unread"`
}

func (a *OccurrencesAPI) boardView(w http.ResponseWriter, r *http.Request) {
	occs, err := a.svc.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	filter := board.Filter{
		CarrierID:     r.URL.Query().Get("carrierId"),
		ResponsibleID: r.URL.Query().Get("responsibleId"),
	}
	columns := a.board.Project(occs, filter, time.Now().UTC())

	visible := []*models.Occurrence{}
	for _, col := range columns {
		visible = append(visible, col.Cards...)
	}
	actor := apiutil.ActorFrom(r.Context())
	unread := a.board.UnreadNotes(r.Context(), actor.ID, visible)

	apiutil.WriteJSON(w, http.StatusOK, BoardResponse{Columns: columns, Unread: unread})
}

func (a *OccurrencesAPI) finished(w http.ResponseWriter, r *http.Request) {
	occs, err := a.svc.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	cs, err := a.carriers.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	got := a.board.Finished(occs, cs, r.URL.Query().Get("q"))
	apiutil.WriteJSON(w, http.StatusOK, got)
}
