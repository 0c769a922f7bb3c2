package audit_api

import (
	"net/http"
	"strconv"

	"github.com/byTonho/logifix/internal/api/apiutil"
	"github.com/byTonho/logifix/internal/services/audit"
	"github.com/go-chi/chi/v5"
)

type AuditAPI struct {
	svc *audit.Service
}

func New(svc *audit.Service) *AuditAPI {
	return &AuditAPI{svc: svc}
}

// Routes: the audit trail is Master only.
func (a *AuditAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(apiutil.RequireMaster)
	r.Get("/", a.list)
	return r
}

func (a *AuditAPI) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := a.svc.List(r.Context(), limit)
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, logs)
}
