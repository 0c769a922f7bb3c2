package dashboard_api

import (
	"net/http"

	"github.com/byTonho/logifix/internal/api/apiutil"
	"github.com/byTonho/logifix/internal/services/carriers"
	"github.com/byTonho/logifix/internal/services/occurrences"
	"github.com/byTonho/logifix/internal/services/stats"
	"github.com/go-chi/chi/v5"
)

type DashboardAPI struct {
	occurrences *occurrences.Service
	carriers    *carriers.Service
}

func New(occs *occurrences.Service, cs *carriers.Service) *DashboardAPI {
	return &DashboardAPI{occurrences: occs, carriers: cs}
}

func (a *DashboardAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.dashboard)
	return r
}

// dashboard computes every aggregate from one snapshot so the KPI row,
// charts and ranking never disagree with each other.
func (a *DashboardAPI) dashboard(w http.ResponseWriter, r *http.Request) {
	occs, err := a.occurrences.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	cs, err := a.carriers.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, stats.BuildDashboard(occs, cs))
}
