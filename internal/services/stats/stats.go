package stats

import (
	"sort"

	"github.com/byTonho/logifix/internal/models"
)

// IsActive reports whether an occurrence still demands work: a
// non-terminal status with no finish stamp. Both conditions are checked
// so a stale finishedAt on a reopened record cannot hide it.
func IsActive(o *models.Occurrence) bool {
	return !models.IsTerminalStatus(o.Status) && o.FinishedAt == nil
}

// FinancialSummary totals the money at stake on active occurrences.
// Disputes count the freight value; losses and damages count the full
// invoice value.
type FinancialSummary struct {
	DisputeTotal float64 `json:"disputeTotal"`
	LostTotal    float64 `json:"lostTotal"`
	DamageTotal  float64 `json:"damageTotal"`
}

func Financial(occs []*models.Occurrence) FinancialSummary {
	var s FinancialSummary
	for _, o := range occs {
		if !IsActive(o) {
			continue
		}
		if o.FlagInvoiceDispute {
			s.DisputeTotal += o.FreightValue
		}
		if o.FlagLostReturn {
			s.LostTotal += o.InvoiceValue
		}
		if o.FlagDamage {
			s.DamageTotal += o.InvoiceValue
		}
	}
	return s
}

// CarrierCount holds occurrence totals for one carrier.
type CarrierCount struct {
	CarrierID   string `json:"carrierId"`
	CarrierName string `json:"carrierName"`
	Total       int    `json:"total"`
	Active      int    `json:"active"`
}

// PerCarrier counts occurrences per carrier in the given carrier order.
// Occurrences pointing at a deleted carrier are not represented.
func PerCarrier(occs []*models.Occurrence, carriers []*models.Carrier) []CarrierCount {
	out := make([]CarrierCount, len(carriers))
	index := make(map[string]int, len(carriers))
	for i, c := range carriers {
		out[i] = CarrierCount{CarrierID: c.ID, CarrierName: c.Name}
		index[c.ID] = i
	}
	for _, o := range occs {
		i, ok := index[o.CarrierID]
		if !ok {
			continue
		}
		out[i].Total++
		if IsActive(o) {
			out[i].Active++
		}
	}
	return out
}

// StatusCount is one slice of the per-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// PerStatus counts every known status, zero-filled, in canonical order.
func PerStatus(occs []*models.Occurrence) []StatusCount {
	out := make([]StatusCount, len(models.AllStatuses))
	index := make(map[string]int, len(models.AllStatuses))
	for i, status := range models.AllStatuses {
		out[i] = StatusCount{Status: status}
		index[status] = i
	}
	for _, o := range occs {
		if i, ok := index[o.Status]; ok {
			out[i].Count++
		}
	}
	return out
}

// RegionCount is one entry of the top-regions ranking.
type RegionCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// TopRegions ranks states by occurrence count, descending, keeping at
// most five. Ties keep first-encounter order so the ranking is stable
// across calls.
func TopRegions(occs []*models.Occurrence) []RegionCount {
	counts := map[string]int{}
	order := []string{}
	for _, o := range occs {
		if o.State == "" {
			continue
		}
		if _, seen := counts[o.State]; !seen {
			order = append(order, o.State)
		}
		counts[o.State]++
	}

	out := make([]RegionCount, 0, len(order))
	for _, state := range order {
		out = append(out, RegionCount{State: state, Count: counts[state]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// Overview is the dashboard KPI row.
type Overview struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Disputes  int `json:"disputes"`
	Lost      int `json:"lost"`
}

// Summarize computes the KPI row. Disputes and Lost are raw flag counts
// over the whole collection; only the money totals in Financial are
// scoped to active records.
func Summarize(occs []*models.Occurrence) Overview {
	var v Overview
	v.Total = len(occs)
	for _, o := range occs {
		if IsActive(o) {
			v.Active++
		} else {
			v.Completed++
		}
		if o.FlagInvoiceDispute {
			v.Disputes++
		}
		if o.FlagLostReturn {
			v.Lost++
		}
	}
	return v
}

// Dashboard bundles every aggregate the dashboard page renders, computed
// from one snapshot of the data.
type Dashboard struct {
	Overview   Overview         `json:"overview"`
	Financial  FinancialSummary `json:"financial"`
	PerCarrier []CarrierCount   `json:"perCarrier"`
	PerStatus  []StatusCount    `json:"perStatus"`
	TopRegions []RegionCount    `json:"topRegions"`
}

func BuildDashboard(occs []*models.Occurrence, carriers []*models.Carrier) Dashboard {
	return Dashboard{
		Overview:   Summarize(occs),
		Financial:  Financial(occs),
		PerCarrier: PerCarrier(occs, carriers),
		PerStatus:  PerStatus(occs),
		TopRegions: TopRegions(occs),
	}
}
