package stats

import (
	"testing"
	"time"

	"github.com/byTonho/logifix/internal/models"
	"github.com/stretchr/testify/require"
)

func TestIsActive(t *testing.T) {
	now := time.Now().UTC()

	require.True(t, IsActive(&models.Occurrence{Status: models.StatusOpen}))
	require.True(t, IsActive(&models.Occurrence{Status: models.StatusFinanceAudit}))
	require.False(t, IsActive(&models.Occurrence{Status: models.StatusDone, FinishedAt: &now}))
	require.False(t, IsActive(&models.Occurrence{Status: models.StatusArchived, FinishedAt: &now}))
	// a stale stamp on a non-terminal record still counts as inactive
	require.False(t, IsActive(&models.Occurrence{Status: models.StatusOpen, FinishedAt: &now}))
	// DONE without a stamp is likewise not active
	require.False(t, IsActive(&models.Occurrence{Status: models.StatusDone}))
}

func TestFinancial(t *testing.T) {
	now := time.Now().UTC()
	occs := []*models.Occurrence{
		{Status: models.StatusOpen, FlagInvoiceDispute: true, FreightValue: 100, InvoiceValue: 1000},
		{Status: models.StatusAnalysis, FlagInvoiceDispute: true, FlagLostReturn: true, FreightValue: 50, InvoiceValue: 500},
		{Status: models.StatusOpen, FlagDamage: true, InvoiceValue: 300},
		// finished records never count
		{Status: models.StatusDone, FinishedAt: &now, FlagInvoiceDispute: true, FlagLostReturn: true, FreightValue: 999, InvoiceValue: 999},
	}

	s := Financial(occs)
	require.Equal(t, 150.0, s.DisputeTotal, "disputes sum freight")
	require.Equal(t, 500.0, s.LostTotal, "losses sum invoice")
	require.Equal(t, 300.0, s.DamageTotal)
}

func TestPerCarrier(t *testing.T) {
	now := time.Now().UTC()
	carriers := []*models.Carrier{
		{ID: "c-1", Name: "Rapidão"},
		{ID: "c-2", Name: "TransJato"},
		{ID: "c-3", Name: "LogSul"},
	}
	occs := []*models.Occurrence{
		{CarrierID: "c-1", Status: models.StatusOpen},
		{CarrierID: "c-1", Status: models.StatusDone, FinishedAt: &now},
		{CarrierID: "c-2", Status: models.StatusOpen},
		{CarrierID: "c-apagada", Status: models.StatusOpen},
	}

	got := PerCarrier(occs, carriers)
	require.Len(t, got, 3)
	require.Equal(t, CarrierCount{CarrierID: "c-1", CarrierName: "Rapidão", Total: 2, Active: 1}, got[0])
	require.Equal(t, CarrierCount{CarrierID: "c-2", CarrierName: "TransJato", Total: 1, Active: 1}, got[1])
	require.Equal(t, CarrierCount{CarrierID: "c-3", CarrierName: "LogSul"}, got[2], "carrier without occurrences zero-filled")
}

func TestPerStatus(t *testing.T) {
	occs := []*models.Occurrence{
		{Status: models.StatusOpen},
		{Status: models.StatusOpen},
		{Status: models.StatusDone},
		{Status: "Inventado"},
	}

	got := PerStatus(occs)
	require.Len(t, got, len(models.AllStatuses))
	byStatus := map[string]int{}
	for _, sc := range got {
		byStatus[sc.Status] = sc.Count
	}
	require.Equal(t, 2, byStatus[models.StatusOpen])
	require.Equal(t, 1, byStatus[models.StatusDone])
	require.Equal(t, 0, byStatus[models.StatusAnalysis])
}

func TestTopRegions(t *testing.T) {
	occs := []*models.Occurrence{
		{State: "SP"}, {State: "SP"}, {State: "SP"},
		{State: "RJ"}, {State: "RJ"},
		{State: "MG"}, {State: "BA"},
		{State: "RS"}, {State: "PR"},
		{State: ""},
	}

	got := TopRegions(occs)
	require.Len(t, got, 5)
	require.Equal(t, RegionCount{State: "SP", Count: 3}, got[0])
	require.Equal(t, RegionCount{State: "RJ", Count: 2}, got[1])
	// ties keep first-encounter order
	require.Equal(t, "MG", got[2].State)
	require.Equal(t, "BA", got[3].State)
	require.Equal(t, "RS", got[4].State)
}

func TestSummarize(t *testing.T) {
	now := time.Now().UTC()
	occs := []*models.Occurrence{
		{Status: models.StatusOpen, FlagInvoiceDispute: true},
		{Status: models.StatusAnalysis, FlagLostReturn: true},
		{Status: models.StatusDone, FinishedAt: &now, FlagInvoiceDispute: true},
		{Status: models.StatusArchived, FinishedAt: &now, FlagLostReturn: true},
	}

	v := Summarize(occs)
	// flag counts span the whole collection, finished records included;
	// only the money totals are scoped to active records
	require.Equal(t, Overview{Total: 4, Active: 2, Completed: 2, Disputes: 2, Lost: 2}, v)
}

func TestBuildDashboard(t *testing.T) {
	carriers := []*models.Carrier{{ID: "c-1", Name: "Rapidão"}}
	occs := []*models.Occurrence{
		{CarrierID: "c-1", State: "SP", Status: models.StatusOpen, FlagDamage: true, InvoiceValue: 250},
	}

	d := BuildDashboard(occs, carriers)
	require.Equal(t, 1, d.Overview.Total)
	require.Equal(t, 250.0, d.Financial.DamageTotal)
	require.Equal(t, 1, d.PerCarrier[0].Active)
	require.Equal(t, []RegionCount{{State: "SP", Count: 1}}, d.TopRegions)
}
