package board

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/byTonho/logifix/internal/cache"
	"github.com/byTonho/logifix/internal/models"
)

// Filter narrows the kanban board. The zero value and the literal "all"
// both mean no filtering on that axis.
type Filter struct {
	CarrierID     string
	ResponsibleID string
}

func (f Filter) matches(o *models.Occurrence) bool {
	if f.CarrierID != "" && f.CarrierID != "all" && o.CarrierID != f.CarrierID {
		return false
	}
	if f.ResponsibleID != "" && f.ResponsibleID != "all" {
		found := false
		for _, id := range o.ResponsibleUsers {
			if id == f.ResponsibleID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Column is one kanban lane in board order.
type Column struct {
	Status string               `json:"status"`
	Cards  []*models.Occurrence `json:"cards"`
}

// Project arranges occurrences into the six board columns. ARCHIVED never
// appears; DONE cards age off the board once finishedAt is older than the
// retention window, but a DONE card with no finishedAt stays visible so it
// is never silently lost.
func Project(occs []*models.Occurrence, filter Filter, retention time.Duration, now time.Time) []Column {
	columns := make([]Column, len(models.BoardColumns))
	index := make(map[string]int, len(models.BoardColumns))
	for i, status := range models.BoardColumns {
		columns[i] = Column{Status: status, Cards: []*models.Occurrence{}}
		index[status] = i
	}

	cutoff := now.Add(-retention)
	for _, o := range occs {
		i, ok := index[o.Status]
		if !ok {
			continue
		}
		if o.Status == models.StatusDone && o.FinishedAt != nil && o.FinishedAt.Before(cutoff) {
			continue
		}
		if !filter.matches(o) {
			continue
		}
		columns[i].Cards = append(columns[i].Cards, o)
	}
	return columns
}

// FinishedOccurrences lists every terminal record, DONE and ARCHIVED
// alike. The board's retention window only controls column visibility;
// a completed record belongs here the moment it completes.
func FinishedOccurrences(occs []*models.Occurrence) []*models.Occurrence {
	out := []*models.Occurrence{}
	for _, o := range occs {
		if models.IsTerminalStatus(o.Status) {
			out = append(out, o)
		}
	}
	return out
}

// SearchFinished filters a finished listing by a free-text query against
// id, recipient, tracking code, invoice number and carrier name. Empty
// query keeps all.
func SearchFinished(occs []*models.Occurrence, query string, carrierName map[string]string) []*models.Occurrence {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return occs
	}
	out := []*models.Occurrence{}
	for _, o := range occs {
		if strings.Contains(strings.ToLower(o.ID), q) ||
			strings.Contains(strings.ToLower(o.RecipientName), q) ||
			strings.Contains(strings.ToLower(o.TrackingCode), q) ||
			strings.Contains(strings.ToLower(o.InvoiceNumber), q) ||
			strings.Contains(strings.ToLower(carrierName[o.CarrierID]), q) {
			out = append(out, o)
		}
	}
	return out
}

// Board pairs the pure projection with the per-viewer seen store that
// powers the unread-note badges.
type Board struct {
	seen      cache.SeenStore
	retention time.Duration
}

func New(seen cache.SeenStore, retention time.Duration) *Board {
	return &Board{seen: seen, retention: retention}
}

func (b *Board) Project(occs []*models.Occurrence, filter Filter, now time.Time) []Column {
	return Project(occs, filter, b.retention, now)
}

func (b *Board) Finished(occs []*models.Occurrence, carriers []*models.Carrier, query string) []*models.Occurrence {
	names := make(map[string]string, len(carriers))
	for _, c := range carriers {
		names[c.ID] = c.Name
	}
	return SearchFinished(FinishedOccurrences(occs), query, names)
}

// UnreadNotes reports how many notes the viewer has not seen yet per
// occurrence. The seen store is best effort: on error the card simply
// shows no badge.
func (b *Board) UnreadNotes(ctx context.Context, viewerID string, occs []*models.Occurrence) map[string]int {
	out := make(map[string]int, len(occs))
	for _, o := range occs {
		seen, err := b.seen.LastSeen(ctx, viewerID, o.ID)
		if err != nil {
			slog.Warn("seen store read failed", "occurrence", o.ID, "error", err)
			seen = 0
		}
		if unread := len(o.Notes) - seen; unread > 0 {
			out[o.ID] = unread
		}
	}
	return out
}

// MarkSeen records that the viewer has read every note currently on the
// occurrence.
func (b *Board) MarkSeen(ctx context.Context, viewerID string, o *models.Occurrence) error {
	return b.seen.MarkSeen(ctx, viewerID, o.ID, len(o.Notes))
}
