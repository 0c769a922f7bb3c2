package pgboard

import (
	"context"
	"time"

	"github.com/byTonho/logifix/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const occurrenceColumns = `
  id, carrier_id, tracking_code, invoice_number, recipient_name, state,
  status, created_at, occurrence_date, finished_at,
  invoice_value, freight_value,
  flag_resent, resent_carrier_id, resent_tracking_code,
  flag_invoice_dispute, flag_lost_return, flag_damage,
  responsible_users`

func scanOccurrence(row pgx.Row) (*models.Occurrence, error) {
	var o models.Occurrence
	var finishedAt *time.Time
	var resentCarrierID, resentTrackingCode *string
	if err := row.Scan(
		&o.ID, &o.CarrierID, &o.TrackingCode, &o.InvoiceNumber, &o.RecipientName, &o.State,
		&o.Status, &o.CreatedAt, &o.OccurrenceDate, &finishedAt,
		&o.InvoiceValue, &o.FreightValue,
		&o.FlagResent, &resentCarrierID, &resentTrackingCode,
		&o.FlagInvoiceDispute, &o.FlagLostReturn, &o.FlagDamage,
		&o.ResponsibleUsers,
	); err != nil {
		return nil, err
	}
	o.FinishedAt = finishedAt
	o.ResentCarrierID = resentCarrierID
	o.ResentTrackingCode = resentTrackingCode
	o.Notes = []models.TimelineEvent{}
	return &o, nil
}

// ListOccurrences returns the full collection, notes attached, insertion
// (created_at) order. The board and aggregation layers work off this snapshot.
func (s *Storage) ListOccurrences(ctx context.Context) ([]*models.Occurrence, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+occurrenceColumns+`
FROM occurrences
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, errors.Wrap(err, "select occurrences")
	}
	defer rows.Close()

	var out []*models.Occurrence
	byID := map[string]*models.Occurrence{}
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan occurrence")
		}
		out = append(out, o)
		byID[o.ID] = o
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	noteRows, err := s.db.Query(ctx, `
SELECT id, occurrence_id, user_name, content, created_at
FROM occurrence_notes
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, errors.Wrap(err, "select notes")
	}
	defer noteRows.Close()

	for noteRows.Next() {
		var n models.TimelineEvent
		var occurrenceID string
		if err := noteRows.Scan(&n.ID, &occurrenceID, &n.UserName, &n.Text, &n.Date); err != nil {
			return nil, errors.Wrap(err, "scan note")
		}
		if o, ok := byID[occurrenceID]; ok {
			o.Notes = append(o.Notes, n)
		}
	}
	if noteRows.Err() != nil {
		return nil, errors.Wrap(noteRows.Err(), "note rows")
	}

	if out == nil {
		out = []*models.Occurrence{}
	}
	return out, nil
}

func (s *Storage) GetOccurrence(ctx context.Context, id string) (*models.Occurrence, error) {
	o, err := scanOccurrence(s.db.QueryRow(ctx, `
SELECT `+occurrenceColumns+`
FROM occurrences
WHERE id = $1
`, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select occurrence")
	}

	rows, err := s.db.Query(ctx, `
SELECT id, user_name, content, created_at
FROM occurrence_notes
WHERE occurrence_id = $1
ORDER BY created_at ASC
`, id)
	if err != nil {
		return nil, errors.Wrap(err, "select occurrence notes")
	}
	defer rows.Close()

	for rows.Next() {
		var n models.TimelineEvent
		if err := rows.Scan(&n.ID, &n.UserName, &n.Text, &n.Date); err != nil {
			return nil, errors.Wrap(err, "scan note")
		}
		o.Notes = append(o.Notes, n)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "note rows")
	}
	return o, nil
}

// GetOccurrenceByInvoiceNumber backs the duplicate-invoice check.
// Returns models.ErrNotFound when the invoice is free.
func (s *Storage) GetOccurrenceByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Occurrence, error) {
	o, err := scanOccurrence(s.db.QueryRow(ctx, `
SELECT `+occurrenceColumns+`
FROM occurrences
WHERE invoice_number = $1
LIMIT 1
`, invoiceNumber))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select occurrence by invoice")
	}
	return o, nil
}

func (s *Storage) InsertOccurrence(ctx context.Context, o *models.Occurrence) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
INSERT INTO occurrences (
  id, carrier_id, tracking_code, invoice_number, recipient_name, state,
  status, created_at, occurrence_date, finished_at,
  invoice_value, freight_value,
  flag_resent, resent_carrier_id, resent_tracking_code,
  flag_invoice_dispute, flag_lost_return, flag_damage,
  responsible_users, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
`,
		o.ID, o.CarrierID, o.TrackingCode, o.InvoiceNumber, o.RecipientName, o.State,
		o.Status, o.CreatedAt, o.OccurrenceDate, o.FinishedAt,
		o.InvoiceValue, o.FreightValue,
		o.FlagResent, o.ResentCarrierID, o.ResentTrackingCode,
		o.FlagInvoiceDispute, o.FlagLostReturn, o.FlagDamage,
		o.ResponsibleUsers, now,
	)
	return errors.Wrap(err, "insert occurrence")
}

// UpdateOccurrence overwrites every mutable column. Last write wins;
// there is no version column and no conflict detection.
func (s *Storage) UpdateOccurrence(ctx context.Context, o *models.Occurrence) error {
	tag, err := s.db.Exec(ctx, `
UPDATE occurrences SET
  carrier_id = $2,
  tracking_code = $3,
  invoice_number = $4,
  recipient_name = $5,
  state = $6,
  status = $7,
  occurrence_date = $8,
  finished_at = $9,
  invoice_value = $10,
  freight_value = $11,
  flag_resent = $12,
  resent_carrier_id = $13,
  resent_tracking_code = $14,
  flag_invoice_dispute = $15,
  flag_lost_return = $16,
  flag_damage = $17,
  responsible_users = $18,
  updated_at = now()
WHERE id = $1
`,
		o.ID, o.CarrierID, o.TrackingCode, o.InvoiceNumber, o.RecipientName, o.State,
		o.Status, o.OccurrenceDate, o.FinishedAt,
		o.InvoiceValue, o.FreightValue,
		o.FlagResent, o.ResentCarrierID, o.ResentTrackingCode,
		o.FlagInvoiceDispute, o.FlagLostReturn, o.FlagDamage,
		o.ResponsibleUsers,
	)
	if err != nil {
		return errors.Wrap(err, "update occurrence")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteOccurrence(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM occurrences WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete occurrence")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Storage) InsertNote(ctx context.Context, occurrenceID string, n *models.TimelineEvent) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO occurrence_notes (id, occurrence_id, user_name, content, created_at)
VALUES ($1,$2,$3,$4,$5)
`, n.ID, occurrenceID, n.UserName, n.Text, n.Date)
	return errors.Wrap(err, "insert note")
}

// UpdateNoteText replaces the text only; timestamp and author stay as written.
func (s *Storage) UpdateNoteText(ctx context.Context, noteID, text string) error {
	tag, err := s.db.Exec(ctx, `UPDATE occurrence_notes SET content = $2 WHERE id = $1`, noteID, text)
	if err != nil {
		return errors.Wrap(err, "update note")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
