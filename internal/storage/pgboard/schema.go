package pgboard

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS carriers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  segment TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '#94a3b8',
  created_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		// No FK on carrier_id: deleting a carrier intentionally leaves
		// dangling references on its occurrences.
		`
CREATE TABLE IF NOT EXISTS occurrences (
  id TEXT PRIMARY KEY,
  carrier_id TEXT NOT NULL,
  tracking_code TEXT NOT NULL DEFAULT '',
  invoice_number TEXT NOT NULL,
  recipient_name TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  occurrence_date TEXT NOT NULL DEFAULT '',
  finished_at TIMESTAMPTZ NULL,
  invoice_value DOUBLE PRECISION NOT NULL DEFAULT 0,
  freight_value DOUBLE PRECISION NOT NULL DEFAULT 0,
  flag_resent BOOLEAN NOT NULL DEFAULT FALSE,
  resent_carrier_id TEXT NULL,
  resent_tracking_code TEXT NULL,
  flag_invoice_dispute BOOLEAN NOT NULL DEFAULT FALSE,
  flag_lost_return BOOLEAN NOT NULL DEFAULT FALSE,
  flag_damage BOOLEAN NOT NULL DEFAULT FALSE,
  responsible_users TEXT[] NOT NULL DEFAULT '{}',
  updated_at TIMESTAMPTZ NOT NULL
)`,
		// Plain index, not unique: duplicate invoices are rejected by the
		// lifecycle engine's lookup, not by a constraint.
		`CREATE INDEX IF NOT EXISTS idx_occurrences_invoice_number ON occurrences(invoice_number)`,
		`CREATE INDEX IF NOT EXISTS idx_occurrences_status ON occurrences(status)`,
		`
CREATE TABLE IF NOT EXISTS occurrence_notes (
  id TEXT PRIMARY KEY,
  occurrence_id TEXT NOT NULL REFERENCES occurrences(id) ON DELETE CASCADE,
  user_name TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_occurrence_notes_occurrence_id_created_at ON occurrence_notes(occurrence_id, created_at ASC)`,
		`
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  action TEXT NOT NULL,
  details TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL,
  user_name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at DESC)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
