package pgboard

import (
	"context"

	"github.com/byTonho/logifix/internal/models"
	"github.com/pkg/errors"
)

func (s *Storage) InsertAuditLog(ctx context.Context, l *models.AuditLog) error {
	// Replayed consumer messages are idempotent: same id, same row.
	_, err := s.db.Exec(ctx, `
INSERT INTO audit_logs (id, action, details, user_id, user_name, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO NOTHING
`, l.ID, l.Action, l.Details, l.UserID, l.UserName, l.Timestamp)
	return errors.Wrap(err, "insert audit log")
}

func (s *Storage) ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	rows, err := s.db.Query(ctx, `
SELECT id, action, details, user_id, user_name, created_at
FROM audit_logs
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select audit logs")
	}
	defer rows.Close()

	out := []*models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.Action, &l.Details, &l.UserID, &l.UserName, &l.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan audit log")
		}
		out = append(out, &l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
