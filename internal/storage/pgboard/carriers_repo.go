package pgboard

import (
	"context"

	"github.com/byTonho/logifix/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) ListCarriers(ctx context.Context) ([]*models.Carrier, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, name, segment, color, created_at
FROM carriers
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, errors.Wrap(err, "select carriers")
	}
	defer rows.Close()

	out := []*models.Carrier{}
	for rows.Next() {
		var c models.Carrier
		if err := rows.Scan(&c.ID, &c.Name, &c.Segment, &c.Color, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan carrier")
		}
		out = append(out, &c)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) GetCarrier(ctx context.Context, id string) (*models.Carrier, error) {
	var c models.Carrier
	err := s.db.QueryRow(ctx, `
SELECT id, name, segment, color, created_at
FROM carriers
WHERE id = $1
`, id).Scan(&c.ID, &c.Name, &c.Segment, &c.Color, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select carrier")
	}
	return &c, nil
}

func (s *Storage) InsertCarrier(ctx context.Context, c *models.Carrier) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO carriers (id, name, segment, color, created_at)
VALUES ($1,$2,$3,$4,$5)
`, c.ID, c.Name, c.Segment, c.Color, c.CreatedAt)
	return errors.Wrap(err, "insert carrier")
}

func (s *Storage) UpdateCarrier(ctx context.Context, c *models.Carrier) error {
	tag, err := s.db.Exec(ctx, `
UPDATE carriers SET name = $2, segment = $3, color = $4 WHERE id = $1
`, c.ID, c.Name, c.Segment, c.Color)
	if err != nil {
		return errors.Wrap(err, "update carrier")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteCarrier removes the carrier only. Occurrences referencing it keep
// the dangling id; there is deliberately no cascade.
func (s *Storage) DeleteCarrier(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM carriers WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete carrier")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
