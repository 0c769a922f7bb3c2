package carriers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/byTonho/logifix/internal/models"
	"github.com/google/uuid"
)

const defaultColor = "#64748b"

type Repository interface {
	ListCarriers(ctx context.Context) ([]*models.Carrier, error)
	GetCarrier(ctx context.Context, id string) (*models.Carrier, error)
	InsertCarrier(ctx context.Context, c *models.Carrier) error
	UpdateCarrier(ctx context.Context, c *models.Carrier) error
	DeleteCarrier(ctx context.Context, id string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, action, details string, actor models.Actor)
}

type Service struct {
	repo  Repository
	audit AuditRecorder
}

func New(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// Draft carries everything a caller can set on a carrier.
type Draft struct {
	Name    string `json:"name"`
	Segment string `json:"segment"`
	Color   string `json:"color"`
}

func (d *Draft) validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return models.NewValidationError("name", "is required")
	}
	if !models.IsKnownSegment(d.Segment) {
		return models.NewValidationError("segment", "unknown segment "+d.Segment)
	}
	if d.Color == "" {
		d.Color = defaultColor
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*models.Carrier, error) {
	return s.repo.ListCarriers(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Carrier, error) {
	return s.repo.GetCarrier(ctx, id)
}

func (s *Service) Create(ctx context.Context, draft Draft, actor models.Actor) (*models.Carrier, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}
	c := &models.Carrier{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Segment:   draft.Segment,
		Color:     draft.Color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertCarrier(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "Nova Transportadora",
		fmt.Sprintf("Cadastrou a transportadora %s", c.Name), actor)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, draft Draft, actor models.Actor) (*models.Carrier, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.GetCarrier(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = draft.Name
	c.Segment = draft.Segment
	c.Color = draft.Color
	if err := s.repo.UpdateCarrier(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "Editou Transportadora",
		fmt.Sprintf("Alterou a transportadora %s", c.Name), actor)
	return c, nil
}

// Delete removes the carrier only. Occurrences keep their carrier_id and
// render as carrier-less rather than disappearing with it.
func (s *Service) Delete(ctx context.Context, id string, actor models.Actor) error {
	c, err := s.repo.GetCarrier(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCarrier(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, "Excluiu Transportadora",
		fmt.Sprintf("Removeu a transportadora %s", c.Name), actor)
	return nil
}
