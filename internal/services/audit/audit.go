package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/byTonho/logifix/internal/broker/messages"
	"github.com/byTonho/logifix/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Repository interface {
	InsertAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// Recorder publishes audit entries for mutating operations. The log is a
// side channel: a publish failure is logged and swallowed so it can never
// fail the operation it describes.
type Recorder struct {
	producer Producer
	topic    string
}

func NewRecorder(producer Producer, topic string) *Recorder {
	return &Recorder{producer: producer, topic: topic}
}

func (r *Recorder) Record(ctx context.Context, action, details string, actor models.Actor) {
	if r == nil || r.producer == nil {
		return
	}
	msg := messages.AuditLogged{
		LogID:    uuid.NewString(),
		Action:   action,
		Details:  details,
		UserID:   actor.ID,
		UserName: actor.Name,
		LoggedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("audit marshal failed", "action", action, "err", err)
		return
	}
	if err := r.producer.Publish(ctx, r.topic, []byte(msg.LogID), b); err != nil {
		slog.Error("audit publish failed", "action", action, "err", err)
	}
}

// Service is the consumer/read side: it persists AuditLogged messages and
// serves the newest-first listing.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Apply(ctx context.Context, msg messages.AuditLogged) error {
	if msg.LogID == "" {
		return errors.New("log_id is required")
	}
	if msg.LoggedAt.IsZero() {
		msg.LoggedAt = time.Now().UTC()
	}
	return s.repo.InsertAuditLog(ctx, &models.AuditLog{
		ID:        msg.LogID,
		Action:    msg.Action,
		Details:   msg.Details,
		UserID:    msg.UserID,
		UserName:  msg.UserName,
		Timestamp: msg.LoggedAt,
	})
}

func (s *Service) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, limit)
}
