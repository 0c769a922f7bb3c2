package occurrences

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/byTonho/logifix/internal/cache"
	"github.com/byTonho/logifix/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Repository interface {
	ListOccurrences(ctx context.Context) ([]*models.Occurrence, error)
	GetOccurrence(ctx context.Context, id string) (*models.Occurrence, error)
	GetOccurrenceByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Occurrence, error)
	InsertOccurrence(ctx context.Context, o *models.Occurrence) error
	UpdateOccurrence(ctx context.Context, o *models.Occurrence) error
	DeleteOccurrence(ctx context.Context, id string) error
	InsertNote(ctx context.Context, occurrenceID string, n *models.TimelineEvent) error
	UpdateNoteText(ctx context.Context, noteID, text string) error
}

type UserDirectory interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action, details string, actor models.Actor)
}

// Service is the occurrence lifecycle engine. Every mutation follows the
// same shape: validate, write, reload the record, refresh the cache, audit.
// It never touches other occurrences except for the duplicate-invoice lookup.
type Service struct {
	repo  Repository
	users UserDirectory
	cache cache.BytesCache
	audit AuditRecorder

	currentTTL time.Duration

	// defaultResponsible is matched as a name substring against the user
	// directory; new and restored occurrences get that user attached.
	defaultResponsible string
}

func New(repo Repository, users UserDirectory, c cache.BytesCache, currentTTL time.Duration, audit AuditRecorder, defaultResponsible string) *Service {
	return &Service{
		repo:               repo,
		users:              users,
		cache:              c,
		audit:              audit,
		currentTTL:         currentTTL,
		defaultResponsible: defaultResponsible,
	}
}

func currentKey(id string) string {
	return fmt.Sprintf("occurrence:%s:current", id)
}

// NewOccurrenceID keeps the original OC-<4 digit> format. There is no
// collision guard: uniqueness of the business record is enforced by the
// duplicate-invoice check, not by the id.
func NewOccurrenceID() string {
	return fmt.Sprintf("OC-%04d", rand.IntN(10000))
}

func (s *Service) List(ctx context.Context) ([]*models.Occurrence, error) {
	return s.repo.ListOccurrences(ctx)
}

// Get reads cache-first; the cache is best effort and any miss or decode
// failure falls through to the repository.
func (s *Service) Get(ctx context.Context, id string) (*models.Occurrence, error) {
	if id == "" {
		return nil, models.NewValidationError("id", "is required")
	}
	if s.cache != nil && s.currentTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, currentKey(id)); err == nil && ok {
			var o models.Occurrence
			if json.Unmarshal(b, &o) == nil {
				return &o, nil
			}
		}
	}
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshCache(ctx, o)
	return o, nil
}

func (s *Service) refreshCache(ctx context.Context, o *models.Occurrence) {
	if s.cache == nil || s.currentTTL <= 0 || o == nil {
		return
	}
	b, _ := json.Marshal(o)
	_ = s.cache.Set(ctx, currentKey(o.ID), b, s.currentTTL)
}

func (s *Service) dropCache(ctx context.Context, id string) {
	if s.cache == nil || s.currentTTL <= 0 {
		return
	}
	_ = s.cache.Del(ctx, currentKey(id))
}

// reload re-reads the record after a write so callers always see what the
// store actually holds ("command then reload", no optimistic local state).
func (s *Service) reload(ctx context.Context, id string) (*models.Occurrence, error) {
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshCache(ctx, o)
	return o, nil
}

func (s *Service) Create(ctx context.Context, draft models.OccurrenceDraft, actor models.Actor) (*models.Occurrence, error) {
	if draft.CarrierID == "" {
		return nil, models.NewValidationError("carrierId", "is required")
	}
	if strings.TrimSpace(draft.InvoiceNumber) == "" {
		return nil, models.NewValidationError("invoiceNumber", "is required")
	}
	state := strings.ToUpper(strings.TrimSpace(draft.State))
	if len(state) != 2 {
		return nil, models.NewValidationError("state", "must be a two-letter UF code")
	}
	if draft.OccurrenceDate == "" {
		return nil, models.NewValidationError("occurrenceDate", "is required")
	}
	if draft.InvoiceValue < 0 {
		return nil, models.NewValidationError("invoiceValue", "must not be negative")
	}
	if draft.FreightValue < 0 {
		return nil, models.NewValidationError("freightValue", "must not be negative")
	}

	existing, err := s.repo.GetOccurrenceByInvoiceNumber(ctx, draft.InvoiceNumber)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, &models.DuplicateInvoiceError{
			InvoiceNumber: draft.InvoiceNumber,
			ExistingID:    existing.ID,
		}
	}

	now := time.Now().UTC()
	o := &models.Occurrence{
		ID:               NewOccurrenceID(),
		CarrierID:        draft.CarrierID,
		TrackingCode:     draft.TrackingCode,
		InvoiceNumber:    draft.InvoiceNumber,
		RecipientName:    draft.RecipientName,
		State:            state,
		Status:           models.StatusOpen,
		CreatedAt:        now,
		OccurrenceDate:   draft.OccurrenceDate,
		InvoiceValue:     draft.InvoiceValue,
		FreightValue:     draft.FreightValue,
		ResponsibleUsers: []string{},
	}
	s.ensureDefaultResponsible(ctx, o)

	if err := s.repo.InsertOccurrence(ctx, o); err != nil {
		return nil, err
	}

	noteText := strings.TrimSpace(draft.InitialNote)
	if noteText == "" {
		noteText = "Reclamação aberta."
	}
	note := &models.TimelineEvent{
		ID:       uuid.NewString(),
		Date:     now,
		Text:     noteText,
		UserName: actor.Name,
	}
	if err := s.repo.InsertNote(ctx, o.ID, note); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Nova Ocorrência",
		fmt.Sprintf("Criou a ocorrência %s para %s", o.ID, o.RecipientName), actor)
	return s.reload(ctx, o.ID)
}

// ensureDefaultResponsible attaches the configured default user when one
// matches; a missing user or directory failure is not an error.
func (s *Service) ensureDefaultResponsible(ctx context.Context, o *models.Occurrence) {
	if s.defaultResponsible == "" || s.users == nil {
		return
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return
	}
	for _, u := range users {
		if !strings.Contains(u.Name, s.defaultResponsible) {
			continue
		}
		for _, id := range o.ResponsibleUsers {
			if id == u.ID {
				return
			}
		}
		o.ResponsibleUsers = append(o.ResponsibleUsers, u.ID)
		return
	}
}

// applyStatus sets the status and derives finished_at: entering a terminal
// status stamps it (preserving an existing stamp), leaving one clears it.
func applyStatus(o *models.Occurrence, newStatus string, now time.Time) {
	if models.IsTerminalStatus(newStatus) {
		if o.FinishedAt == nil {
			t := now
			o.FinishedAt = &t
		}
	} else {
		o.FinishedAt = nil
	}
	o.Status = newStatus
}

// ChangeStatus moves an occurrence between columns. Any status pair is
// allowed except a move into ARCHIVED, which only Finish performs.
func (s *Service) ChangeStatus(ctx context.Context, id, newStatus string, actor models.Actor) (*models.Occurrence, error) {
	if !models.IsKnownStatus(newStatus) {
		return nil, models.NewValidationError("status", "unknown status "+newStatus)
	}
	if newStatus == models.StatusArchived {
		return nil, models.NewValidationError("status", "use the finish action to archive")
	}
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}

	applyStatus(o, newStatus, time.Now().UTC())
	if err := s.repo.UpdateOccurrence(ctx, o); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Alterou Status",
		fmt.Sprintf("Alterou status de %s para %s", id, newStatus), actor)
	return s.reload(ctx, id)
}

// Finish archives an occurrence: the explicit confirmed-complete action,
// distinct from dragging it to DONE.
func (s *Service) Finish(ctx context.Context, id string, actor models.Actor) (*models.Occurrence, error) {
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}

	applyStatus(o, models.StatusArchived, time.Now().UTC())
	if err := s.repo.UpdateOccurrence(ctx, o); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Arquivou Ocorrência",
		fmt.Sprintf("Finalizou a ocorrência %s", id), actor)
	return s.reload(ctx, id)
}

// Restore is the only sanctioned way back from DONE/ARCHIVED: status goes
// to OPEN, finished_at is cleared and the default responsible re-attached.
func (s *Service) Restore(ctx context.Context, id string, actor models.Actor) (*models.Occurrence, error) {
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}

	applyStatus(o, models.StatusOpen, time.Now().UTC())
	s.ensureDefaultResponsible(ctx, o)
	if err := s.repo.UpdateOccurrence(ctx, o); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Restaurou Ocorrência",
		fmt.Sprintf("Reabriu a ocorrência %s", id), actor)
	return s.reload(ctx, id)
}

var flagLabels = map[string]string{
	models.FlagResent:         "Produto Reenviado",
	models.FlagInvoiceDispute: "Contestar Fatura",
	models.FlagLostReturn:     "Extravio na Devolução",
	models.FlagDamage:         "Avaria",
}

// ToggleFlag flips exactly one marker. Clearing the resent flag keeps the
// reshipment carrier/tracking fields: they are history, not flag payload.
func (s *Service) ToggleFlag(ctx context.Context, id, flag string, actor models.Actor) (*models.Occurrence, error) {
	label, ok := flagLabels[flag]
	if !ok {
		return nil, models.NewValidationError("flag", "unknown flag "+flag)
	}
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}

	var activated bool
	switch flag {
	case models.FlagResent:
		o.FlagResent = !o.FlagResent
		activated = o.FlagResent
	case models.FlagInvoiceDispute:
		o.FlagInvoiceDispute = !o.FlagInvoiceDispute
		activated = o.FlagInvoiceDispute
	case models.FlagLostReturn:
		o.FlagLostReturn = !o.FlagLostReturn
		activated = o.FlagLostReturn
	case models.FlagDamage:
		o.FlagDamage = !o.FlagDamage
		activated = o.FlagDamage
	}

	if err := s.repo.UpdateOccurrence(ctx, o); err != nil {
		return nil, err
	}

	verb := "Desativou"
	if activated {
		verb = "Ativou"
	}
	s.audit.Record(ctx, "Alterou Opção",
		fmt.Sprintf("%s %s em %s", verb, label, id), actor)
	return s.reload(ctx, id)
}

// SetResentDetails updates the reshipment sub-fields independent of the
// resent flag. No check that the new carrier differs from the original.
func (s *Service) SetResentDetails(ctx context.Context, id string, carrierID, trackingCode *string, actor models.Actor) (*models.Occurrence, error) {
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}

	if carrierID != nil {
		o.ResentCarrierID = carrierID
	}
	if trackingCode != nil {
		o.ResentTrackingCode = trackingCode
	}
	if err := s.repo.UpdateOccurrence(ctx, o); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Atualizou Reenvio",
		fmt.Sprintf("Alterou dados de reenvio em %s", id), actor)
	return s.reload(ctx, id)
}

// EditFields is the full-edit path. Status is part of the patch, so the
// finished_at rule is re-applied exactly as on a status move.
func (s *Service) EditFields(ctx context.Context, id string, patch models.OccurrencePatch, actor models.Actor) (*models.Occurrence, error) {
	if patch.CarrierID == "" {
		return nil, models.NewValidationError("carrierId", "is required")
	}
	if !models.IsKnownStatus(patch.Status) {
		return nil, models.NewValidationError("status", "unknown status "+patch.Status)
	}
	if patch.InvoiceValue < 0 || patch.FreightValue < 0 {
		return nil, models.NewValidationError("invoiceValue", "values must not be negative")
	}
	o, err := s.repo.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status == models.StatusArchived && o.Status != models.StatusArchived {
		return nil, models.NewValidationError("status", "use the finish action to archive")
	}

	o.CarrierID = patch.CarrierID
	o.TrackingCode = patch.TrackingCode
	o.InvoiceNumber = patch.InvoiceNumber
	o.RecipientName = patch.RecipientName
	o.State = strings.ToUpper(strings.TrimSpace(patch.State))
	o.OccurrenceDate = patch.OccurrenceDate
	o.InvoiceValue = patch.InvoiceValue
	o.FreightValue = patch.FreightValue
	o.FlagResent = patch.FlagResent
	o.ResentCarrierID = patch.ResentCarrierID
	o.ResentTrackingCode = patch.ResentTrackingCode
	o.FlagInvoiceDispute = patch.FlagInvoiceDispute
	o.FlagLostReturn = patch.FlagLostReturn
	o.FlagDamage = patch.FlagDamage
	if patch.ResponsibleUsers != nil {
		o.ResponsibleUsers = patch.ResponsibleUsers
	}
	applyStatus(o, patch.Status, time.Now().UTC())

	if err := s.repo.UpdateOccurrence(ctx, o); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Editou Ocorrência",
		fmt.Sprintf("Alterou dados principais da ocorrência %s", id), actor)
	return s.reload(ctx, id)
}

// AddNote appends a timeline entry with a server-assigned timestamp.
// Blank text is rejected here, not only at the form layer.
func (s *Service) AddNote(ctx context.Context, id, text string, actor models.Actor) (*models.Occurrence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("text", "note text must not be blank")
	}
	if _, err := s.repo.GetOccurrence(ctx, id); err != nil {
		return nil, err
	}

	note := &models.TimelineEvent{
		ID:       uuid.NewString(),
		Date:     time.Now().UTC(),
		Text:     text,
		UserName: actor.Name,
	}
	if err := s.repo.InsertNote(ctx, id, note); err != nil {
		return nil, err
	}

	// truncate on runes, the note text is rarely plain ASCII
	excerpt := text
	if r := []rune(excerpt); len(r) > 30 {
		excerpt = string(r[:30]) + "..."
	}
	s.audit.Record(ctx, "Adicionou Nota",
		fmt.Sprintf("Comentou na ocorrência %s: %q", id, excerpt), actor)
	return s.reload(ctx, id)
}

// EditNote replaces the text in place; the note keeps its original
// timestamp and author.
func (s *Service) EditNote(ctx context.Context, occurrenceID, noteID, text string, actor models.Actor) (*models.Occurrence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("text", "note text must not be blank")
	}
	if err := s.repo.UpdateNoteText(ctx, noteID, text); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Editou Nota",
		fmt.Sprintf("Alterou uma nota existente em %s", occurrenceID), actor)
	return s.reload(ctx, occurrenceID)
}

// Delete removes the occurrence for good; the audit entry is the only
// trace left.
func (s *Service) Delete(ctx context.Context, id string, actor models.Actor) error {
	if err := s.repo.DeleteOccurrence(ctx, id); err != nil {
		return err
	}
	s.dropCache(ctx, id)
	s.audit.Record(ctx, "Excluiu Ocorrência",
		fmt.Sprintf("Removeu permanentemente a ocorrência %s", id), actor)
	return nil
}
