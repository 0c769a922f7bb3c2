package occurrences

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/byTonho/logifix/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byID    map[string]*models.Occurrence
	inserts int
	deleted []string
}

func newFakeRepo(occs ...*models.Occurrence) *fakeRepo {
	r := &fakeRepo{byID: map[string]*models.Occurrence{}}
	for _, o := range occs {
		r.byID[o.ID] = o
	}
	return r
}

func (r *fakeRepo) clone(o *models.Occurrence) *models.Occurrence {
	cp := *o
	cp.Notes = append([]models.TimelineEvent(nil), o.Notes...)
	cp.ResponsibleUsers = append([]string(nil), o.ResponsibleUsers...)
	return &cp
}

func (r *fakeRepo) ListOccurrences(ctx context.Context) ([]*models.Occurrence, error) {
	out := make([]*models.Occurrence, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, r.clone(o))
	}
	return out, nil
}

func (r *fakeRepo) GetOccurrence(ctx context.Context, id string) (*models.Occurrence, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return r.clone(o), nil
}

func (r *fakeRepo) GetOccurrenceByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.Occurrence, error) {
	for _, o := range r.byID {
		if o.InvoiceNumber == invoiceNumber {
			return r.clone(o), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeRepo) InsertOccurrence(ctx context.Context, o *models.Occurrence) error {
	r.inserts++
	r.byID[o.ID] = r.clone(o)
	return nil
}

func (r *fakeRepo) UpdateOccurrence(ctx context.Context, o *models.Occurrence) error {
	if _, ok := r.byID[o.ID]; !ok {
		return models.ErrNotFound
	}
	r.byID[o.ID] = r.clone(o)
	return nil
}

func (r *fakeRepo) DeleteOccurrence(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeRepo) InsertNote(ctx context.Context, occurrenceID string, n *models.TimelineEvent) error {
	o, ok := r.byID[occurrenceID]
	if !ok {
		return models.ErrNotFound
	}
	o.Notes = append(o.Notes, *n)
	return nil
}

func (r *fakeRepo) UpdateNoteText(ctx context.Context, noteID, text string) error {
	for _, o := range r.byID {
		for i := range o.Notes {
			if o.Notes[i].ID == noteID {
				o.Notes[i].Text = text
				return nil
			}
		}
	}
	return models.ErrNotFound
}

type fakeDirectory struct {
	users []*models.User
	err   error
}

func (d *fakeDirectory) ListUsers(ctx context.Context) ([]*models.User, error) {
	return d.users, d.err
}

type auditEntry struct {
	action  string
	details string
}

type fakeAudit struct {
	entries []auditEntry
}

func (a *fakeAudit) Record(ctx context.Context, action, details string, actor models.Actor) {
	a.entries = append(a.entries, auditEntry{action: action, details: details})
}

var testActor = models.Actor{ID: "u-99", Name: "Ana Prado", Role: models.RoleUser}

func newTestService(repo *fakeRepo, audit *fakeAudit) *Service {
	dir := &fakeDirectory{users: []*models.User{
		{ID: "u-1", Name: "Carlos Andrade", Role: models.RoleUser},
		{ID: "u-2", Name: "Beatriz Lima", Role: models.RoleMaster},
	}}
	return New(repo, dir, nil, 0, audit, "Carlos")
}

func validDraft() models.OccurrenceDraft {
	return models.OccurrenceDraft{
		CarrierID:      "c-1",
		TrackingCode:   "BR123",
		InvoiceNumber:  "NF-1001",
		RecipientName:  "Mercado Azul",
		State:          "sp",
		OccurrenceDate: "2026-08-10",
		InvoiceValue:   1200.50,
		FreightValue:   89.90,
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit)

	o, err := svc.Create(context.Background(), validDraft(), testActor)
	require.NoError(t, err)

	require.Regexp(t, `^OC-\d{4}$`, o.ID)
	require.Equal(t, models.StatusOpen, o.Status)
	require.Nil(t, o.FinishedAt)
	require.Equal(t, "SP", o.State)
	require.Equal(t, []string{"u-1"}, o.ResponsibleUsers, "default responsible attached")

	require.Len(t, o.Notes, 1)
	require.Equal(t, "Reclamação aberta.", o.Notes[0].Text)
	require.Equal(t, testActor.Name, o.Notes[0].UserName)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "Nova Ocorrência", audit.entries[0].action)
}

func TestCreateWithInitialNote(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeAudit{})

	draft := validDraft()
	draft.InitialNote = "Cliente informou caixa violada."
	o, err := svc.Create(context.Background(), draft, testActor)
	require.NoError(t, err)
	require.Equal(t, "Cliente informou caixa violada.", o.Notes[0].Text)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeAudit{})

	cases := map[string]func(*models.OccurrenceDraft){
		"missing carrier":  func(d *models.OccurrenceDraft) { d.CarrierID = "" },
		"missing invoice":  func(d *models.OccurrenceDraft) { d.InvoiceNumber = "  " },
		"bad state":        func(d *models.OccurrenceDraft) { d.State = "SAO" },
		"missing date":     func(d *models.OccurrenceDraft) { d.OccurrenceDate = "" },
		"negative invoice": func(d *models.OccurrenceDraft) { d.InvoiceValue = -1 },
		"negative freight": func(d *models.OccurrenceDraft) { d.FreightValue = -0.5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			draft := validDraft()
			mutate(&draft)
			_, err := svc.Create(context.Background(), draft, testActor)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateDuplicateInvoice(t *testing.T) {
	existing := &models.Occurrence{ID: "OC-0001", InvoiceNumber: "NF-1001", Status: models.StatusOpen}
	repo := newFakeRepo(existing)
	svc := newTestService(repo, &fakeAudit{})

	_, err := svc.Create(context.Background(), validDraft(), testActor)
	var dup *models.DuplicateInvoiceError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "OC-0001", dup.ExistingID)
	require.Equal(t, "NF-1001", dup.InvoiceNumber)
	require.Zero(t, repo.inserts, "no record created on duplicate")
}

func TestChangeStatusSetsAndClearsFinishedAt(t *testing.T) {
	repo := newFakeRepo(&models.Occurrence{ID: "OC-0100", Status: models.StatusOpen})
	svc := newTestService(repo, &fakeAudit{})
	ctx := context.Background()

	o, err := svc.ChangeStatus(ctx, "OC-0100", models.StatusDone, testActor)
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, o.Status)
	require.NotNil(t, o.FinishedAt)
	first := *o.FinishedAt

	// moving between terminal states keeps the original stamp
	o, err = svc.Finish(ctx, "OC-0100", testActor)
	require.NoError(t, err)
	require.Equal(t, models.StatusArchived, o.Status)
	require.Equal(t, first, *o.FinishedAt)

	o, err = svc.Restore(ctx, "OC-0100", testActor)
	require.NoError(t, err)
	require.Equal(t, models.StatusOpen, o.Status)
	require.Nil(t, o.FinishedAt)
}

func TestChangeStatusRejectsArchived(t *testing.T) {
	repo := newFakeRepo(&models.Occurrence{ID: "OC-0100", Status: models.StatusOpen})
	svc := newTestService(repo, &fakeAudit{})

	_, err := svc.ChangeStatus(context.Background(), "OC-0100", models.StatusArchived, testActor)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.ChangeStatus(context.Background(), "OC-0100", "Inventado", testActor)
	require.ErrorAs(t, err, &verr)
}

func TestRestoreReattachesDefaultResponsible(t *testing.T) {
	finished := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&models.Occurrence{
		ID:               "OC-0200",
		Status:           models.StatusArchived,
		FinishedAt:       &finished,
		ResponsibleUsers: []string{"u-2"},
	})
	svc := newTestService(repo, &fakeAudit{})

	o, err := svc.Restore(context.Background(), "OC-0200", testActor)
	require.NoError(t, err)
	require.Equal(t, []string{"u-2", "u-1"}, o.ResponsibleUsers)

	// restoring again must not duplicate the default user
	_, err = svc.Finish(context.Background(), "OC-0200", testActor)
	require.NoError(t, err)
	o, err = svc.Restore(context.Background(), "OC-0200", testActor)
	require.NoError(t, err)
	require.Equal(t, []string{"u-2", "u-1"}, o.ResponsibleUsers)
}

func TestToggleFlagKeepsResentDetails(t *testing.T) {
	carrier := "c-9"
	tracking := "BR999"
	repo := newFakeRepo(&models.Occurrence{
		ID:                 "OC-0300",
		Status:             models.StatusOpen,
		FlagResent:         true,
		ResentCarrierID:    &carrier,
		ResentTrackingCode: &tracking,
	})
	audit := &fakeAudit{}
	svc := newTestService(repo, audit)

	o, err := svc.ToggleFlag(context.Background(), "OC-0300", models.FlagResent, testActor)
	require.NoError(t, err)
	require.False(t, o.FlagResent)
	require.Equal(t, &carrier, o.ResentCarrierID)
	require.Equal(t, &tracking, o.ResentTrackingCode)
	require.Contains(t, audit.entries[0].details, "Desativou")

	o, err = svc.ToggleFlag(context.Background(), "OC-0300", models.FlagInvoiceDispute, testActor)
	require.NoError(t, err)
	require.True(t, o.FlagInvoiceDispute)
	require.Contains(t, audit.entries[1].details, "Ativou")

	_, err = svc.ToggleFlag(context.Background(), "OC-0300", "unknown", testActor)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSetResentDetails(t *testing.T) {
	repo := newFakeRepo(&models.Occurrence{ID: "OC-0300", Status: models.StatusOpen})
	svc := newTestService(repo, &fakeAudit{})

	carrier := "c-2"
	o, err := svc.SetResentDetails(context.Background(), "OC-0300", &carrier, nil, testActor)
	require.NoError(t, err)
	require.Equal(t, &carrier, o.ResentCarrierID)
	require.Nil(t, o.ResentTrackingCode)

	tracking := "BR456"
	o, err = svc.SetResentDetails(context.Background(), "OC-0300", nil, &tracking, testActor)
	require.NoError(t, err)
	require.Equal(t, &carrier, o.ResentCarrierID, "omitted field untouched")
	require.Equal(t, &tracking, o.ResentTrackingCode)
}

func TestEditFieldsReappliesFinishedRule(t *testing.T) {
	repo := newFakeRepo(&models.Occurrence{
		ID:            "OC-0400",
		CarrierID:     "c-1",
		InvoiceNumber: "NF-2000",
		Status:        models.StatusAnalysis,
	})
	svc := newTestService(repo, &fakeAudit{})

	patch := models.OccurrencePatch{
		CarrierID:     "c-2",
		InvoiceNumber: "NF-2000",
		RecipientName: "Loja Central",
		State:         "rj",
		Status:        models.StatusDone,
		InvoiceValue:  500,
	}
	o, err := svc.EditFields(context.Background(), "OC-0400", patch, testActor)
	require.NoError(t, err)
	require.Equal(t, "c-2", o.CarrierID)
	require.Equal(t, "RJ", o.State)
	require.NotNil(t, o.FinishedAt)

	patch.Status = models.StatusInTreatment
	o, err = svc.EditFields(context.Background(), "OC-0400", patch, testActor)
	require.NoError(t, err)
	require.Nil(t, o.FinishedAt, "leaving terminal clears finishedAt")

	patch.Status = models.StatusArchived
	_, err = svc.EditFields(context.Background(), "OC-0400", patch, testActor)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNotes(t *testing.T) {
	repo := newFakeRepo(&models.Occurrence{ID: "OC-0500", Status: models.StatusOpen})
	svc := newTestService(repo, &fakeAudit{})
	ctx := context.Background()

	o, err := svc.AddNote(ctx, "OC-0500", "Transportadora acionada.", testActor)
	require.NoError(t, err)
	require.Len(t, o.Notes, 1)
	require.Equal(t, testActor.Name, o.Notes[0].UserName)

	originalDate := o.Notes[0].Date
	o, err = svc.EditNote(ctx, "OC-0500", o.Notes[0].ID, "Transportadora acionada por e-mail.", testActor)
	require.NoError(t, err)
	require.Equal(t, "Transportadora acionada por e-mail.", o.Notes[0].Text)
	require.Equal(t, originalDate, o.Notes[0].Date, "edit keeps timestamp")

	_, err = svc.AddNote(ctx, "OC-0500", "   ", testActor)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAddNoteAuditExcerpt(t *testing.T) {
	repo := newFakeRepo(&models.Occurrence{ID: "OC-0500", Status: models.StatusOpen})
	audit := &fakeAudit{}
	svc := newTestService(repo, audit)

	// accented text longer than the excerpt keeps whole runes when cut
	text := strings.Repeat("ç", 40)
	_, err := svc.AddNote(context.Background(), "OC-0500", text, testActor)
	require.NoError(t, err)

	require.Len(t, audit.entries, 1)
	details := audit.entries[0].details
	require.True(t, utf8.ValidString(details))
	require.Contains(t, details, strings.Repeat("ç", 30)+"...")
	require.NotContains(t, details, strings.Repeat("ç", 31))
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo(&models.Occurrence{ID: "OC-0600", Status: models.StatusOpen})
	audit := &fakeAudit{}
	svc := newTestService(repo, audit)

	require.NoError(t, svc.Delete(context.Background(), "OC-0600", testActor))
	require.Equal(t, []string{"OC-0600"}, repo.deleted)
	require.Equal(t, "Excluiu Ocorrência", audit.entries[0].action)

	err := svc.Delete(context.Background(), "OC-0600", testActor)
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeAudit{})
	_, err := svc.Get(context.Background(), "OC-9999")
	require.True(t, errors.Is(err, models.ErrNotFound))
}
