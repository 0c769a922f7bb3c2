package users

import (
	"context"
	"testing"

	"github.com/byTonho/logifix/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	byID map[string]*models.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]*models.User{}}
}

func (r *fakeRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeRepo) InsertUser(ctx context.Context, u *models.User) error {
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateUser(ctx context.Context, u *models.User) error {
	stored, ok := r.byID[u.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Name = u.Name
	stored.Role = u.Role
	return nil
}

func (r *fakeRepo) DeleteUser(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeAudit struct {
	actions []string
}

func (a *fakeAudit) Record(ctx context.Context, action, details string, actor models.Actor) {
	a.actions = append(a.actions, action)
}

var master = models.Actor{ID: "u-master", Name: "Ana Prado", Role: models.RoleMaster}

func validDraft() Draft {
	return Draft{
		Name:     "Carlos Andrade",
		Email:    "carlos@logifix.com.br",
		Password: "segredo1",
		Role:     models.RoleUser,
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo()
	audit := &fakeAudit{}
	svc := New(repo, audit)

	u, err := svc.Create(context.Background(), validDraft(), master)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "carlos@logifix.com.br", u.Email)
	require.NotEqual(t, "segredo1", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo1")))
	require.Equal(t, []string{"Novo Usuário"}, audit.actions)
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc := New(newFakeRepo(), &fakeAudit{})

	draft := validDraft()
	draft.Email = "  Carlos@LogiFix.com.BR "
	u, err := svc.Create(context.Background(), draft, master)
	require.NoError(t, err)
	require.Equal(t, "carlos@logifix.com.br", u.Email)
}

func TestCreateValidation(t *testing.T) {
	svc := New(newFakeRepo(), &fakeAudit{})

	cases := map[string]func(*Draft){
		"missing name":   func(d *Draft) { d.Name = "  " },
		"bad email":      func(d *Draft) { d.Email = "carlos" },
		"short password": func(d *Draft) { d.Password = "12345" },
		"unknown role":   func(d *Draft) { d.Role = "Gerente" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			draft := validDraft()
			mutate(&draft)
			_, err := svc.Create(context.Background(), draft, master)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := New(newFakeRepo(), &fakeAudit{})

	_, err := svc.Create(context.Background(), validDraft(), master)
	require.NoError(t, err)

	draft := validDraft()
	draft.Email = "CARLOS@logifix.com.br"
	_, err = svc.Create(context.Background(), draft, master)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "email", verr.Field)
}

func TestUpdate(t *testing.T) {
	svc := New(newFakeRepo(), &fakeAudit{})

	u, err := svc.Create(context.Background(), validDraft(), master)
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), u.ID, Patch{Name: "Carlos A. Andrade", Role: models.RoleMaster}, master)
	require.NoError(t, err)
	require.Equal(t, "Carlos A. Andrade", got.Name)
	require.Equal(t, models.RoleMaster, got.Role)
	require.Equal(t, u.Email, got.Email, "email untouched")

	_, err = svc.Update(context.Background(), "inexistente", Patch{Name: "X", Role: models.RoleUser}, master)
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, &fakeAudit{})

	u, err := svc.Create(context.Background(), validDraft(), master)
	require.NoError(t, err)

	// actors never delete themselves
	err = svc.Delete(context.Background(), master.ID, master)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, svc.Delete(context.Background(), u.ID, master))
	_, err = svc.Get(context.Background(), u.ID)
	require.True(t, errors.Is(err, models.ErrNotFound))
}
