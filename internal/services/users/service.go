package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/byTonho/logifix/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
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

// Draft is the create-user input. Password arrives in clear and is
// hashed before anything is stored.
type Draft struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func knownRole(role string) bool {
	return role == models.RoleMaster || role == models.RoleUser
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) Create(ctx context.Context, draft Draft, actor models.Actor) (*models.User, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Email = strings.ToLower(strings.TrimSpace(draft.Email))

	if draft.Name == "" {
		return nil, models.NewValidationError("name", "is required")
	}
	if draft.Email == "" || !strings.Contains(draft.Email, "@") {
		return nil, models.NewValidationError("email", "must be a valid address")
	}
	if len(draft.Password) < 6 {
		return nil, models.NewValidationError("password", "must have at least 6 characters")
	}
	if !knownRole(draft.Role) {
		return nil, models.NewValidationError("role", "unknown role "+draft.Role)
	}

	if _, err := s.repo.GetUserByEmail(ctx, draft.Email); err == nil {
		return nil, models.NewValidationError("email", "already registered")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         draft.Name,
		Email:        draft.Email,
		PasswordHash: string(hash),
		Role:         draft.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.InsertUser(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Novo Usuário",
		fmt.Sprintf("Cadastrou o usuário %s (%s)", u.Name, u.Email), actor)
	return u, nil
}

// Patch updates the editable profile fields. Email and password do not
// change through this path.
type Patch struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (s *Service) Update(ctx context.Context, id string, patch Patch, actor models.Actor) (*models.User, error) {
	patch.Name = strings.TrimSpace(patch.Name)
	if patch.Name == "" {
		return nil, models.NewValidationError("name", "is required")
	}
	if !knownRole(patch.Role) {
		return nil, models.NewValidationError("role", "unknown role "+patch.Role)
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = patch.Name
	u.Role = patch.Role
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "Editou Usuário",
		fmt.Sprintf("Alterou o usuário %s", u.Name), actor)
	return u, nil
}

// Delete removes a user. The acting user cannot delete themselves.
func (s *Service) Delete(ctx context.Context, id string, actor models.Actor) error {
	if id == actor.ID {
		return models.NewValidationError("id", "cannot delete your own account")
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, "Excluiu Usuário",
		fmt.Sprintf("Removeu o usuário %s (%s)", u.Name, u.Email), actor)
	return nil
}
