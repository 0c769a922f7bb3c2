package models

import "time"

const (
	RoleMaster = "Master"
	RoleUser   = "Usuário"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Actor is the authenticated identity attached to mutating requests.
// The role is taken from the session token as-is; there is no second
// authorization check below the HTTP layer.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (a Actor) IsMaster() bool {
	return a.Role == RoleMaster
}
