package messages

import "time"

// AuditLogged is published for every mutating operation. The consumer
// persists it append-only; losing one degrades observability, not state.
type AuditLogged struct {
	LogID    string    `json:"log_id"`
	Action   string    `json:"action"`
	Details  string    `json:"details"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	LoggedAt time.Time `json:"logged_at"`
}
