package models

import "time"

// Statuses are stored exactly as the board displays them (Portuguese labels).
// DONE and ARCHIVED are the terminal ones for the finished_at rule.
const (
	StatusOpen         = "Em Aberto"
	StatusAnalysis     = "Aguardando Resposta"
	StatusInTreatment  = "Em Tratativa"
	StatusBlockReturn  = "Bloqueio/Devolução"
	StatusFinanceAudit = "Auditoria Financeira"
	StatusDone         = "Concluído"
	StatusArchived     = "Arquivado"
)

// AllStatuses is the declared order used for per-status aggregation.
var AllStatuses = []string{
	StatusOpen,
	StatusAnalysis,
	StatusInTreatment,
	StatusBlockReturn,
	StatusFinanceAudit,
	StatusDone,
	StatusArchived,
}

// BoardColumns are the kanban columns; ARCHIVED never shows on the board.
var BoardColumns = []string{
	StatusOpen,
	StatusAnalysis,
	StatusInTreatment,
	StatusBlockReturn,
	StatusFinanceAudit,
	StatusDone,
}

func IsKnownStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether finished_at bookkeeping applies.
func IsTerminalStatus(status string) bool {
	return status == StatusDone || status == StatusArchived
}

// Flag names accepted by the lifecycle engine's ToggleFlag.
const (
	FlagResent         = "resent"
	FlagInvoiceDispute = "invoiceDispute"
	FlagLostReturn     = "lostReturn"
	FlagDamage         = "damage"
)

type TimelineEvent struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	UserName  string    `json:"user"`
}

type Occurrence struct {
	ID        string `json:"id"`
	CarrierID string `json:"carrierId"`

	TrackingCode  string `json:"trackingCode"`
	InvoiceNumber string `json:"invoiceNumber"`
	RecipientName string `json:"recipientName"`
	State         string `json:"state"` // UF, two letters

	Status string `json:"status"`

	CreatedAt      time.Time  `json:"createdAt"`
	OccurrenceDate string     `json:"occurrenceDate"` // user-supplied date, YYYY-MM-DD
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`

	InvoiceValue float64 `json:"invoiceValue"`
	FreightValue float64 `json:"freightValue"`

	FlagResent         bool    `json:"flagResent"`
	ResentCarrierID    *string `json:"resentCarrierId,omitempty"`
	ResentTrackingCode *string `json:"resentTrackingCode,omitempty"`

	FlagInvoiceDispute bool `json:"flagInvoiceDispute"`
	FlagLostReturn     bool `json:"flagLostReturn"`
	FlagDamage         bool `json:"flagDamage"`

	ResponsibleUsers []string `json:"responsibleUsers"`

	Notes []TimelineEvent `json:"notes"`
}

type OccurrenceDraft struct {
	CarrierID      string  `json:"carrierId"`
	TrackingCode   string  `json:"trackingCode"`
	InvoiceNumber  string  `json:"invoiceNumber"`
	RecipientName  string  `json:"recipientName"`
	State          string  `json:"state"`
	OccurrenceDate string  `json:"occurrenceDate"`
	InvoiceValue   float64 `json:"invoiceValue"`
	FreightValue   float64 `json:"freightValue"`
	InitialNote    string  `json:"initialNote"`
}

// OccurrencePatch is the full-edit payload. Status participates, so the
// finished_at rule is re-applied on edit exactly as on a status move.
type OccurrencePatch struct {
	CarrierID          string   `json:"carrierId"`
	TrackingCode       string   `json:"trackingCode"`
	InvoiceNumber      string   `json:"invoiceNumber"`
	RecipientName      string   `json:"recipientName"`
	State              string   `json:"state"`
	Status             string   `json:"status"`
	OccurrenceDate     string   `json:"occurrenceDate"`
	InvoiceValue       float64  `json:"invoiceValue"`
	FreightValue       float64  `json:"freightValue"`
	FlagResent         bool     `json:"flagResent"`
	ResentCarrierID    *string  `json:"resentCarrierId"`
	ResentTrackingCode *string  `json:"resentTrackingCode"`
	FlagInvoiceDispute bool     `json:"flagInvoiceDispute"`
	FlagLostReturn     bool     `json:"flagLostReturn"`
	FlagDamage         bool     `json:"flagDamage"`
	ResponsibleUsers   []string `json:"responsibleUsers"`
}
