package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket statuses. The scan path only ever performs valid -> used;
// void is set out-of-band (refunds, cancellations) and is terminal.
const (
	TicketStatusValid = "valid"
	TicketStatusUsed  = "used"
	TicketStatusVoid  = "void"
)

type Ticket struct {
	ID         string          `json:"id"`
	EventID    string          `json:"event_id"`
	TypeID     string          `json:"ticket_type_id"`
	Code       string          `json:"ticket_code"`
	OwnerID    string          `json:"owner_id"`
	Price      decimal.Decimal `json:"price"`
	Status     string          `json:"status"` // valid, used, void
	UsedAt     *time.Time      `json:"used_at,omitempty"`
	UsedBy     string          `json:"used_by,omitempty"`
	UsedDevice string          `json:"used_device,omitempty"`
}

// Snapshot is the ticket view shown to gate staff after a scan decision.
// It intentionally omits the owner id.
type Snapshot struct {
	TicketID string          `json:"ticket_id"`
	EventID  string          `json:"event_id"`
	TypeID   string          `json:"ticket_type_id"`
	Code     string          `json:"ticket_code"`
	Price    decimal.Decimal `json:"price"`
	Status   string          `json:"status"`
	UsedAt   *time.Time      `json:"used_at,omitempty"`
	UsedBy   string          `json:"used_by,omitempty"`
}

func (t *Ticket) Snapshot() *Snapshot {
	if t == nil {
		return nil
	}
	return &Snapshot{
		TicketID: t.ID,
		EventID:  t.EventID,
		TypeID:   t.TypeID,
		Code:     t.Code,
		Price:    t.Price,
		Status:   t.Status,
		UsedAt:   t.UsedAt,
		UsedBy:   t.UsedBy,
	}
}
