// Package store is the sole boundary to persisted ticket state. Reads go
// through the record API; the redemption transition is a single
// conditional UPDATE so that two concurrent redeems can never both win.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"ticket-gate/models"
)

const ticketsCollection = "tickets"

// ErrNotFound reports a ticket that does not exist. Any other error from
// the adapter is infrastructure trouble and should be treated as
// transient.
var ErrNotFound = errors.New("ticket not found")

// RedeemStatus classifies the outcome of TryRedeem.
type RedeemStatus int

const (
	Redeemed RedeemStatus = iota
	AlreadyUsed
	WrongEvent
	NotFound
	Void
)

func (s RedeemStatus) String() string {
	switch s {
	case Redeemed:
		return "redeemed"
	case AlreadyUsed:
		return "already-used"
	case WrongEvent:
		return "wrong-event"
	case NotFound:
		return "not-found"
	case Void:
		return "void"
	}
	return "unknown"
}

// RedeemResult carries the classification plus the ticket as observed at
// decision time. Ticket is nil when the ticket does not exist.
type RedeemResult struct {
	Status RedeemStatus
	Ticket *models.Ticket
}

type Adapter struct {
	app core.App
}

func NewAdapter(app core.App) *Adapter {
	return &Adapter{app: app}
}

// GetByID fetches a ticket by its record id.
func (a *Adapter) GetByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	record, err := a.app.FindRecordById(ticketsCollection, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket %s: %w", ticketID, err)
	}
	return recordToTicket(record), nil
}

// GetByCode fetches a ticket by its human-typeable code, scoped to an
// event. Codes are unique per event, enforced by a collection index.
func (a *Adapter) GetByCode(ctx context.Context, eventID, code string) (*models.Ticket, error) {
	record, err := a.app.FindFirstRecordByFilter(
		ticketsCollection,
		"event = {:event} && code = {:code}",
		dbx.Params{"event": eventID, "code": code},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket by code: %w", err)
	}
	return recordToTicket(record), nil
}

// TryRedeem attempts the valid -> used transition as one conditional
// UPDATE: it succeeds only if the persisted status is exactly "valid" and
// the persisted event matches expectedEventID. The losing side of a race
// re-reads the record and observes the post-transition state, so it
// deterministically classifies as AlreadyUsed rather than erroring.
func (a *Adapter) TryRedeem(ctx context.Context, ticketID, expectedEventID, staffID, device string) (RedeemResult, error) {
	res, err := a.app.DB().Update(
		ticketsCollection,
		dbx.Params{
			"status":      models.TicketStatusUsed,
			"used_at":     types.NowDateTime(),
			"used_by":     staffID,
			"used_device": device,
		},
		dbx.HashExp{
			"id":     ticketID,
			"event":  expectedEventID,
			"status": models.TicketStatusValid,
		},
	).WithContext(ctx).Execute()
	if err != nil {
		return RedeemResult{}, fmt.Errorf("redeem ticket %s: %w", ticketID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return RedeemResult{}, fmt.Errorf("redeem ticket %s: %w", ticketID, err)
	}

	ticket, err := a.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RedeemResult{Status: NotFound}, nil
		}
		return RedeemResult{}, err
	}

	if affected == 1 {
		return RedeemResult{Status: Redeemed, Ticket: ticket}, nil
	}

	// The conditional write lost. Classify from the live record: scope
	// first, then state.
	if ticket.EventID != expectedEventID {
		return RedeemResult{Status: WrongEvent, Ticket: ticket}, nil
	}
	switch ticket.Status {
	case models.TicketStatusUsed:
		return RedeemResult{Status: AlreadyUsed, Ticket: ticket}, nil
	case models.TicketStatusVoid:
		return RedeemResult{Status: Void, Ticket: ticket}, nil
	}
	return RedeemResult{}, fmt.Errorf("redeem ticket %s: conditional update affected no rows but record is %q", ticketID, ticket.Status)
}

func recordToTicket(record *core.Record) *models.Ticket {
	ticket := &models.Ticket{
		ID:         record.Id,
		EventID:    record.GetString("event"),
		TypeID:     record.GetString("ticket_type"),
		Code:       record.GetString("code"),
		OwnerID:    record.GetString("owner"),
		Price:      decimal.NewFromFloat(record.GetFloat("price")),
		Status:     record.GetString("status"),
		UsedBy:     record.GetString("used_by"),
		UsedDevice: record.GetString("used_device"),
	}
	if usedAt := record.GetDateTime("used_at"); !usedAt.IsZero() {
		t := usedAt.Time()
		ticket.UsedAt = &t
	}
	return ticket
}
