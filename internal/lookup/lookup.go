// Package lookup serves the manual fallback: a staff member types a
// ticket code instead of scanning. It is strictly read-only — a code is
// not a secret and never self-authorizes a redemption the way a signed
// token does, so actual redemption of a looked-up ticket goes through the
// verifier's RedeemByID.
package lookup

import (
	"context"
	"errors"
	"fmt"

	"ticket-gate/internal/store"
	"ticket-gate/models"
)

// CodeReader is the read slice of the store adapter.
type CodeReader interface {
	GetByCode(ctx context.Context, eventID, code string) (*models.Ticket, error)
}

var ErrNotFound = store.ErrNotFound

type Service struct {
	store CodeReader
}

func NewService(reader CodeReader) *Service {
	return &Service{store: reader}
}

// FindByCode returns the ticket registered under (eventID, code), with
// the same snapshot shape the verifier produces so the caller can render
// identical status information.
func (s *Service) FindByCode(ctx context.Context, eventID, code string) (*models.Snapshot, error) {
	if eventID == "" || code == "" {
		return nil, ErrNotFound
	}

	ticket, err := s.store.GetByCode(ctx, eventID, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup %s/%s: %w", eventID, code, err)
	}
	return ticket.Snapshot(), nil
}
