// Package verifier is the single entry point for turning a scanned string
// into a redemption decision. Order matters: decode, authenticate, then
// and only then touch the store. Unauthenticated input must never trigger
// a store lookup.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticket-gate/internal/store"
	"ticket-gate/internal/token"
	"ticket-gate/models"
	"ticket-gate/monitoring"
	"ticket-gate/utils"
)

// TicketStore is the slice of the store adapter the verifier drives.
type TicketStore interface {
	GetByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	TryRedeem(ctx context.Context, ticketID, expectedEventID, staffID, device string) (store.RedeemResult, error)
}

// ErrTransient wraps store unavailability. Callers must retry or queue,
// never present it as a ticket rejection; the conditional update
// guarantees a retried request has no partial effect to compound.
var ErrTransient = errors.New("ticket store unavailable")

// ErrNotRedeemable reports an issue-token request for a ticket whose
// status is no longer valid.
var ErrNotRedeemable = errors.New("ticket is not redeemable")

type Service struct {
	signer       *token.Signer
	store        TicketStore
	breaker      *utils.CircuitBreaker
	maxTokenAge  time.Duration // 0 disables the freshness check
	storeTimeout time.Duration
	now          func() time.Time
}

func NewService(signer *token.Signer, ticketStore TicketStore, maxTokenAge, storeTimeout time.Duration) *Service {
	return &Service{
		signer:       signer,
		store:        ticketStore,
		breaker:      utils.NewCircuitBreaker("ticket-store"),
		maxTokenAge:  maxTokenAge,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// VerifyAndRedeem authenticates a scanned transport string and, if it
// holds up, performs the one-time valid -> used transition. The returned
// error is non-nil only for transient infrastructure failure; every
// ticket-level decision comes back as a classified ScanOutcome.
//
// Repeated calls with the same string after a success all classify as
// duplicate; the store's conditional update is the sole ordering
// authority between racing lanes.
func (s *Service) VerifyAndRedeem(ctx context.Context, raw, expectedEventID, staffID, device string) (*models.ScanOutcome, error) {
	started := s.now()

	tok, err := token.Decode(raw)
	if err != nil {
		slog.Debug("scan rejected before store access", "reason", models.ReasonBadFormat)
		return s.reject(expectedEventID, models.ReasonBadFormat), nil
	}

	if !s.signer.Verify(tok.PayloadBytes, tok.Signature) {
		slog.Debug("scan rejected before store access", "reason", models.ReasonBadSignature)
		return s.reject(expectedEventID, models.ReasonBadSignature), nil
	}

	if s.maxTokenAge > 0 {
		issued := time.Unix(tok.Payload.IssuedAt, 0)
		if s.now().Sub(issued) > s.maxTokenAge {
			return s.reject(expectedEventID, models.ReasonExpired), nil
		}
	}

	// The signed event claim is the authenticated scope; the caller's
	// expectedEventID is the authorization scope. A token minted for
	// another event is rejected here without any store access, and the
	// adapter re-checks the live record independently.
	if tok.Payload.EventID != expectedEventID {
		return s.reject(expectedEventID, models.ReasonWrongEvent), nil
	}

	result, err := s.tryRedeem(ctx, tok.Payload.TicketID, expectedEventID, staffID, device)
	if err != nil {
		slog.Error("redemption failed", "ticket_id", tok.Payload.TicketID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	outcome := outcomeFromResult(result)
	monitoring.TrackScan(expectedEventID, outcome.Classification, outcome.Reason)
	monitoring.ObserveRedemption(expectedEventID, s.now().Sub(started))
	return outcome, nil
}

// RedeemByID is the manual-fallback path: the staff member already found
// the ticket through an authenticated lookup, so there is no signature to
// check, but the event scoping and the atomic transition are identical.
func (s *Service) RedeemByID(ctx context.Context, ticketID, expectedEventID, staffID, device string) (*models.ScanOutcome, error) {
	result, err := s.tryRedeem(ctx, ticketID, expectedEventID, staffID, device)
	if err != nil {
		slog.Error("manual redemption failed", "ticket_id", ticketID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	outcome := outcomeFromResult(result)
	monitoring.TrackScan(expectedEventID, outcome.Classification, outcome.Reason)
	return outcome, nil
}

// IssueToken mints the scannable string for an existing valid ticket:
// canonical payload bytes, MAC under the current secret, transport
// encoding. Minting for used or void tickets is refused.
func (s *Service) IssueToken(ctx context.Context, ticketID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	ticket, err := s.store.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if ticket.Status != models.TicketStatusValid {
		return "", fmt.Errorf("%w: status is %s", ErrNotRedeemable, ticket.Status)
	}

	nonce, err := utils.GenerateCode(8)
	if err != nil {
		return "", err
	}

	payload := token.Payload{
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		IssuedAt: s.now().Unix(),
		Nonce:    nonce,
	}
	payloadBytes, err := payload.CanonicalBytes()
	if err != nil {
		return "", err
	}
	return token.Encode(payloadBytes, s.signer.Sign(payloadBytes)), nil
}

func (s *Service) tryRedeem(ctx context.Context, ticketID, expectedEventID, staffID, device string) (store.RedeemResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	result, err := s.breaker.Execute(ctx, func() (any, error) {
		return s.store.TryRedeem(ctx, ticketID, expectedEventID, staffID, device)
	})
	if err != nil {
		return store.RedeemResult{}, err
	}
	return result.(store.RedeemResult), nil
}

func (s *Service) reject(eventID, reason string) *models.ScanOutcome {
	outcome := &models.ScanOutcome{Classification: models.ScanInvalid, Reason: reason}
	monitoring.TrackScan(eventID, outcome.Classification, outcome.Reason)
	return outcome
}

func outcomeFromResult(result store.RedeemResult) *models.ScanOutcome {
	snapshot := result.Ticket.Snapshot()
	switch result.Status {
	case store.Redeemed:
		return &models.ScanOutcome{Classification: models.ScanAccepted, Ticket: snapshot}
	case store.AlreadyUsed:
		return &models.ScanOutcome{Classification: models.ScanDuplicate, Reason: models.ReasonAlreadyUsed, Ticket: snapshot}
	case store.WrongEvent:
		return &models.ScanOutcome{Classification: models.ScanInvalid, Reason: models.ReasonWrongEvent, Ticket: snapshot}
	case store.Void:
		return &models.ScanOutcome{Classification: models.ScanInvalid, Reason: models.ReasonVoid, Ticket: snapshot}
	default:
		return &models.ScanOutcome{Classification: models.ScanInvalid, Reason: models.ReasonNotFound}
	}
}
