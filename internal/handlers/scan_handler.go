// handlers/scan_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-gate/internal/lookup"
	"ticket-gate/internal/realtime"
	"ticket-gate/internal/verifier"
	"ticket-gate/models"
	"ticket-gate/monitoring"
	"ticket-gate/security"
)

type ScanHandler struct {
	app       *pocketbase.PocketBase
	verifier  *verifier.Service
	lookup    *lookup.Service
	limiter   *security.LookupLimiter
	publisher *realtime.GatePublisher
}

func NewScanHandler(
	app *pocketbase.PocketBase,
	verifierService *verifier.Service,
	lookupService *lookup.Service,
	limiter *security.LookupLimiter,
	publisher *realtime.GatePublisher,
) *ScanHandler {
	return &ScanHandler{
		app:       app,
		verifier:  verifierService,
		lookup:    lookupService,
		limiter:   limiter,
		publisher: publisher,
	}
}

// Verify - Verify a scanned token and redeem the ticket
func (h *ScanHandler) Verify(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		QRString   string            `json:"qr_string"`
		EventID    string            `json:"event_id"`
		DeviceInfo models.DeviceInfo `json:"device_info"`
	}

	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.EventID == "" {
		return apis.NewBadRequestError("Event ID required", nil)
	}
	if req.QRString == "" {
		return rejectionJSON(e, &models.ScanOutcome{
			Classification: models.ScanInvalid,
			Reason:         models.ReasonBadFormat,
		})
	}

	ctx := e.Request.Context()

	outcome, err := h.verifier.VerifyAndRedeem(ctx, req.QRString, req.EventID, e.Auth.Id, req.DeviceInfo.String())
	if err != nil {
		return transientJSON(e)
	}

	h.publisher.PublishScan(req.EventID, req.DeviceInfo.Label, outcome)

	if outcome.Accepted() {
		return e.JSON(http.StatusOK, map[string]any{
			"success": true,
			"ticket":  outcome.Ticket,
		})
	}
	return rejectionJSON(e, outcome)
}

// Redeem - Redeem a ticket by id after a manual lookup
func (h *ScanHandler) Redeem(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		TicketID   string            `json:"ticket_id"`
		EventID    string            `json:"event_id"`
		DeviceInfo models.DeviceInfo `json:"device_info"`
	}

	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.TicketID == "" || req.EventID == "" {
		return apis.NewBadRequestError("Ticket ID and event ID required", nil)
	}

	ctx := e.Request.Context()

	outcome, err := h.verifier.RedeemByID(ctx, req.TicketID, req.EventID, e.Auth.Id, req.DeviceInfo.String())
	if err != nil {
		return transientJSON(e)
	}

	h.publisher.PublishScan(req.EventID, req.DeviceInfo.Label, outcome)

	if outcome.Accepted() {
		return e.JSON(http.StatusOK, map[string]any{
			"success": true,
			"ticket":  outcome.Ticket,
		})
	}
	return rejectionJSON(e, outcome)
}

// Lookup - Find a ticket by its human-typeable code
func (h *ScanHandler) Lookup(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	eventID := e.Request.URL.Query().Get("event_id")
	code := e.Request.URL.Query().Get("code")
	if eventID == "" || code == "" {
		return apis.NewBadRequestError("Event ID and code required", nil)
	}

	ctx := e.Request.Context()

	if err := h.limiter.Allow(ctx, e.Auth.Id, eventID); err != nil {
		monitoring.TrackRateLimited(eventID)
		return e.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "Rate limit exceeded. Please try again later.",
		})
	}

	snapshot, err := h.lookup.FindByCode(ctx, eventID, code)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			monitoring.TrackLookup(eventID, "not-found")
			return e.JSON(http.StatusOK, map[string]any{"status": "not-found"})
		}
		return transientJSON(e)
	}

	monitoring.TrackLookup(eventID, "ok")
	return e.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"ticket": snapshot,
	})
}

// rejectionJSON renders a non-accepted outcome with its stable reason
// code. Clients branch on reason, never on message text.
func rejectionJSON(e *core.RequestEvent, outcome *models.ScanOutcome) error {
	body := map[string]any{
		"success": false,
		"reason":  outcome.Reason,
		"message": rejectionMessage(outcome.Reason),
	}
	if outcome.Ticket != nil {
		body["ticket"] = outcome.Ticket
	}
	return e.JSON(rejectionStatus(outcome.Reason), body)
}

func rejectionStatus(reason string) int {
	switch reason {
	case models.ReasonAlreadyUsed:
		return http.StatusConflict
	case models.ReasonNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func transientJSON(e *core.RequestEvent) error {
	return e.JSON(http.StatusServiceUnavailable, map[string]any{
		"success": false,
		"reason":  models.ReasonTransientError,
		"message": "Ticket store unavailable, please retry",
	})
}

func rejectionMessage(reason string) string {
	switch reason {
	case models.ReasonBadFormat:
		return "Code could not be read, rescan the ticket"
	case models.ReasonBadSignature:
		return "Ticket code failed verification"
	case models.ReasonExpired:
		return "Ticket code has expired"
	case models.ReasonWrongEvent:
		return "Ticket belongs to a different event"
	case models.ReasonAlreadyUsed:
		return "Ticket was already scanned"
	case models.ReasonNotFound:
		return "Unknown ticket"
	case models.ReasonVoid:
		return "Ticket was cancelled"
	}
	return "Ticket rejected"
}
