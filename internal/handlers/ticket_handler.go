// handlers/ticket_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-gate/internal/store"
	"ticket-gate/internal/verifier"
)

type TicketHandler struct {
	app      *pocketbase.PocketBase
	verifier *verifier.Service
}

func NewTicketHandler(app *pocketbase.PocketBase, verifierService *verifier.Service) *TicketHandler {
	return &TicketHandler{
		app:      app,
		verifier: verifierService,
	}
}

// IssueToken - Mint the scannable token string for an existing ticket
func (h *TicketHandler) IssueToken(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		TicketID string `json:"ticket_id"`
	}

	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.TicketID == "" {
		return apis.NewBadRequestError("Ticket ID required", nil)
	}

	tokenString, err := h.verifier.IssueToken(e.Request.Context(), req.TicketID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return apis.NewNotFoundError("Ticket not found", nil)
		case errors.Is(err, verifier.ErrNotRedeemable):
			return apis.NewBadRequestError("Ticket is not redeemable", err)
		case errors.Is(err, verifier.ErrTransient):
			return transientJSON(e)
		}
		return apis.NewBadRequestError("Failed to issue token", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"token": tokenString})
}
