package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"ticket-gate/models"
)

func TestRejectionStatus(t *testing.T) {
	cases := []struct {
		reason string
		status int
	}{
		{models.ReasonBadFormat, http.StatusBadRequest},
		{models.ReasonBadSignature, http.StatusBadRequest},
		{models.ReasonExpired, http.StatusBadRequest},
		{models.ReasonWrongEvent, http.StatusBadRequest},
		{models.ReasonVoid, http.StatusBadRequest},
		{models.ReasonAlreadyUsed, http.StatusConflict},
		{models.ReasonNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.reason, func(t *testing.T) {
			assert.Equal(t, tc.status, rejectionStatus(tc.reason))
		})
	}
}

func TestRejectionMessage_CoversAllReasons(t *testing.T) {
	reasons := []string{
		models.ReasonBadFormat,
		models.ReasonBadSignature,
		models.ReasonExpired,
		models.ReasonWrongEvent,
		models.ReasonAlreadyUsed,
		models.ReasonNotFound,
		models.ReasonVoid,
	}

	seen := map[string]bool{}
	for _, reason := range reasons {
		message := rejectionMessage(reason)
		assert.NotEmpty(t, message)
		assert.False(t, seen[message], "message for %s reused", reason)
		seen[message] = true
	}

	assert.Equal(t, "Ticket rejected", rejectionMessage("something-new"))
}
