package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicket_Snapshot(t *testing.T) {
	usedAt := time.Date(2026, 8, 30, 19, 4, 0, 0, time.UTC)
	ticket := &Ticket{
		ID:         "T1",
		EventID:    "E1",
		TypeID:     "tier-vip",
		Code:       "AB12CD",
		OwnerID:    "user-1",
		Price:      decimal.NewFromFloat(49.50),
		Status:     TicketStatusUsed,
		UsedAt:     &usedAt,
		UsedBy:     "staff-1",
		UsedDevice: "lane-2",
	}

	snapshot := ticket.Snapshot()
	require.NotNil(t, snapshot)

	assert.Equal(t, "T1", snapshot.TicketID)
	assert.Equal(t, "E1", snapshot.EventID)
	assert.Equal(t, "tier-vip", snapshot.TypeID)
	assert.Equal(t, "AB12CD", snapshot.Code)
	assert.True(t, snapshot.Price.Equal(decimal.NewFromFloat(49.50)))
	assert.Equal(t, TicketStatusUsed, snapshot.Status)
	assert.Equal(t, &usedAt, snapshot.UsedAt)
	assert.Equal(t, "staff-1", snapshot.UsedBy)
}

func TestTicket_SnapshotNil(t *testing.T) {
	var ticket *Ticket
	assert.Nil(t, ticket.Snapshot())
}

func TestSnapshot_JSONHasNoOwner(t *testing.T) {
	ticket := &Ticket{ID: "T1", OwnerID: "user-1", Status: TicketStatusValid}

	data, err := json.Marshal(ticket.Snapshot())
	require.NoError(t, err)

	assert.NotContains(t, string(data), "user-1")
	assert.Contains(t, string(data), `"ticket_id":"T1"`)
}

func TestScanOutcome_Accepted(t *testing.T) {
	assert.True(t, (&ScanOutcome{Classification: ScanAccepted}).Accepted())
	assert.False(t, (&ScanOutcome{Classification: ScanDuplicate}).Accepted())
	assert.False(t, (&ScanOutcome{Classification: ScanInvalid}).Accepted())

	var outcome *ScanOutcome
	assert.False(t, outcome.Accepted())
}

func TestDeviceInfo_String(t *testing.T) {
	assert.Equal(t, "Gate A (scanner/2.1)", DeviceInfo{Label: "Gate A", UA: "scanner/2.1"}.String())
	assert.Equal(t, "Gate A", DeviceInfo{Label: "Gate A"}.String())
	assert.Equal(t, "scanner/2.1", DeviceInfo{UA: "scanner/2.1"}.String())
	assert.Equal(t, "", DeviceInfo{}.String())
}
