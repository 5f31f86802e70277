// Package realtime pushes gate activity to door dashboards. Publishing is
// fire-and-forget presentation glue: a dropped message costs a dashboard
// refresh, never a redemption.
package realtime

import (
	"log"

	pubnub "github.com/pubnub/go"

	"ticket-gate/models"
)

// GatePublisher broadcasts per-scan activity on a channel per event so
// supervisors can watch throughput and rejections across lanes live.
type GatePublisher struct {
	pubnub *pubnub.PubNub
}

func NewGatePublisher(pn *pubnub.PubNub) *GatePublisher {
	return &GatePublisher{pubnub: pn}
}

// PublishScan pushes one classified scan to the event's gate channel.
func (p *GatePublisher) PublishScan(eventID, device string, outcome *models.ScanOutcome) {
	if p == nil || p.pubnub == nil || outcome == nil {
		return
	}

	message := map[string]any{
		"type":           "gate_scan",
		"event_id":       eventID,
		"device":         device,
		"classification": outcome.Classification,
	}
	if outcome.Reason != "" {
		message["reason"] = outcome.Reason
	}
	if outcome.Ticket != nil {
		message["ticket_code"] = outcome.Ticket.Code
		message["ticket_type_id"] = outcome.Ticket.TypeID
	}

	channel := "gate-" + eventID
	_, _, err := p.pubnub.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		log.Printf("Failed to publish gate activity for event %s: %v", eventID, err)
	}
}
