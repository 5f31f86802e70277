package models

// Classification buckets the scan session counts.
const (
	ScanAccepted  = "accepted"
	ScanDuplicate = "duplicate"
	ScanInvalid   = "invalid"
)

// Machine-readable rejection reasons. Clients branch on these, never on
// message text.
const (
	ReasonBadFormat      = "bad-format"
	ReasonBadSignature   = "bad-signature"
	ReasonExpired        = "expired"
	ReasonWrongEvent     = "wrong-event"
	ReasonAlreadyUsed    = "already-used"
	ReasonNotFound       = "not-found"
	ReasonVoid           = "void"
	ReasonTransientError = "transient-error"
)

// ScanOutcome is the classified result of a single verify-and-redeem
// attempt. Ticket is nil for bad-format, bad-signature, expired and
// not-found outcomes.
type ScanOutcome struct {
	Classification string    `json:"classification"` // accepted, duplicate, invalid
	Reason         string    `json:"reason,omitempty"`
	Ticket         *Snapshot `json:"ticket,omitempty"`
}

func (o *ScanOutcome) Accepted() bool {
	return o != nil && o.Classification == ScanAccepted
}

// DeviceInfo identifies the scanning lane for the redemption audit fields.
type DeviceInfo struct {
	Label string `json:"label"`
	UA    string `json:"ua"`
}

func (d DeviceInfo) String() string {
	if d.Label == "" {
		return d.UA
	}
	if d.UA == "" {
		return d.Label
	}
	return d.Label + " (" + d.UA + ")"
}
