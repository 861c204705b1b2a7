package validation

import "github.com/induslogic/isapa/internal/domain"

// Status classifies a validated sequence
type Status string

const (
	StatusValidReceipt      Status = "VALID_RECEIPT"
	StatusProtocolViolation Status = "PROTOCOL_VIOLATION"
)

// ReasonCode identifies a protocol violation
type ReasonCode string

const (
	ReasonUnknownSign         ReasonCode = "UnknownSignError"
	ReasonPrematureClose      ReasonCode = "PrematureClose"
	ReasonMissingSeal         ReasonCode = "MissingSeal"
	ReasonOrphanQuantity      ReasonCode = "OrphanPayloadOperator"
	ReasonDoubleOpen          ReasonCode = "DoubleOpen"
	ReasonFragmentTooShort    ReasonCode = "FragmentTooShort"
	ReasonInscriptionTooLong  ReasonCode = "InscriptionTooLong"
	ReasonForbiddenTransition ReasonCode = "ForbiddenTransition"
)

// Reason is one recorded violation.
// Position is the array index of the offending sign, -1 when the reason
// concerns the sequence as a whole.
type Reason struct {
	Code     ReasonCode `json:"code"`
	Position int        `json:"position"`
	Message  string     `json:"message"`
}

// DirectionEntry records the reading direction in effect after a point in
// processing. The initial entry has position -1; every consumed switch sign
// appends one entry.
type DirectionEntry struct {
	Position  int              `json:"position"`
	Direction domain.Direction `json:"direction"`
}

// TallyItem is one parsed payload group of a receipt
type TallyItem struct {
	Sign  domain.SignID `json:"sign"`
	Name  string        `json:"name"`
	Count int           `json:"count"`
}

// Result is the outcome of validating one sequence
type Result struct {
	Status       Status           `json:"status"`
	Reasons      []Reason         `json:"reasons"`
	DirectionLog []DirectionEntry `json:"direction_log"`
	Items        []TallyItem      `json:"items"`
	Processed    int              `json:"processed"`
}

// Valid reports whether the sequence was accepted
func (r Result) Valid() bool {
	return r.Status == StatusValidReceipt
}

// HasReason reports whether a violation code was recorded
func (r Result) HasReason(code ReasonCode) bool {
	for _, reason := range r.Reasons {
		if reason.Code == code {
			return true
		}
	}
	return false
}
