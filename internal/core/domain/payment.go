package domain

type PaymentOutcome string

const (
	OutcomeApproved  PaymentOutcome = "approved"
	OutcomeLimit     PaymentOutcome = "limit"
	OutcomeAntifraud PaymentOutcome = "antifraud"
)

// DeclineReason values as they appear in PaymentDeclined payloads.
const (
	DeclineLimit     = "limit"
	DeclineAntifraud = "antifraud"
	DeclineLookup    = "lookup_failed"
)

// PaymentInstrument is a card-like fixture. Number alone decides the outcome.
type PaymentInstrument struct {
	Name    string         `json:"name"`
	Number  string         `json:"number"`
	Holder  string         `json:"holder"`
	CVV     string         `json:"cvv"`
	Expiry  string         `json:"expiry"`
	Outcome PaymentOutcome `json:"outcome"`
}

type PaymentParams struct {
	Card         PaymentInstrument
	Installments int
}

type PaymentResult struct {
	Approved      bool   `json:"approved"`
	Reason        string `json:"reason,omitempty"`
	Method        string `json:"method"`
	Installments  int    `json:"installments,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}
