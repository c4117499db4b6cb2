package payment

import "context"

type LineItem struct {
	Name            string `json:"name"`
	Currency        string `json:"currency"`
	UnitAmountMinor int64  `json:"unit_amount"`
	Quantity        int32  `json:"quantity"`
}

type SessionRequest struct {
	Reference   string     `json:"reference"`
	LineItems   []LineItem `json:"line_items"`
	AmountMinor int64      `json:"amount"`
	Currency    string     `json:"currency"`
	SuccessURL  string     `json:"success_url"`
	CancelURL   string     `json:"cancel_url"`
}

type SessionResponse struct {
	SessionID  string `json:"id"`
	PaymentURL string `json:"payment_url"`
}

type SessionStatus struct {
	SessionID   string `json:"id"`
	State       string `json:"status"`
	AmountMinor int64  `json:"amount"`
}

// Only a completed session counts as paid, any other state (pending,
// expired, cancelled by the user) must not commit orders.
func (s SessionStatus) Paid() bool {
	return s.State == "completed"
}

// Gateway is the hosted-checkout contract: create a session the customer is
// redirected to, then look the session up to verify the payment outcome
// server side instead of trusting the redirect.
type Gateway interface {
	CreateSession(c context.Context, req SessionRequest) (SessionResponse, error)
	LookupSession(c context.Context, sessionID string) (SessionStatus, error)
}
