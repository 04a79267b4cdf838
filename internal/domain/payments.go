package domain

// ============================================================
// Payment / Identity collaborator (Stripe)
// ============================================================

// SandboxMessage prefix used when the payment provider is not configured.
const SandboxPrefix = "SANDBOX_MODE"

// CheckoutRequest is the body for POST /v1/checkout.
type CheckoutRequest struct {
	MissionID  string  `json:"missionId"`
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	ProviderID string  `json:"providerId"`
}

// CheckoutSession is the result of creating a payment checkout session.
// When Sandbox is true no provider call was made and URL is empty.
type CheckoutSession struct {
	URL     string `json:"url,omitempty"`
	Sandbox bool   `json:"sandbox,omitempty"`
	Message string `json:"message,omitempty"`
}

// IdentityRequest is the body for POST /v1/identity.
type IdentityRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// IdentitySession is the result of creating an identity verification
// session.
type IdentitySession struct {
	URL     string `json:"url,omitempty"`
	ID      string `json:"id,omitempty"`
	Sandbox bool   `json:"sandbox,omitempty"`
	Message string `json:"message,omitempty"`
}
