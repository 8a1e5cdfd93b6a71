package models

// Credential is the bearer token used to authorize optimization requests,
// or the reason one could not be obtained.
type Credential struct {
	Token string `json:"jwt,omitempty"`
	Error string `json:"error,omitempty"`
}

// Present reports whether a token is held. Submission is gated on this.
func (c Credential) Present() bool {
	return c.Token != ""
}

// DomainError is a business-rule rejection reported by the optimization service.
type DomainError struct {
	Error string `json:"error"`
}
