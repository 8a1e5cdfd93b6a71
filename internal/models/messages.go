package models

// User-facing messages for failures that carry no server-supplied text.
const (
	MessageUnreachable         = "Unknown error occurred. Is the server running?"
	MessageCredentialMalformed = "JWT response type is invalid. Did the model fail?"
	MessageCredentialMissing   = "Credential response did not contain a token."
	MessageAuthRejected        = "Authentication failed. Please reauthenticate."
	MessagePortfolioMalformed  = "Portfolio response type is invalid. Did the model fail silently?"
	MessageResponseTooLarge    = "Response from the server was too large to process."
)
