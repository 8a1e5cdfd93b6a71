package schema

import (
	"strings"

	"github.com/bobmcallan/vire-optimizer/internal/models"
)

// DecodeCredential validates a GET /jwt response body: an object whose
// optional "jwt" and "error" members are strings.
func DecodeCredential(raw []byte) (models.Credential, error) {
	obj, err := decodeObject(ContractCredential, raw)
	if err != nil {
		return models.Credential{}, err
	}
	token, _, err := obj.optionalString("jwt")
	if err != nil {
		return models.Credential{}, err
	}
	msg, _, err := obj.optionalString("error")
	if err != nil {
		return models.Credential{}, err
	}
	return models.Credential{Token: token, Error: msg}, nil
}

// DecodeDomainError validates a {"error": string} body.
func DecodeDomainError(raw []byte) (models.DomainError, error) {
	obj, err := decodeObject(ContractDomainError, raw)
	if err != nil {
		return models.DomainError{}, err
	}
	msg, err := obj.requiredString("error")
	if err != nil {
		return models.DomainError{}, err
	}
	return models.DomainError{Error: msg}, nil
}

// DomainErrorOr decodes raw as a DomainError and falls back to a DomainError
// carrying fallback when it does not validate. The validation error is still
// returned so callers can log the malformed payload. A valid body with a blank
// message also takes fallback, without an error.
func DomainErrorOr(raw []byte, fallback string) (models.DomainError, error) {
	de, err := DecodeDomainError(raw)
	if err != nil {
		return models.DomainError{Error: fallback}, err
	}
	if strings.TrimSpace(de.Error) == "" {
		de.Error = fallback
	}
	return de, nil
}
