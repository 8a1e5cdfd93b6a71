// Package schema validates payloads received from the optimization service
// before any of their content is trusted.
//
// Decoders never panic: a payload that does not match its contract yields a
// *ValidationError carrying the raw bytes for diagnostic logging.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Contract names used in ValidationError.
const (
	ContractCredential      = "credential"
	ContractDomainError     = "domain_error"
	ContractPortfolioResult = "portfolio_result"
)

// maxRawInError bounds how much of the payload Error() echoes.
const maxRawInError = 256

// ValidationError reports a payload that does not match its expected contract.
type ValidationError struct {
	Contract string
	Reason   string
	Raw      []byte
}

func (e *ValidationError) Error() string {
	raw := e.Raw
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError]
	}
	return fmt.Sprintf("invalid %s payload: %s (raw: %q)", e.Contract, e.Reason, raw)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(contract string, raw []byte, format string, args ...any) *ValidationError {
	return &ValidationError{Contract: contract, Reason: fmt.Sprintf(format, args...), Raw: raw}
}

// object is a decoded JSON object whose member values are still raw.
type object struct {
	contract string
	raw      []byte
	fields   map[string]json.RawMessage
}

// decodeObject requires raw to be a JSON object (not null, array or scalar).
func decodeObject(contract string, raw []byte) (*object, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalid(contract, raw, "payload is not a JSON object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, invalid(contract, raw, "malformed JSON: %v", err)
	}
	return &object{contract: contract, raw: raw, fields: fields}, nil
}

func (o *object) fail(format string, args ...any) *ValidationError {
	return invalid(o.contract, o.raw, format, args...)
}

// optionalString returns ("", false, nil) when key is absent. A present key
// must hold a string; null is rejected.
func (o *object) optionalString(key string) (string, bool, error) {
	v, ok := o.fields[key]
	if !ok {
		return "", false, nil
	}
	var s string
	if isNull(v) || json.Unmarshal(v, &s) != nil {
		return "", false, o.fail("field %q must be a string", key)
	}
	return s, true, nil
}

func (o *object) requiredString(key string) (string, error) {
	s, ok, err := o.optionalString(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", o.fail("missing required field %q", key)
	}
	return s, nil
}

func (o *object) optionalNumber(key string) (float64, bool, error) {
	v, ok := o.fields[key]
	if !ok {
		return 0, false, nil
	}
	var n float64
	if isNull(v) || json.Unmarshal(v, &n) != nil {
		return 0, false, o.fail("field %q must be a number", key)
	}
	return n, true, nil
}

func (o *object) requiredNumber(key string) (float64, error) {
	n, ok, err := o.optionalNumber(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, o.fail("missing required field %q", key)
	}
	return n, nil
}

// requiredNumberMap decodes a JSON object of string -> number.
func (o *object) requiredNumberMap(key string) (map[string]float64, error) {
	v, ok := o.fields[key]
	if !ok {
		return nil, o.fail("missing required field %q", key)
	}
	if isNull(v) || bytes.TrimSpace(v)[0] != '{' {
		return nil, o.fail("field %q must be an object", key)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(v, &members); err != nil {
		return nil, o.fail("field %q must be an object", key)
	}
	out := make(map[string]float64, len(members))
	for k, raw := range members {
		var n float64
		if isNull(raw) || json.Unmarshal(raw, &n) != nil {
			return nil, o.fail("field %q: value for %q must be a number", key, k)
		}
		out[k] = n
	}
	return out, nil
}

func (o *object) optionalStringSlice(key string) ([]string, bool, error) {
	v, ok := o.fields[key]
	if !ok {
		return nil, false, nil
	}
	var s []string
	if isNull(v) || json.Unmarshal(v, &s) != nil {
		return nil, false, o.fail("field %q must be an array of strings", key)
	}
	return s, true, nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
