// Package orchestrator runs portfolio submissions against the optimization
// service and folds every outcome into the credential and portfolio stores.
package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bobmcallan/vire-optimizer/internal/client"
	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/models"
	"github.com/bobmcallan/vire-optimizer/internal/portfolio"
	"github.com/bobmcallan/vire-optimizer/internal/schema"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	// ModelPath is the optimization endpoint.
	ModelPath = "/model"
	// HealthPath is the liveness endpoint.
	HealthPath = "/healthcheck"

	// StatusAuthRejected is the reserved status the service returns when the
	// presented token is invalid or expired.
	StatusAuthRejected = 444
)

// ErrSubmissionInFlight is returned when a submission is started while
// another is still awaiting its response.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Transport is the subset of the gateway the orchestrator uses.
type Transport interface {
	Get(ctx context.Context, path string) (*client.Response, error)
	Put(ctx context.Context, path string, body any, headers http.Header) (*client.Response, error)
}

// CredentialStore supplies the token and accepts rejections.
type CredentialStore interface {
	Current() models.Credential
	MarkInvalid(message string)
}

// StateStore receives portfolio transitions.
type StateStore interface {
	Apply(t portfolio.Transition)
}

// OutcomeKind classifies a completed submission attempt.
type OutcomeKind int

const (
	OutcomeSet OutcomeKind = iota + 1
	OutcomeDomainError
	OutcomeAuthRejected
	OutcomeTransportError
	OutcomeContractError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSet:
		return "set"
	case OutcomeDomainError:
		return "domain_error"
	case OutcomeAuthRejected:
		return "auth_rejected"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeContractError:
		return "contract_error"
	default:
		return "unknown"
	}
}

// Outcome reports how an attempt was classified and the message folded into
// the affected store. StatusCode is 0 when no response was obtained.
type Outcome struct {
	Kind       OutcomeKind
	Message    string
	StatusCode int
}

// Orchestrator sequences one submission at a time.
type Orchestrator struct {
	transport Transport
	creds     CredentialStore
	state     StateStore
	logger    *common.Logger
	metrics   *Metrics

	guard    *semaphore.Weighted
	inFlight atomic.Bool
}

// NewOrchestrator wires the orchestrator. metrics may be nil.
func NewOrchestrator(transport Transport, creds CredentialStore, state StateStore, logger *common.Logger, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		transport: transport,
		creds:     creds,
		state:     state,
		logger:    logger,
		metrics:   metrics,
		guard:     semaphore.NewWeighted(1),
	}
}

// InFlight reports whether a submission is awaiting its response.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// CanSubmit reports whether a credential is held and nothing is in flight.
func (o *Orchestrator) CanSubmit() bool {
	return o.creds.Current().Present() && !o.InFlight()
}

// Submit sends input to the service and applies exactly one transition to the
// credential or portfolio store. The only errors returned are
// models.ErrInvalidInput and ErrSubmissionInFlight, neither of which contacts
// the service or changes any store.
func (o *Orchestrator) Submit(ctx context.Context, input models.SubmissionInput) (Outcome, error) {
	if err := input.Validate(); err != nil {
		return Outcome{}, err
	}
	if !o.guard.TryAcquire(1) {
		return Outcome{}, ErrSubmissionInFlight
	}
	o.inFlight.Store(true)
	defer func() {
		o.inFlight.Store(false)
		o.guard.Release(1)
	}()

	ctx = common.WithCorrelationID(ctx, uuid.New().String())
	cid := common.CorrelationID(ctx)
	o.logger.Info().Str("correlation_id", cid).Float64("value", input.Value).Strs("tickers", input.Tickers).Msg("submitting portfolio")

	start := time.Now()
	outcome := o.exchange(ctx, input)
	o.metrics.observe(outcome.Kind, time.Since(start))

	o.logger.Info().Str("correlation_id", cid).Str("outcome", outcome.Kind.String()).Int("status", outcome.StatusCode).Msg("submission complete")
	return outcome, nil
}

func (o *Orchestrator) exchange(ctx context.Context, input models.SubmissionInput) Outcome {
	cid := common.CorrelationID(ctx)
	headers := http.Header{}
	// Sent even when empty; the service decides what an absent token means.
	headers.Set("Authorization", o.creds.Current().Token)

	resp, err := o.transport.Put(ctx, ModelPath, input, headers)
	if errors.Is(err, client.ErrResponseTooLarge) {
		o.logger.Error().Str("correlation_id", cid).Str("error", err.Error()).Msg("portfolio response too large")
		return o.fail(OutcomeContractError, 0, models.MessageResponseTooLarge)
	}
	if err != nil {
		o.logger.Error().Str("correlation_id", cid).Str("error", err.Error()).Bool("transport", client.IsTransportError(err)).Msg("portfolio request failed")
		return o.fail(OutcomeTransportError, 0, models.MessageUnreachable)
	}

	switch {
	case resp.StatusCode == StatusAuthRejected:
		de, verr := schema.DomainErrorOr(resp.Body, models.MessageAuthRejected)
		if verr != nil {
			o.logger.Error().Str("correlation_id", cid).Int("status", resp.StatusCode).Str("error", verr.Error()).Msg("malformed authentication error response")
		} else {
			o.logger.Warn().Str("correlation_id", cid).Str("reason", de.Error).Msg("credential rejected")
		}
		o.creds.MarkInvalid(de.Error)
		return Outcome{Kind: OutcomeAuthRejected, Message: de.Error, StatusCode: resp.StatusCode}

	case !resp.OK():
		de, verr := schema.DomainErrorOr(resp.Body, models.MessageUnreachable)
		if verr != nil {
			o.logger.Error().Str("correlation_id", cid).Int("status", resp.StatusCode).Str("error", verr.Error()).Msg("malformed error response")
			return o.fail(OutcomeContractError, resp.StatusCode, de.Error)
		}
		o.logger.Warn().Str("correlation_id", cid).Int("status", resp.StatusCode).Str("reason", de.Error).Msg("portfolio request rejected")
		return o.fail(OutcomeDomainError, resp.StatusCode, de.Error)
	}

	result, err := schema.DecodePortfolioResult(resp.Body)
	if err != nil {
		o.logger.Error().Str("correlation_id", cid).Int("status", resp.StatusCode).Str("error", err.Error()).Msg("malformed portfolio response")
		return o.fail(OutcomeContractError, resp.StatusCode, models.MessagePortfolioMalformed)
	}

	o.state.Apply(portfolio.Set(result))
	return Outcome{Kind: OutcomeSet, StatusCode: resp.StatusCode}
}

func (o *Orchestrator) fail(kind OutcomeKind, status int, message string) Outcome {
	o.state.Apply(portfolio.Fail(message))
	return Outcome{Kind: kind, Message: message, StatusCode: status}
}
