// Package session holds the authentication credential used to authorize
// optimization requests and persists it across restarts.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bobmcallan/vire-optimizer/internal/client"
	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/interfaces"
	"github.com/bobmcallan/vire-optimizer/internal/models"
	"github.com/bobmcallan/vire-optimizer/internal/schema"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// CredentialPath is the credential-issuing endpoint.
const CredentialPath = "/jwt"

// Getter performs a GET against the optimization service.
type Getter interface {
	Get(ctx context.Context, path string) (*client.Response, error)
}

// Store is the single source of truth for the current credential.
// Only Load, Acquire, MarkInvalid and Forget mutate it.
type Store struct {
	mu          sync.RWMutex
	cred        models.Credential
	subscribers []func(models.Credential)

	gateway    Getter
	kv         interfaces.KeyValueStorage
	storageKey string
	logger     *common.Logger
	acquiring  singleflight.Group
}

// NewStore creates an empty credential store. The token is persisted in kv
// under storageKey.
func NewStore(gateway Getter, kv interfaces.KeyValueStorage, storageKey string, logger *common.Logger) *Store {
	return &Store{
		gateway:    gateway,
		kv:         kv,
		storageKey: storageKey,
		logger:     logger,
	}
}

// Current returns a copy of the current credential.
func (s *Store) Current() models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// Present reports whether a token is held.
func (s *Store) Present() bool {
	return s.Current().Present()
}

// Subscribe registers fn to be called after every credential change.
func (s *Store) Subscribe(fn func(models.Credential)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Load adopts a previously persisted token. A missing entry, or a storage
// failure, leaves the credential empty.
func (s *Store) Load(ctx context.Context) models.Credential {
	token, err := s.kv.Get(ctx, s.storageKey)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			s.logger.Warn().Str("key", s.storageKey).Str("error", err.Error()).Msg("failed to read persisted credential")
		}
		return s.Current()
	}
	if token == "" {
		return s.Current()
	}

	s.logger.Debug().Msg("restored persisted credential")
	return s.set(models.Credential{Token: token})
}

// Acquire requests a new credential from the service. On success the token
// replaces the current credential and is persisted; on failure the credential
// carries the reason. Concurrent calls share one request.
func (s *Store) Acquire(ctx context.Context) models.Credential {
	if common.CorrelationID(ctx) == "" {
		ctx = common.WithCorrelationID(ctx, uuid.New().String())
	}
	v, _, _ := s.acquiring.Do("acquire", func() (any, error) {
		return s.acquire(ctx), nil
	})
	return v.(models.Credential)
}

func (s *Store) acquire(ctx context.Context) models.Credential {
	cid := common.CorrelationID(ctx)
	resp, err := s.gateway.Get(ctx, CredentialPath)
	if errors.Is(err, client.ErrResponseTooLarge) {
		s.logger.Error().Str("correlation_id", cid).Str("error", err.Error()).Msg("credential response too large")
		return s.set(models.Credential{Error: models.MessageResponseTooLarge})
	}
	if err != nil {
		s.logger.Error().Str("correlation_id", cid).Str("error", err.Error()).Bool("transport", client.IsTransportError(err)).Msg("credential request failed")
		return s.set(models.Credential{Error: models.MessageUnreachable})
	}

	if !resp.OK() {
		de, verr := schema.DomainErrorOr(resp.Body, models.MessageUnreachable)
		if verr != nil {
			s.logger.Error().Str("correlation_id", cid).Int("status", resp.StatusCode).Str("error", verr.Error()).Msg("malformed credential error response")
		} else {
			s.logger.Warn().Str("correlation_id", cid).Int("status", resp.StatusCode).Str("reason", de.Error).Msg("credential request rejected")
		}
		return s.set(models.Credential{Error: de.Error})
	}

	cred, err := schema.DecodeCredential(resp.Body)
	if err != nil {
		s.logger.Error().Str("correlation_id", cid).Str("error", err.Error()).Msg("malformed credential response")
		return s.set(models.Credential{Error: models.MessageCredentialMalformed})
	}

	if !cred.Present() {
		msg := cred.Error
		if strings.TrimSpace(msg) == "" {
			msg = models.MessageCredentialMissing
		}
		s.logger.Warn().Str("correlation_id", cid).Str("reason", msg).Msg("credential response carried no token")
		return s.set(models.Credential{Error: msg})
	}

	if err := s.kv.Set(ctx, s.storageKey, cred.Token); err != nil {
		// The token is still valid for this process.
		s.logger.Warn().Str("correlation_id", cid).Str("key", s.storageKey).Str("error", err.Error()).Msg("failed to persist credential")
	}

	s.logger.Info().Str("correlation_id", cid).Msg("credential acquired")
	return s.set(models.Credential{Token: cred.Token})
}

// MarkInvalid replaces the credential with an error after the service
// rejected the held token. The persisted token is left in place; discarding
// it is an explicit Forget.
func (s *Store) MarkInvalid(message string) {
	s.logger.Warn().Str("reason", message).Msg("credential rejected by service")
	s.set(models.Credential{Error: message})
}

// Forget clears the credential and deletes the persisted token.
func (s *Store) Forget(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.storageKey); err != nil {
		return err
	}
	s.set(models.Credential{})
	s.logger.Info().Msg("credential forgotten")
	return nil
}

func (s *Store) set(cred models.Credential) models.Credential {
	s.mu.Lock()
	s.cred = cred
	subs := append([]func(models.Credential){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cred)
	}
	return cred
}
