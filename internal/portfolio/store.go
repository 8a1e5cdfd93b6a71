// Package portfolio folds submission outcomes into the displayed portfolio state.
package portfolio

import (
	"sync"

	"github.com/bobmcallan/vire-optimizer/internal/models"
)

// TransitionKind distinguishes the two state transitions.
type TransitionKind int

const (
	// TransitionSet replaces the state with a validated result.
	TransitionSet TransitionKind = iota + 1
	// TransitionError marks the state as failed with a message.
	TransitionError
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionSet:
		return "SET"
	case TransitionError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Transition is one state change emitted by the orchestrator.
type Transition struct {
	Kind    TransitionKind
	Result  *models.PortfolioResult
	Message string
}

// Set builds a SET transition.
func Set(result models.PortfolioResult) Transition {
	return Transition{Kind: TransitionSet, Result: &result}
}

// Fail builds an ERROR transition.
func Fail(message string) Transition {
	return Transition{Kind: TransitionError, Message: message}
}

// Reduce applies t to state and returns the new state. state may be nil
// (nothing submitted yet). The input state is never modified.
//
// SET replaces the state wholesale. ERROR keeps the previous result's fields
// so the last good allocation stays visible, and overwrites status and error.
func Reduce(state *models.PortfolioResult, t Transition) *models.PortfolioResult {
	switch t.Kind {
	case TransitionSet:
		return t.Result.Clone()
	case TransitionError:
		next := state.Clone()
		if next == nil {
			next = &models.PortfolioResult{}
		}
		next.Status = models.StatusError
		next.Error = t.Message
		return next
	default:
		return state
	}
}

// Store holds the last known portfolio result. Apply is its only writer.
type Store struct {
	mu          sync.RWMutex
	state       *models.PortfolioResult
	subscribers []func(*models.PortfolioResult)
}

// NewStore creates a store in the uninitialized state.
func NewStore() *Store {
	return &Store{}
}

// Apply folds t into the state and notifies subscribers.
func (s *Store) Apply(t Transition) {
	s.mu.Lock()
	s.state = Reduce(s.state, t)
	snapshot := s.state.Clone()
	subs := append([]func(*models.PortfolioResult){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot.Clone())
	}
}

// State returns a copy of the current result. ok is false before the first
// transition, which is distinct from a failed submission.
func (s *Store) State() (result *models.PortfolioResult, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, false
	}
	return s.state.Clone(), true
}

// Subscribe registers fn to be called with a copy of every new state.
func (s *Store) Subscribe(fn func(*models.PortfolioResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
