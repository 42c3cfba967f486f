// Package model provides the records that describe a preparation run.
//
// This package defines:
//
//   - StateManager: fitted-state tracking shared by preparers, safe for
//     concurrent readers
//   - Metadata: the flat record of which method was applied to which columns
//   - Envelope: the versioned container used to persist run artifacts as
//     JSON or YAML
//
// Example usage:
//
//	md := model.NewMetadata([]string{"age"}, []string{"color"},
//		enums.OneHot, enums.Std, enums.MissingMean)
//	if err := md.Set("normalization_method", "MINMAX"); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(md.Summary())
package model

import "sync"

// EstimatorState represents the fitted state of a component
type EstimatorState int

const (
	// NotFitted indicates no preparation has run yet
	NotFitted EstimatorState = iota
	// Fitted indicates statistics are available
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// StateManager tracks whether a component has been fitted. It is safe for
// concurrent use.
type StateManager struct {
	mu    sync.RWMutex
	state EstimatorState
}

// NewStateManager returns a StateManager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{state: NotFitted}
}

// IsFitted returns whether the component has been fitted.
//
// Example:
//
//	if !state.IsFitted() {
//	    return errors.NewNotFittedError("Regression", "Revert")
//	}
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Fitted
}

// SetFitted marks the component as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Fitted
}

// Reset returns the component to NotFitted.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = NotFitted
}

// State returns the current state.
func (s *StateManager) State() EstimatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
