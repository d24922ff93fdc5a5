// Package model provides the estimator interfaces and fitted-state tracking
// shared by the scaler and the regression.
package model

import (
	"sync"

	"github.com/YuminosukeSato/linfit/pkg/errors"
)

// StateManager tracks whether an estimator has been fitted and on how many
// samples. It is safe for concurrent readers once fitting is done.
type StateManager struct {
	mu       sync.RWMutex
	fitted   bool
	nSamples int
}

// NewStateManager creates an unfitted StateManager.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted on nSamples samples.
func (s *StateManager) SetFitted(nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.nSamples = nSamples
}

// Reset returns to the unfitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nSamples = 0
}

// NSamples returns the number of samples seen by the last successful fit.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// RequireFitted returns a NotFittedError naming modelName and method when
// the model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
