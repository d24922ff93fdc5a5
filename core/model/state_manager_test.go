package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linfit/pkg/errors"
)

func TestStateManager_Lifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("Regression", "Predict")
	var nfErr *errors.NotFittedError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "Predict", nfErr.Method)

	s.SetFitted(12)
	assert.True(t, s.IsFitted())
	assert.Equal(t, 12, s.NSamples())
	assert.NoError(t, s.RequireFitted("Regression", "Predict"))

	s.Reset()
	assert.False(t, s.IsFitted())
	assert.Zero(t, s.NSamples())
}

func TestStateManager_ConcurrentReaders(t *testing.T) {
	s := NewStateManager()
	s.SetFitted(3)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, s.IsFitted())
		}()
	}
	wg.Wait()
}
