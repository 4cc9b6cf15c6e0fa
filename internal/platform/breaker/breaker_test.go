package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterFailures(t *testing.T) {
	b := New[int]("test-open", Settings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, "open", b.State())

	called := false
	_, err := b.Execute(func() (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, called)
}

func TestBreaker_PassesResults(t *testing.T) {
	b := New[string]("test-pass", Settings{})

	v, err := b.Execute(func() (string, error) { return "ok", nil })

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, "closed", b.State())
}
