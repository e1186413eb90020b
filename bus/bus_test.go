package bus

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorrelationIDFormat(t *testing.T) {
	id, err := newCorrelationID("TaskRequest")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "TaskRequest-"))
	suffix := strings.TrimPrefix(id, "TaskRequest-")
	assert.Len(t, suffix, 10)
	for _, c := range suffix {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestNewCorrelationIDUnique(t *testing.T) {
	a, err := newCorrelationID("X")
	require.NoError(t, err)
	b, err := newCorrelationID("X")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewRejectsEmptyAppID(t *testing.T) {
	_, err := New("localhost", 5672, "")
	assert.ErrorIs(t, err, ErrNoAppID)
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreakerMiddleware(2, time.Minute)
	ctx := context.Background()
	env := Envelope{Type: "X"}

	assert.NoError(t, cb.Before(ctx, DestObjectStore, env))
	cb.After(ctx, DestObjectStore, env, nil, ErrTimeout)
	assert.NoError(t, cb.Before(ctx, DestObjectStore, env))
	cb.After(ctx, DestObjectStore, env, nil, ErrTimeout)

	err := cb.Before(ctx, DestObjectStore, env)
	assert.ErrorIs(t, err, ErrCircuitOpen)

	// a different destination is unaffected
	assert.NoError(t, cb.Before(ctx, DestFramework, env))
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	cb := NewCircuitBreakerMiddleware(2, time.Minute)
	ctx := context.Background()
	env := Envelope{Type: "X"}

	cb.After(ctx, DestObjectStore, env, nil, ErrTimeout)
	cb.After(ctx, DestObjectStore, env, &env, nil)
	assert.NoError(t, cb.Before(ctx, DestObjectStore, env))
}

func TestCircuitBreakerHalfOpensAfterResetTimeout(t *testing.T) {
	cb := NewCircuitBreakerMiddleware(1, 10*time.Millisecond)
	ctx := context.Background()
	env := Envelope{Type: "X"}

	cb.After(ctx, DestObjectStore, env, nil, ErrTimeout)
	assert.ErrorIs(t, cb.Before(ctx, DestObjectStore, env), ErrCircuitOpen)

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, cb.Before(ctx, DestObjectStore, env))
}

func TestBadMessageErrorMessage(t *testing.T) {
	err := &BadMessageError{Expected: "ObjectResponse", Got: "Other"}
	assert.Contains(t, err.Error(), "ObjectResponse")
	assert.Contains(t, err.Error(), "Other")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError("failed", cause)
	assert.ErrorIs(t, err, cause)
}
