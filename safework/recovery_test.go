package safework

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hsn2-platform/worker-core/logging"
	"github.com/stretchr/testify/assert"
)

func TestExecuteRecoversPanic(t *testing.T) {
	err := Execute(logging.Noop(), "boom", func() error {
		panic("kaboom")
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecutePropagatesError(t *testing.T) {
	want := errors.New("failed")
	err := Execute(logging.Noop(), "op", func() error { return want })
	assert.Equal(t, want, err)
}

func TestExecuteWithResultReturnsValue(t *testing.T) {
	v, err := ExecuteWithResult(logging.Noop(), "op", func() (int, error) { return 42, nil })
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExecuteWithResultRecoversPanic(t *testing.T) {
	v, err := ExecuteWithResult(logging.Noop(), "op", func() (int, error) { panic("nope") })
	assert.Error(t, err)
	assert.Equal(t, 0, v)
}

func TestGoCallsOnPanic(t *testing.T) {
	var mu sync.Mutex
	var recovered any
	var wg sync.WaitGroup
	wg.Add(1)
	Go(logging.Noop(), "worker-loop", func() {
		defer wg.Done()
		panic("goroutine died")
	}, func(r any) {
		mu.Lock()
		recovered = r
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for goroutine")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "goroutine died", recovered)
}
