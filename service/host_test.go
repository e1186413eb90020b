package service

import (
	"os/exec"
	"testing"
	"time"

	"github.com/hsn2-platform/worker-core/logging"
	"github.com/stretchr/testify/assert"
)

func TestAllChildrenExitedFalseWithNoCommands(t *testing.T) {
	h := NewHost(Options{ServiceName: "test"}, logging.Noop())
	assert.False(t, h.allChildrenExited())
}

func TestAllChildrenExitedTrueAfterExit(t *testing.T) {
	h := NewHost(Options{ServiceName: "test"}, logging.Noop())
	cmd := exec.Command("true")
	require := assert.New(t)
	require.NoError(cmd.Start())
	require.NoError(cmd.Wait())
	tc := &trackedCmd{cmd: cmd}
	tc.exited.Store(true)
	h.cmds = append(h.cmds, tc)
	assert.True(t, h.allChildrenExited())
}

func TestStopSendsTerminateAndReturnsPromptly(t *testing.T) {
	h := NewHost(Options{ServiceName: "test"}, logging.Noop())
	cmd := exec.Command("sleep", "0.1")
	assert.NoError(t, cmd.Start())
	tc := &trackedCmd{cmd: cmd}
	h.cmds = append(h.cmds, tc)
	go func() {
		_ = cmd.Wait()
		tc.exited.Store(true)
	}()

	done := make(chan struct{})
	go func() {
		h.stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return before the shutdown grace period elapsed")
	}
}
