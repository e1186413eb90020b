package service

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hsn2-platform/worker-core/logging"
	"github.com/hsn2-platform/worker-core/safework"
)

const shutdownGrace = 10 * time.Second

// WorkerEnvVar marks a subprocess as a worker rather than the
// supervising service host, since Go has no multiprocessing.Process
// fork equivalent to re-exec a running process's state directly —
// each worker subprocess re-execs the binary and re-reads flags.
const WorkerEnvVar = "HSN2_WORKER"

// Host supervises MaxThreads worker subprocesses, each the current
// binary re-invoked with WorkerEnvVar set, matching
// HSN2Service.start/run/stop's process-table management.
type Host struct {
	Options Options
	Logger  logging.Logger

	mu      sync.Mutex
	cmds    []*trackedCmd
	stopped chan struct{}
}

// trackedCmd pairs a worker subprocess with a flag set by the
// goroutine that calls cmd.Wait, so allChildrenExited never reads
// exec.Cmd's internal state from a second goroutine.
type trackedCmd struct {
	cmd    *exec.Cmd
	exited atomic.Bool
}

// NewHost builds a Host from parsed Options.
func NewHost(opts Options, logger logging.Logger) *Host {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Host{Options: opts, Logger: logger, stopped: make(chan struct{})}
}

// Run spawns Options.MaxThreads worker subprocesses, blocks until ctx
// is canceled, a SIGINT/SIGTERM arrives, or every child has exited,
// then stops the remaining children. Matches start()+run()+stop().
func (h *Host) Run(ctx context.Context) error {
	if err := h.start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.stop()
			return ctx.Err()
		case sig := <-sigCh:
			h.Logger.Info("signal_received", "signal", sig.String())
			h.stop()
			return nil
		case <-ticker.C:
			if h.allChildrenExited() {
				h.Logger.Error("all_children_exited")
				h.stop()
				return nil
			}
		}
	}
}

// start launches MaxThreads worker subprocesses re-invoking the
// current binary.
func (h *Host) start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := 0; i < h.Options.MaxThreads; i++ {
		cmd := exec.Command(os.Args[0], os.Args[1:]...)
		cmd.Env = append(os.Environ(), WorkerEnvVar+"=1")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return err
		}
		tc := &trackedCmd{cmd: cmd}
		h.cmds = append(h.cmds, tc)
		safework.Go(h.Logger, "worker_wait", func() {
			_ = cmd.Wait()
			tc.exited.Store(true)
		}, nil)
	}
	h.Logger.Info("workers_started", "count", h.Options.MaxThreads)
	return nil
}

func (h *Host) allChildrenExited() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tc := range h.cmds {
		if !tc.exited.Load() {
			return false
		}
	}
	return len(h.cmds) > 0
}

// stop terminates every worker, escalating to SIGKILL after
// shutdownGrace if any are still alive, matching stop()'s ten-second
// active_children() wait.
func (h *Host) stop() {
	h.mu.Lock()
	cmds := append([]*trackedCmd(nil), h.cmds...)
	h.mu.Unlock()

	for _, tc := range cmds {
		if tc.cmd.Process != nil {
			_ = tc.cmd.Process.Signal(syscall.SIGTERM)
		}
	}

	deadline := time.Now().Add(shutdownGrace)
	for time.Now().Before(deadline) {
		if h.allChildrenExited() {
			h.Logger.Info("service_stopped", "service", h.Options.ServiceName)
			return
		}
		time.Sleep(1 * time.Second)
	}

	for _, tc := range cmds {
		if tc.cmd.Process != nil && !tc.exited.Load() {
			h.Logger.Warn("worker_sigkill", "pid", tc.cmd.Process.Pid)
			_ = tc.cmd.Process.Kill()
		}
	}
	h.Logger.Info("service_stopped", "service", h.Options.ServiceName)
}
