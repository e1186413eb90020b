// Command worker is the reference entrypoint for an HSN2 task
// processor service: it parses the standard service flags, connects
// to the bus, object store and data store adapters, and either runs
// as the supervising service host or as one of its worker
// subprocesses, mirroring hsn2service.py's startService.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hsn2-platform/worker-core/bus"
	"github.com/hsn2-platform/worker-core/datastore"
	"github.com/hsn2-platform/worker-core/logging"
	"github.com/hsn2-platform/worker-core/objectstore"
	"github.com/hsn2-platform/worker-core/service"
	"github.com/hsn2-platform/worker-core/taskproc"
	"github.com/spf13/cobra"
)

func main() {
	var opts service.Options

	root := &cobra.Command{
		Use:   "worker",
		Short: "HSN2 task processor worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Finalize()
			return run(opts)
		},
	}
	service.BindFlags(root, &opts)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts service.Options) error {
	logger, err := logging.NewZapWithLevel(opts.LogLevel)
	if err != nil {
		return err
	}

	if os.Getenv(service.WorkerEnvVar) == "1" {
		return runWorker(opts, logger)
	}
	return service.NewHost(opts, logger).Run(context.Background())
}

// runWorker is the body of one task-processor subprocess: it owns its
// own bus connection, object store client and data store client, and
// blocks consuming its service queue until the process is killed or
// SIGINT/SIGTERM arrives, at which point it flips the same
// keepRunning flag the bus and object store client both watch so any
// in-flight retry fails with Termination and the worker exits after
// nacking its current task with requeue, matching
// HSN2Service's signal handler tearing down a running task processor.
func runWorker(opts service.Options, logger logging.Logger) error {
	b, err := bus.New(opts.Connector, opts.ConnectorPort, opts.ServiceName,
		bus.WithLogger(logger), bus.WithOSQueue(opts.ObjectStoreQueue))
	if err != nil {
		return fmt.Errorf("worker: can't connect to bus: %w", err)
	}
	defer b.Close()
	b.AddMiddleware(&bus.LoggingMiddleware{Logger: logger})
	b.AddMiddleware(bus.NewMetricsMiddleware())
	b.AddMiddleware(bus.NewCircuitBreakerMiddleware(5, 30*time.Second))

	osClient, err := objectstore.New(b, objectstore.WithLogger(logger), objectstore.WithMaxTries(3),
		objectstore.WithKeepRunning(b.IsRunning))
	if err != nil {
		return fmt.Errorf("worker: can't build object store client: %w", err)
	}
	dsClient := datastore.New(opts.DataStore)

	processor := taskproc.New(b, osClient, dsClient, logger, passthroughProcess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		logger.Info("signal_received", "signal", sig.String())
		b.Stop()
		cancel()
	}()

	return b.BlockingConsume(ctx, opts.ServiceQueue, processor.Handle)
}

// passthroughProcess is a placeholder TaskProcess: a concrete service
// built on this package replaces it with its own analysis logic.
func passthroughProcess(ctx *taskproc.TaskContext) ([]string, error) {
	return nil, nil
}
