// Package service hosts the supervisor that spawns and watches a
// worker's task processor subprocesses, and the CLI flags that
// configure it.
package service

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Options mirrors hsn2service.py's HSN2Service.standardOptions: the
// flags every worker-core service accepts regardless of domain.
type Options struct {
	Connector          string
	ConnectorPort      int
	DataStore          string
	ServiceName        string
	ServiceQueue       string
	ObjectStoreQueue   string
	MaxThreads         int
	LogLevel           string
}

// BindFlags registers the standard service flags on cmd, matching the
// original's argparse options one for one (connector/-c,
// connector-port/-p, datastore/-d, service-name/-s,
// service-queue-dest/-q, object-store-queue-name/-o, maxThreads/-T,
// log-level/-l).
func BindFlags(cmd *cobra.Command, opts *Options) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.Connector, "connector", "c", "127.0.0.1", "connector address")
	flags.IntVarP(&opts.ConnectorPort, "connector-port", "p", 5672, "connector port")
	flags.StringVarP(&opts.DataStore, "datastore", "d", "localhost:8080", "datastore address")
	flags.StringVarP(&opts.ServiceName, "service-name", "s", "service", "service name")
	flags.StringVarP(&opts.ServiceQueue, "service-queue-dest", "q", "", "service queue name")
	flags.StringVarP(&opts.ObjectStoreQueue, "object-store-queue-name", "o", "os:l", "object store queue name")
	flags.IntVarP(&opts.MaxThreads, "maxThreads", "T", 1, "maximum number of worker processes")
	flags.StringVarP(&opts.LogLevel, "log-level", "l", "WARN", "logging level (DEBUG, INFO, WARN, ERROR)")
}

// Finalize fills in derived defaults once flags are parsed, matching
// cliparse's "srv-%s:l" default service queue name.
func (o *Options) Finalize() {
	if o.ServiceQueue == "" {
		o.ServiceQueue = fmt.Sprintf("srv-%s:l", o.ServiceName)
	}
}
