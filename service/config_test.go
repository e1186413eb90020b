package service

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestBindFlagsDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "worker"}
	var opts Options
	BindFlags(cmd, &opts)
	require := assert.New(t)
	require.Equal("127.0.0.1", opts.Connector)
	require.Equal(5672, opts.ConnectorPort)
	require.Equal("localhost:8080", opts.DataStore)
	require.Equal("service", opts.ServiceName)
	require.Equal("os:l", opts.ObjectStoreQueue)
	require.Equal(1, opts.MaxThreads)
	require.Equal("WARN", opts.LogLevel)
}

func TestFinalizeDerivesServiceQueue(t *testing.T) {
	opts := Options{ServiceName: "crawler"}
	opts.Finalize()
	assert.Equal(t, "srv-crawler:l", opts.ServiceQueue)
}

func TestFinalizeKeepsExplicitServiceQueue(t *testing.T) {
	opts := Options{ServiceName: "crawler", ServiceQueue: "custom:h"}
	opts.Finalize()
	assert.Equal(t, "custom:h", opts.ServiceQueue)
}
