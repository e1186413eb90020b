// Package config loads the bus configuration file a worker reads at
// startup, mirroring hsn2bus.py's createConfigurableBus.
package config

import (
	"fmt"

	"github.com/hsn2-platform/worker-core/coreengine/typeutil"
	"github.com/spf13/viper"
)

// BusConfig is the subset of the configuration file the bus adapter
// needs: which message queue implementation to use and how to reach
// it. Only "rabbitmq" is a supported core.mq value, matching the
// original's single concrete Bus subclass.
type BusConfig struct {
	MQ     string
	Server string
	Port   int
}

// Load reads an INI-style configuration file at path and extracts the
// [core] and [rabbitmq] sections, matching
// Bus.createConfigurableBus's use of ConfigParser.
func Load(path string) (*BusConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: can't read %s: %w", path, err)
	}
	return FromViper(v)
}

// FromViper extracts a BusConfig from an already-populated viper
// instance, so callers merging CLI flags and a config file can build
// one Viper and pass it here.
func FromViper(v *viper.Viper) (*BusConfig, error) {
	mq := v.GetString("core.mq")
	if mq != "rabbitmq" {
		return nil, fmt.Errorf("config: unknown mq implementation: %q", mq)
	}
	server := v.GetString("rabbitmq.server")
	if server == "" {
		return nil, fmt.Errorf("config: rabbitmq.server is a required parameter")
	}
	// viper hands back ini values as strings; tolerate that the same
	// way a hand-decoded JSON/map blob would need to.
	port := typeutil.SafeIntDefault(v.Get("rabbitmq.port"), 0)
	if port == 0 {
		if s, ok := typeutil.SafeString(v.Get("rabbitmq.port")); ok {
			fmt.Sscanf(s, "%d", &port)
		}
	}
	return &BusConfig{MQ: mq, Server: server, Port: port}, nil
}
