package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hsn2.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRabbitMQConfig(t *testing.T) {
	path := writeConfig(t, "[core]\nmq=rabbitmq\n\n[rabbitmq]\nserver=10.0.0.5\nport=5673\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rabbitmq", cfg.MQ)
	assert.Equal(t, "10.0.0.5", cfg.Server)
	assert.Equal(t, 5673, cfg.Port)
}

func TestLoadRejectsUnknownMQ(t *testing.T) {
	path := writeConfig(t, "[core]\nmq=activemq\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown mq implementation")
}

func TestLoadRequiresServer(t *testing.T) {
	path := writeConfig(t, "[core]\nmq=rabbitmq\n\n[rabbitmq]\nport=5672\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "rabbitmq.server")
}
