package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Verify.DNSTimeoutMS)
	assert.Equal(t, 10000, cfg.Verify.SMTPTimeoutMS)
	assert.True(t, cfg.Verify.SMTPCheck)
	assert.True(t, cfg.Verify.CatchAllCheck)
	assert.Equal(t, "test@example.com", cfg.Verify.SenderEmail)
	assert.Equal(t, 25, cfg.Verify.SMTPPort)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
verify:
  smtp_timeout_ms: 3000
  sender_email: verify@probe.example
logging:
  level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Verify.SMTPTimeoutMS)
	assert.Equal(t, "verify@probe.example", cfg.Verify.SenderEmail)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5000, cfg.Verify.DNSTimeoutMS)
	assert.True(t, cfg.Verify.SMTPCheck)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
