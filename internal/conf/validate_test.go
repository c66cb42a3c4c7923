package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "seedvault.db"
	s.WebServer.Enabled = true
	s.WebServer.Port = "8080"
	s.Gemini.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	s.Gemini.Timeout = 60
	return s
}

func TestValidateSettings_Valid(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings_NoDatabase(t *testing.T) {
	s := validSettings()
	s.Output.SQLite.Enabled = false
	err := ValidateSettings(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database output enabled")
}

func TestValidateSettings_BothDatabases(t *testing.T) {
	s := validSettings()
	s.Output.MySQL.Enabled = true
	s.Output.MySQL.Database = "seedvault"
	s.Output.MySQL.Host = "localhost"
	err := ValidateSettings(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one database output")
}

func TestValidateSettings_BadPort(t *testing.T) {
	for _, port := range []string{"", "0", "notaport", "70000"} {
		s := validSettings()
		s.WebServer.Port = port
		assert.Error(t, ValidateSettings(s), "port %q should be rejected", port)
	}
}

func TestValidateSettings_GeminiTimeout(t *testing.T) {
	s := validSettings()
	s.Gemini.Timeout = 0
	assert.Error(t, ValidateSettings(s))
}
