package conf

import (
	"fmt"
	"strconv"
)

// ValidateSettings checks settings for configuration mistakes that would
// otherwise only fail at runtime.
func ValidateSettings(settings *Settings) error {
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return fmt.Errorf("no database output enabled, enable output.sqlite or output.mysql")
	}
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return fmt.Errorf("only one database output may be enabled at a time")
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must not be empty")
	}
	if settings.Output.MySQL.Enabled {
		if settings.Output.MySQL.Database == "" {
			return fmt.Errorf("output.mysql.database must not be empty")
		}
		if settings.Output.MySQL.Host == "" {
			return fmt.Errorf("output.mysql.host must not be empty")
		}
	}

	if settings.WebServer.Enabled {
		port, err := strconv.Atoi(settings.WebServer.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid webserver port: %q", settings.WebServer.Port)
		}
	}

	if settings.Gemini.Endpoint == "" {
		return fmt.Errorf("gemini.endpoint must not be empty")
	}
	if settings.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini.timeout must be positive, got %d", settings.Gemini.Timeout)
	}

	return nil
}
