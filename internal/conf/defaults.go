package conf

import "github.com/spf13/viper"

// setDefaultConfig registers default values for every configuration key.
func setDefaultConfig() {
	viper.SetDefault("debug", false)
	viper.SetDefault("main.name", "seedvault")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "seedvault.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "seedvault")
	viper.SetDefault("output.mysql.database", "seedvault")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("gemini.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("gemini.timeout", 60)
	// Sunday 03:15, once a week
	viper.SetDefault("gemini.refreshschedule", "15 3 * * 0")

	viper.SetDefault("export.fields", []string{})
}

// defaultConfigYAML is written when no config file is found.
const defaultConfigYAML = `# seedvault configuration

debug: false

main:
  name: seedvault

webserver:
  enabled: true
  port: "8080"

output:
  sqlite:
    enabled: true
    path: seedvault.db
  mysql:
    enabled: false
    username: seedvault
    password: ""
    database: seedvault
    host: localhost
    port: "3306"

gemini:
  endpoint: https://generativelanguage.googleapis.com/v1beta
  timeout: 60
  refreshschedule: "15 3 * * 0"

export:
  fields: []
`
