package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets viper defaults for every configuration parameter.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "MindWell-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs")

	viper.SetDefault("backend.baseurl", "")
	viper.SetDefault("backend.timeout", 30*time.Second)
	viper.SetDefault("backend.pagesize", 50)
	viper.SetDefault("backend.cachettl", 30*time.Second)

	viper.SetDefault("session.token", "")
	viper.SetDefault("session.tokenfile", "")

	viper.SetDefault("poll.enabled", true)
	viper.SetDefault("poll.interval", 5*time.Second)
}
