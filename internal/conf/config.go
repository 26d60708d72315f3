// Package conf loads and validates ChannelPulse engine settings.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when a setting is absent or out of range.
const (
	DefaultCheckInterval = 30 * time.Second
	DefaultCooldown      = 5 * time.Minute
	DefaultFetchTimeout  = 10 * time.Second
	DefaultMaxAlerts     = 50
	DefaultListenAddr    = ":8910"
)

// Settings holds the full engine configuration.
type Settings struct {
	ChannelID  string   `mapstructure:"channel_id"`
	BackendURL string   `mapstructure:"backend_url"`
	ListenAddr string   `mapstructure:"listen_addr"`
	LogLevel   string   `mapstructure:"log_level"`
	Database   Database `mapstructure:"database"`
	Alerting   Alerting `mapstructure:"alerting"`
}

// Database selects the optional local store. An empty DSN disables
// persistence entirely; the engine then runs purely in memory.
type Database struct {
	// Driver is "sqlite" or "mysql".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Alerting holds the polling and deduplication knobs.
type Alerting struct {
	CheckInterval Duration `mapstructure:"check_interval"`
	Cooldown      Duration `mapstructure:"cooldown"`
	FetchTimeout  Duration `mapstructure:"fetch_timeout"`
	MaxAlerts     int      `mapstructure:"max_alerts"`
}

// Load reads settings from the given config file (optional) and
// CHANNELPULSE_* environment variables, then normalizes them.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Every key needs a default so AutomaticEnv can surface it during
	// Unmarshal; viper only considers keys it already knows about.
	v.SetDefault("channel_id", "")
	v.SetDefault("backend_url", "")
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("log_level", "info")
	v.SetDefault("alerting.check_interval", DefaultCheckInterval.String())
	v.SetDefault("alerting.cooldown", DefaultCooldown.String())
	v.SetDefault("alerting.fetch_timeout", DefaultFetchTimeout.String())
	v.SetDefault("alerting.max_alerts", DefaultMaxAlerts)

	v.SetEnvPrefix("channelpulse")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	s.normalize()
	return &s, nil
}

// normalize clamps nonsensical values back to defaults rather than failing;
// a misconfigured interval should degrade alerting, not prevent startup.
func (s *Settings) normalize() {
	if s.Alerting.CheckInterval.Std() <= 0 {
		s.Alerting.CheckInterval = Duration(DefaultCheckInterval)
	}
	if s.Alerting.Cooldown.Std() < 0 {
		s.Alerting.Cooldown = Duration(DefaultCooldown)
	}
	if s.Alerting.FetchTimeout.Std() <= 0 {
		s.Alerting.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if s.Alerting.MaxAlerts <= 0 {
		s.Alerting.MaxAlerts = DefaultMaxAlerts
	}
	if s.ListenAddr == "" {
		s.ListenAddr = DefaultListenAddr
	}
	if s.Database.Driver == "" && s.Database.DSN != "" {
		s.Database.Driver = "sqlite"
	}
}
