package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Node        NodeConfig        `mapstructure:"node"`
	Server      ServerConfig      `mapstructure:"server"`
	Registry    RegistryConfig    `mapstructure:"registry"`
	Election    ElectionConfig    `mapstructure:"election"`
	Replication ReplicationConfig `mapstructure:"replication"`
	Peers       []PeerConfig      `mapstructure:"peers"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// NodeConfig identifies the local replica
type NodeConfig struct {
	ID string `mapstructure:"id"`
}

// ServerConfig contains the two listening endpoints
type ServerConfig struct {
	BizAddr       string `mapstructure:"biz_addr"`
	HBAddr        string `mapstructure:"hb_addr"`
	BizMaxStreams uint32 `mapstructure:"biz_max_streams"`
	HBMaxStreams  uint32 `mapstructure:"hb_max_streams"`
}

// RegistryConfig contains object registry settings
type RegistryConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// ElectionConfig controls the leader election loop
type ElectionConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// ReplicationConfig controls the optional snapshot push loop.
// A zero interval disables it.
type ReplicationConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PeerConfig describes one replica, usually including the local node
type PeerConfig struct {
	ID      string `mapstructure:"id"`
	Host    string `mapstructure:"host"`
	BizPort int    `mapstructure:"biz_port"`
	HBPort  int    `mapstructure:"hb_port"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig contains metrics and admin endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// TTL returns the registry TTL as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Registry.TTLSeconds) * time.Second
}

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// An explicit path picks its format from the extension (yaml, json, toml)
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/objrepo")
	}

	// Set defaults
	setDefaults(v)

	// Read environment variables, e.g. OBJREPO_NODE_ID
	v.SetEnvPrefix("OBJREPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate and set computed values
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("node.id", "")

	// Server defaults
	v.SetDefault("server.biz_addr", ":50051")
	v.SetDefault("server.hb_addr", ":50052")
	v.SetDefault("server.biz_max_streams", 100)
	v.SetDefault("server.hb_max_streams", 40)

	v.SetDefault("registry.ttl_seconds", 15)

	v.SetDefault("election.interval", "2s")
	v.SetDefault("election.probe_timeout", "500ms")

	v.SetDefault("replication.interval", "0s")
	v.SetDefault("replication.timeout", "2s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9100)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks c again, e.g. after command line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Node.ID == "" {
		config.Node.ID = "node-" + uuid.NewString()
	}

	if config.Server.BizAddr == "" || config.Server.HBAddr == "" {
		return fmt.Errorf("server.biz_addr and server.hb_addr are required")
	}
	if config.Server.BizAddr == config.Server.HBAddr {
		return fmt.Errorf("server.biz_addr and server.hb_addr must differ")
	}

	if config.Registry.TTLSeconds <= 0 {
		return fmt.Errorf("registry.ttl_seconds must be positive")
	}

	if config.Election.Interval <= 0 {
		return fmt.Errorf("election.interval must be positive")
	}
	if config.Election.ProbeTimeout <= 0 || config.Election.ProbeTimeout >= config.Election.Interval {
		return fmt.Errorf("election.probe_timeout must be positive and shorter than election.interval")
	}

	if config.Replication.Interval < 0 {
		return fmt.Errorf("replication.interval must not be negative")
	}
	if config.Replication.Interval > 0 && config.Replication.Timeout <= 0 {
		return fmt.Errorf("replication.timeout must be positive when replication is enabled")
	}

	seen := make(map[string]bool, len(config.Peers))
	for i, p := range config.Peers {
		if p.ID == "" {
			return fmt.Errorf("peers[%d].id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("peers[%d].id %q is duplicated", i, p.ID)
		}
		seen[p.ID] = true
		if p.Host == "" {
			return fmt.Errorf("peers[%d].host is required", i)
		}
		if !validPort(p.BizPort) || !validPort(p.HBPort) {
			return fmt.Errorf("peers[%d] ports must be between 1 and 65535", i)
		}
	}

	if config.Metrics.Enabled && !validPort(config.Metrics.Port) {
		return fmt.Errorf("metrics.port must be between 1 and 65535")
	}

	return nil
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	v.Unmarshal(&config)
	validateConfig(&config)

	return &config
}
