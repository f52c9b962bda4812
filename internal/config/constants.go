package config

import "time"

// Common constants shared between the front-ends
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "elgato-keylight"

	// ConfigFilename is the base filename of the config file
	ConfigFilename = "config.toml"

	// EffectsDirName holds user Lua effects, relative to the config directory
	EffectsDirName = "effects"

	// EnvPrefix prefixes environment overrides, e.g. ELGATO_LOGGING_LEVEL
	EnvPrefix = "ELGATO"

	// ConfigPathEnv overrides the config file location
	ConfigPathEnv = "ELGATO_CONFIG"

	// DefaultListenAddress is the default elgatod HTTP listen address
	DefaultListenAddress = "127.0.0.1:9124"

	// DefaultRateLimit is the default number of API requests per minute per IP
	DefaultRateLimit = 120

	// DefaultTopicPrefix is the default MQTT topic prefix
	DefaultTopicPrefix = "elgato"

	// DefaultMQTTClientID is the default MQTT client identifier
	DefaultMQTTClientID = "elgatod"
)

// Default timeouts and intervals
const (
	// DefaultClientTimeout bounds each request to a light
	DefaultClientTimeout = 5 * time.Second

	// DefaultDiscoveryTimeout bounds one mDNS browse
	DefaultDiscoveryTimeout = 5 * time.Second

	// DefaultMQTTPollInterval is how often retained state topics are refreshed
	DefaultMQTTPollInterval = 30 * time.Second

	// DefaultTrayPollInterval is how often the tray refreshes its icon
	DefaultTrayPollInterval = 10 * time.Second

	// DefaultTrayTimeout bounds each request made by the tray
	DefaultTrayTimeout = 3 * time.Second

	// MinPollInterval is the smallest accepted poll interval
	MinPollInterval = time.Second
)

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
