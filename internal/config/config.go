package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Settings holds the ambient settings read from the [logging], [client],
// [discovery], [server], [mqtt] and [tray] tables of the config file.
type Settings struct {
	Logging   LoggingConfig
	Client    ClientConfig
	Discovery DiscoveryConfig
	Server    ServerConfig
	MQTT      MQTTConfig
	Tray      TrayConfig

	// Path is the config file the settings were read from
	Path string
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// ClientConfig configures requests made to lights
type ClientConfig struct {
	Timeout time.Duration
}

// DiscoveryConfig configures mDNS discovery
type DiscoveryConfig struct {
	Method  string
	Timeout time.Duration
}

// ServerConfig configures the elgatod HTTP API
type ServerConfig struct {
	Listen    string
	RateLimit int
}

// MQTTConfig configures the elgatod MQTT bridge. The bridge is disabled
// when Broker is empty.
type MQTTConfig struct {
	Broker       string
	ClientID     string
	Username     string
	Password     string
	TopicPrefix  string
	QoS          byte
	PollInterval time.Duration
}

// Enabled reports whether a broker is configured.
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

// TrayConfig configures the tray icon
type TrayConfig struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

var discoveryMethods = []string{
	keylight.DiscoveryAuto,
	keylight.DiscoveryAvahi,
	keylight.DiscoveryZeroconf,
	keylight.DiscoveryNone,
}

// LoadSettings reads ambient settings from path (DefaultConfigPath when
// empty) and ELGATO_* environment variables. A missing file yields the
// defaults; a malformed one is an ErrConfigParse.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
	v.SetDefault("client.timeout", int(DefaultClientTimeout.Seconds()))
	v.SetDefault("discovery.method", keylight.DiscoveryAuto)
	v.SetDefault("discovery.timeout", int(DefaultDiscoveryTimeout.Seconds()))
	v.SetDefault("server.listen", DefaultListenAddress)
	v.SetDefault("server.rate_limit", DefaultRateLimit)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", DefaultMQTTClientID)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", DefaultTopicPrefix)
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.poll_interval", int(DefaultMQTTPollInterval.Seconds()))
	v.SetDefault("tray.poll_interval", int(DefaultTrayPollInterval.Seconds()))
	v.SetDefault("tray.timeout", int(DefaultTrayTimeout.Seconds()))

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, kerrors.ConfigParsef("%s: %v", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, kerrors.WrapErrorf(err, "reading %s", path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	s := &Settings{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Client: ClientConfig{
			Timeout: seconds(v, "client.timeout"),
		},
		Discovery: DiscoveryConfig{
			Method:  strings.ToLower(v.GetString("discovery.method")),
			Timeout: seconds(v, "discovery.timeout"),
		},
		Server: ServerConfig{
			Listen:    v.GetString("server.listen"),
			RateLimit: v.GetInt("server.rate_limit"),
		},
		MQTT: MQTTConfig{
			Broker:       v.GetString("mqtt.broker"),
			ClientID:     v.GetString("mqtt.client_id"),
			Username:     v.GetString("mqtt.username"),
			Password:     v.GetString("mqtt.password"),
			TopicPrefix:  strings.Trim(v.GetString("mqtt.topic_prefix"), "/"),
			QoS:          byte(min(max(v.GetInt("mqtt.qos"), 0), 2)),
			PollInterval: ValidatePollInterval(seconds(v, "mqtt.poll_interval")),
		},
		Tray: TrayConfig{
			PollInterval: ValidatePollInterval(seconds(v, "tray.poll_interval")),
			Timeout:      seconds(v, "tray.timeout"),
		},
		Path: path,
	}

	if !slices.Contains(discoveryMethods, s.Discovery.Method) {
		return nil, kerrors.ConfigParsef("discovery.method %q must be one of %s",
			s.Discovery.Method, strings.Join(discoveryMethods, ", "))
	}
	if s.MQTT.TopicPrefix == "" {
		s.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	return s, nil
}

// seconds reads an integer or float number of seconds.
func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetFloat64(key) * float64(time.Second))
}
