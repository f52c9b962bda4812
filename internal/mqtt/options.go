package mqtt

import (
	"log/slog"
	"net"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/butterflysky/elgato-keylight/internal/config"
)

const (
	defaultPort              = "1883"
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 60 * time.Second
	defaultMaxReconnect      = 2 * time.Minute
	maxQoS                   = 2

	// StatusOnline and StatusOffline are the retained payloads of the
	// status topic; offline doubles as the last will.
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Options configures a Client.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte

	// StatusTopic receives a retained online/offline payload and is
	// registered as the last will. Empty disables both.
	StatusTopic string

	Logger *slog.Logger
}

// OptionsFromConfig builds Options from the [mqtt] settings.
func OptionsFromConfig(cfg config.MQTTConfig, logger *slog.Logger) Options {
	return Options{
		Broker:      cfg.Broker,
		ClientID:    cfg.ClientID,
		Username:    cfg.Username,
		Password:    cfg.Password,
		QoS:         cfg.QoS,
		StatusTopic: NewTopics(cfg.TopicPrefix).Status(),
		Logger:      logger,
	}
}

// BrokerURL normalises a broker address: a missing scheme defaults to
// tcp:// and a missing port to 1883.
func BrokerURL(broker string) string {
	broker = strings.TrimSpace(broker)
	scheme := "tcp"
	if i := strings.Index(broker, "://"); i >= 0 {
		scheme, broker = broker[:i], broker[i+3:]
	}
	broker = strings.TrimSuffix(broker, "/")
	if _, _, err := net.SplitHostPort(broker); err != nil {
		broker = net.JoinHostPort(strings.Trim(broker, "[]"), defaultPort)
	}
	return scheme + "://" + broker
}

func buildClientOptions(o Options) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(o.Broker))
	opts.SetClientID(o.ClientID)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(defaultMaxReconnect)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	// Commands like effects run for seconds; handlers must not serialise.
	opts.SetOrderMatters(false)
	return opts
}

func configureLWT(opts *pahomqtt.ClientOptions, o Options) {
	if o.StatusTopic == "" {
		return
	}
	opts.SetWill(o.StatusTopic, StatusOffline, o.QoS, true)
}
