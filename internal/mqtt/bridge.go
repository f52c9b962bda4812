package mqtt

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/events"
)

// eventQueueSize bounds the events waiting to be published.
const eventQueueSize = 256

// Conn is the part of Client the bridge uses.
type Conn interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
}

// Bridge maps command topics to control operations and publishes light
// state and bus events. Light state topics are refreshed from the bus, so
// the bus must be the one the controller publishes to.
type Bridge struct {
	conn   Conn
	svc    control.Service
	bus    *events.Bus
	topics Topics
	qos    byte
	poll   time.Duration
	logger *slog.Logger

	queue chan events.Event
}

// NewBridge creates a bridge using the topic prefix, QoS and poll interval
// of cfg.
func NewBridge(conn Conn, svc control.Service, bus *events.Bus, cfg config.MQTTConfig, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = config.DefaultMQTTPollInterval
	}
	return &Bridge{
		conn:   conn,
		svc:    svc,
		bus:    bus,
		topics: NewTopics(cfg.TopicPrefix),
		qos:    cfg.QoS,
		poll:   poll,
		logger: logger,
		queue:  make(chan events.Event, eventQueueSize),
	}
}

// Topics returns the topic names the bridge uses.
func (b *Bridge) Topics() Topics {
	return b.topics
}

// Run subscribes to the command topics and publishes state until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	subs := map[string]MessageHandler{
		b.topics.AllSet():      b.handleSet(ctx),
		b.topics.PresetApply(): b.handlePreset(ctx),
		b.topics.MoodSet():     b.handleMood(ctx),
		b.topics.EffectRun():   b.handleEffect(ctx),
	}
	for topic, h := range subs {
		if err := b.conn.Subscribe(topic, b.qos, h); err != nil {
			return err
		}
	}

	unsub := b.bus.Subscribe(b.enqueue)
	defer unsub()

	b.logger.Info("MQTT bridge started", "prefix", b.topics.Prefix, "poll_interval", b.poll)
	b.refresh(ctx, nil)

	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("MQTT bridge stopped")
			return nil
		case e := <-b.queue:
			b.forward(ctx, e)
		case <-ticker.C:
			b.refresh(ctx, nil)
		}
	}
}

// enqueue is the bus subscriber; it never blocks the publisher.
func (b *Bridge) enqueue(e events.Event) {
	select {
	case b.queue <- e:
	default:
		b.logger.Warn("MQTT bridge queue full, dropping event", "type", e.Type)
	}
}

// forward publishes e on the event topic and updates state topics it
// affects.
func (b *Bridge) forward(ctx context.Context, e events.Event) {
	if data, err := json.Marshal(e); err == nil {
		b.publish(b.topics.Event(), data, false)
	}

	switch e.Type {
	case events.LightStateChanged, events.LightUnreachable:
		var p events.LightPayload
		if err := e.Decode(&p); err != nil || p.Light == "" {
			return
		}
		if p.State != nil {
			b.publishState(p.Light, NewStatePayload(*p.State))
		} else {
			b.publishState(p.Light, UnreachablePayload(p.Error))
		}
	case events.MoodApplied:
		var p events.NamedPayload
		if err := e.Decode(&p); err == nil && len(p.Lights) > 0 {
			b.refresh(ctx, p.Lights)
		}
	case events.EffectFinished:
		var p events.EffectPayload
		if err := e.Decode(&p); err == nil && len(p.Lights) > 0 {
			b.refresh(ctx, p.Lights)
		}
	}
}

// refresh reads the lights and republishes their state topics.
func (b *Bridge) refresh(ctx context.Context, names []string) {
	statuses, err := b.svc.States(ctx, names)
	if err != nil {
		b.logger.Debug("MQTT state refresh failed", "error", err)
		return
	}
	for _, s := range statuses {
		if s.Err != nil {
			b.publishState(s.Light.Name, UnreachablePayload(s.Err.Error()))
			continue
		}
		b.publishState(s.Light.Name, NewStatePayload(s.State))
	}
}

func (b *Bridge) publishState(light string, p StatePayload) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	b.publish(b.topics.State(light), data, true)
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	if err := b.conn.Publish(topic, payload, b.qos, retained); err != nil {
		b.logger.Debug("MQTT publish failed", "topic", topic, "error", err)
	}
}

func targets(name string) []string {
	if name == AllLights {
		return nil
	}
	return []string{name}
}

func (b *Bridge) handleSet(ctx context.Context) MessageHandler {
	return func(topic string, payload []byte) error {
		name, ok := b.topics.LightFromSet(topic)
		if !ok {
			return ErrInvalidTopic
		}
		cmd, err := ParseSetCommand(payload)
		if err != nil {
			return err
		}
		var results []control.LightResult
		if cmd.Toggle {
			results, err = b.svc.Toggle(ctx, targets(name))
		} else {
			results, err = b.svc.Update(ctx, targets(name), cmd.Patch)
		}
		if err != nil {
			return err
		}
		return control.Errors(results)
	}
}

func (b *Bridge) handlePreset(ctx context.Context) MessageHandler {
	return func(_ string, payload []byte) error {
		cmd, err := ParseNamedCommand(payload, "preset")
		if err != nil {
			return err
		}
		results, err := b.svc.ApplyPreset(ctx, cmd.Name, cmd.Lights)
		if err != nil {
			return err
		}
		return control.Errors(results)
	}
}

func (b *Bridge) handleMood(ctx context.Context) MessageHandler {
	return func(_ string, payload []byte) error {
		cmd, err := ParseNamedCommand(payload, "mood")
		if err != nil {
			return err
		}
		_, err = b.svc.SetMood(ctx, cmd.Name, cmd.Lights)
		return err
	}
}

func (b *Bridge) handleEffect(ctx context.Context) MessageHandler {
	return func(_ string, payload []byte) error {
		cmd, err := ParseEffectCommand(payload)
		if err != nil {
			return err
		}
		res, err := b.svc.RunEffect(ctx, cmd.Effect, cmd.Params, cmd.Lights)
		if err != nil {
			return err
		}
		return res.Restore.Err()
	}
}
