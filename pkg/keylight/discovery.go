package keylight

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/samber/lo"
)

const (
	serviceName = "_elg._tcp"
	domain      = "local."

	// DefaultDiscoveryTimeout bounds a single browse.
	DefaultDiscoveryTimeout = 5 * time.Second
)

// Discovery methods.
const (
	DiscoveryAuto     = "auto"
	DiscoveryAvahi    = "avahi"
	DiscoveryZeroconf = "zeroconf"
	DiscoveryNone     = "none"
)

// ErrAvahiNotInstalled is returned by AvahiBrowser when avahi-browse is not
// on the PATH.
var ErrAvahiNotInstalled = errors.New("avahi-browse not found")

// Browser finds lights advertising _elg._tcp on the local network.
type Browser interface {
	Browse(ctx context.Context) ([]LightConfig, error)
}

// AvahiBrowser shells out to avahi-browse.
type AvahiBrowser struct {
	Command string
	Timeout time.Duration
}

// Browse runs `avahi-browse -rpt _elg._tcp` and parses its output.
func (b *AvahiBrowser) Browse(ctx context.Context) ([]LightConfig, error) {
	command := cmp.Or(b.Command, "avahi-browse")
	ctx, cancel := context.WithTimeout(ctx, cmp.Or(b.Timeout, DefaultDiscoveryTimeout))
	defer cancel()

	cmd := exec.CommandContext(ctx, command, "-rpt", serviceName)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrAvahiNotInstalled
		}
		return nil, fmt.Errorf("avahi-browse: %w", err)
	}
	return ParseAvahiBrowse(stdout.String()), nil
}

// ParseAvahiBrowse extracts lights from `avahi-browse -rpt` output. Only
// resolved IPv4 records are used:
//
//	=;iface;IPv4;name;_elg._tcp;domain;hostname;ip;port;txt
//
// The advertised name "Elgato Key Light - right" becomes "right". Records
// are deduplicated by address (first wins) and sorted by name.
func ParseAvahiBrowse(output string) []LightConfig {
	var lights []LightConfig
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "=") || !strings.Contains(line, ";IPv4;") {
			continue
		}
		parts := strings.Split(line, ";")
		if len(parts) < 9 {
			continue
		}
		port, err := strconv.Atoi(parts[8])
		if err != nil {
			continue
		}
		var txt []string
		if len(parts) > 9 {
			txt = strings.Fields(strings.ReplaceAll(strings.Join(parts[9:], ";"), `"`, " "))
		}
		lights = append(lights, LightConfig{
			Name: shortName(UnescapeRFC6763Label(parts[3])),
			Host: parts[7],
			Port: port,
			ID:   txtID(txt),
		})
	}
	return normalize(lights)
}

// ZeroconfBrowser browses natively over multicast DNS.
type ZeroconfBrowser struct {
	Timeout time.Duration
}

// Browse listens for _elg._tcp announcements for the configured timeout.
func (b *ZeroconfBrowser) Browse(ctx context.Context) ([]LightConfig, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cmp.Or(b.Timeout, DefaultDiscoveryTimeout))
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 16)
	if err := resolver.Browse(ctx, serviceName, domain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse: %w", err)
	}

	var lights []LightConfig
	for {
		select {
		case <-ctx.Done():
			return normalize(lights), nil
		case entry, ok := <-entries:
			if !ok {
				return normalize(lights), nil
			}
			if light, valid := lightFromEntry(entry); valid {
				lights = append(lights, light)
			}
		}
	}
}

func lightFromEntry(entry *zeroconf.ServiceEntry) (LightConfig, bool) {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return LightConfig{}, false
	}
	return LightConfig{
		Name: shortName(UnescapeRFC6763Label(entry.Instance)),
		Host: entry.AddrIPv4[0].String(),
		Port: cmp.Or(entry.Port, DefaultPort),
		ID:   txtID(entry.Text),
	}, true
}

// shortName turns "Elgato Key Light - Right" into "right".
func shortName(name string) string {
	if _, after, found := strings.Cut(name, " - "); found {
		name = strings.TrimSpace(after)
	}
	return strings.ToLower(name)
}

func txtID(records []string) string {
	for _, r := range records {
		if id, ok := strings.CutPrefix(r, "id="); ok {
			return id
		}
	}
	return ""
}

func normalize(lights []LightConfig) []LightConfig {
	lights = lo.UniqBy(lights, func(l LightConfig) string { return l.Host })
	slices.SortStableFunc(lights, func(a, b LightConfig) int { return cmp.Compare(a.Name, b.Name) })
	return lights
}

// Discoverer runs discovery with the configured method. It never fails:
// problems are logged and an empty list is returned.
type Discoverer struct {
	method   string
	avahi    Browser
	zeroconf Browser
	logger   *slog.Logger
}

// NewDiscoverer creates a Discoverer. Unknown methods behave like "auto".
func NewDiscoverer(method string, timeout time.Duration, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		method:   method,
		avahi:    &AvahiBrowser{Timeout: timeout},
		zeroconf: &ZeroconfBrowser{Timeout: timeout},
		logger:   logger,
	}
}

// WithBrowsers replaces the avahi and zeroconf browsers.
func (d *Discoverer) WithBrowsers(avahi, zc Browser) *Discoverer {
	d.avahi = avahi
	d.zeroconf = zc
	return d
}

// Discover browses for lights.
func (d *Discoverer) Discover(ctx context.Context) []LightConfig {
	switch d.method {
	case DiscoveryNone:
		return nil
	case DiscoveryAvahi:
		lights, err := d.avahi.Browse(ctx)
		if err != nil {
			d.diagnose(err)
			return nil
		}
		return lights
	case DiscoveryZeroconf:
		return d.browseZeroconf(ctx)
	}

	lights, err := d.avahi.Browse(ctx)
	if err == nil {
		return lights
	}
	d.logger.Debug("discovery: avahi failed, falling back to zeroconf", "error", err)
	return d.browseZeroconf(ctx)
}

func (d *Discoverer) browseZeroconf(ctx context.Context) []LightConfig {
	lights, err := d.zeroconf.Browse(ctx)
	if err != nil {
		d.logger.Warn("discovery: mDNS browse failed", "error", err)
		return nil
	}
	return lights
}

func (d *Discoverer) diagnose(err error) {
	if errors.Is(err, ErrAvahiNotInstalled) {
		d.logger.Warn("avahi-browse not found; install avahi-tools or configure lights in ~/.config/elgato-keylight/config.toml")
		return
	}
	d.logger.Warn("discovery: avahi-browse failed", "error", err)
}
