package keylight

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

const avahiOutput = `+;wlan0;IPv4;Elgato\032Key\032Light\032-\032Right;_elg._tcp;local
=;wlan0;IPv4;Elgato\032Key\032Light\032-\032Right;_elg._tcp;local;elgato-key-light-d03e.local;192.168.0.60;9123;"mf=Elgato" "dt=53" "id=3C:6A:9D:14:D0:3E" "md=Elgato Key Light 20GAK9901" "pv=1.0"
=;wlan0;IPv6;Elgato\032Key\032Light\032-\032Right;_elg._tcp;local;elgato-key-light-d03e.local;fe80::3e6a:9dff:fe14:d03e;9123;"id=3C:6A:9D:14:D0:3E"
=;eth0;IPv4;Elgato\032Key\032Light\032-\032Right;_elg._tcp;local;elgato-key-light-d03e.local;192.168.0.60;9123;"id=3C:6A:9D:14:D0:3E"
=;wlan0;IPv4;Elgato\032Key\032Light\032-\032left;_elg._tcp;local;elgato-key-light-a1b2.local;192.168.0.62;9123;"mf=Elgato" "id=3C:6A:9D:14:A1:B2"
=;wlan0;IPv4;Studio\032Light;_elg._tcp;local;studio.local;192.168.0.70;9124;
=;wlan0;IPv4;Broken;_elg._tcp;local;broken.local;192.168.0.71;notaport;
=;wlan0;IPv4;short;_elg._tcp
`

func TestParseAvahiBrowse(t *testing.T) {
	lights := ParseAvahiBrowse(avahiOutput)

	assert.Equal(t, []LightConfig{
		{Name: "left", Host: "192.168.0.62", Port: 9123, ID: "3C:6A:9D:14:A1:B2"},
		{Name: "right", Host: "192.168.0.60", Port: 9123, ID: "3C:6A:9D:14:D0:3E"},
		{Name: "studio light", Host: "192.168.0.70", Port: 9124},
	}, lights)
}

func TestParseAvahiBrowseEmpty(t *testing.T) {
	assert.Empty(t, ParseAvahiBrowse(""))
	assert.Empty(t, ParseAvahiBrowse("+;wlan0;IPv4;x;_elg._tcp;local\n"))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "right", shortName("Elgato Key Light - Right"))
	assert.Equal(t, "key light - b", shortName("A - Key Light - B"))
	assert.Equal(t, "desk", shortName("Desk"))
}

type stubBrowser struct {
	lights []LightConfig
	err    error
	calls  int
}

func (b *stubBrowser) Browse(context.Context) ([]LightConfig, error) {
	b.calls++
	return b.lights, b.err
}

func TestDiscoverer(t *testing.T) {
	found := []LightConfig{{Name: "right", Host: "192.168.0.60", Port: 9123}}

	t.Run("auto prefers avahi", func(t *testing.T) {
		avahi, zc := &stubBrowser{lights: found}, &stubBrowser{}
		d := NewDiscoverer(DiscoveryAuto, 0, nil).WithBrowsers(avahi, zc)
		assert.Equal(t, found, d.Discover(context.Background()))
		assert.Equal(t, 0, zc.calls)
	})

	t.Run("auto falls back to zeroconf", func(t *testing.T) {
		avahi, zc := &stubBrowser{err: ErrAvahiNotInstalled}, &stubBrowser{lights: found}
		d := NewDiscoverer(DiscoveryAuto, 0, nil).WithBrowsers(avahi, zc)
		assert.Equal(t, found, d.Discover(context.Background()))
		assert.Equal(t, 1, zc.calls)
	})

	t.Run("avahi missing emits a diagnostic", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		d := NewDiscoverer(DiscoveryAvahi, 0, logger).WithBrowsers(&stubBrowser{err: ErrAvahiNotInstalled}, &stubBrowser{})
		assert.Empty(t, d.Discover(context.Background()))
		assert.Contains(t, buf.String(), "avahi-browse not found")
	})

	t.Run("zeroconf failure is not an error", func(t *testing.T) {
		d := NewDiscoverer(DiscoveryZeroconf, 0, slog.New(slog.DiscardHandler)).
			WithBrowsers(&stubBrowser{}, &stubBrowser{err: errors.New("no multicast")})
		assert.Empty(t, d.Discover(context.Background()))
	})

	t.Run("none never browses", func(t *testing.T) {
		avahi, zc := &stubBrowser{lights: found}, &stubBrowser{lights: found}
		d := NewDiscoverer(DiscoveryNone, 0, nil).WithBrowsers(avahi, zc)
		assert.Empty(t, d.Discover(context.Background()))
		assert.Zero(t, avahi.calls+zc.calls)
	})
}

func TestAvahiBrowserMissingCommand(t *testing.T) {
	b := &AvahiBrowser{Command: "definitely-not-avahi-browse-xyz"}
	_, err := b.Browse(context.Background())
	assert.ErrorIs(t, err, ErrAvahiNotInstalled)
}
