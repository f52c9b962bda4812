package keylight_test

import (
	"net"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

func lightConfigFor(t *testing.T, srv *httptest.Server, name string) keylight.LightConfig {
	t.Helper()
	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return keylight.LightConfig{Name: name, Host: host, Port: port}
}
