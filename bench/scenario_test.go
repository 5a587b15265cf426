package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warrenjitsing/LinkedInArticles-sub001/transport"
)

func TestParseScenario_Full(t *testing.T) {
	data := []byte(`
transport: unix
socket_path: /tmp/bench.sock
connections: 4
requests: 500
payload_size: 128
response_size: 4096
`)

	s, err := ParseScenario(data)
	require.NoError(t, err)

	assert.Equal(t, transport.KindUnix, s.Kind())
	assert.Equal(t, "/tmp/bench.sock", s.SocketPath)
	assert.Equal(t, 4, s.Connections)
	assert.Equal(t, 500, s.Requests)
	assert.Equal(t, 128, s.PayloadSize)
	assert.Equal(t, 4096, s.ResponseSize)

	host, port := s.Target()
	assert.Equal(t, "/tmp/bench.sock", host)
	assert.Equal(t, uint16(0), port)
}

func TestParseScenario_Defaults(t *testing.T) {
	s, err := ParseScenario([]byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, transport.KindTcp, s.Kind())
	assert.Equal(t, "127.0.0.1", s.Host)
	assert.Equal(t, uint16(8080), s.Port)
	assert.Equal(t, 1, s.Connections)
	assert.Equal(t, 100, s.Requests)

	host, port := s.Target()
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, uint16(8080), port)
}

func TestParseScenario_UnknownTransport(t *testing.T) {
	_, err := ParseScenario([]byte(`transport: carrier-pigeon`))
	assert.Error(t, err)
}

func TestParseScenario_BadYaml(t *testing.T) {
	_, err := ParseScenario([]byte(`transport: [`))
	assert.Error(t, err)
}

func TestScenario_Validate_Bounds(t *testing.T) {
	s := DefaultScenario()
	s.Connections = -1
	assert.Error(t, s.Validate())

	s = DefaultScenario()
	s.Requests = -5
	assert.Error(t, s.Validate())

	s = DefaultScenario()
	s.PayloadSize = -1
	assert.Error(t, s.Validate())
}
