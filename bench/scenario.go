package bench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warrenjitsing/LinkedInArticles-sub001/transport"
)

// Scenario describes one load-generation run. Zero values are filled in
// by ApplyDefaults before validation.
type Scenario struct {
	Transport    string `yaml:"transport"`     // tcp, unix, tcp-uring, unix-uring
	Host         string `yaml:"host"`          // tcp kinds
	Port         uint16 `yaml:"port"`          // tcp kinds
	SocketPath   string `yaml:"socket_path"`   // unix kinds
	Connections  int    `yaml:"connections"`   // concurrent workers
	Requests     int    `yaml:"requests"`      // per worker
	PayloadSize  int    `yaml:"payload_size"`  // POST body bytes
	ResponseSize int    `yaml:"response_size"` // expected response body bytes
}

// DefaultScenario returns the built-in smoke-test scenario.
func DefaultScenario() *Scenario {
	s := &Scenario{}
	s.ApplyDefaults()
	return s
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates YAML scenario bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyDefaults fills unset fields with sensible values.
func (s *Scenario) ApplyDefaults() {
	if s.Transport == "" {
		s.Transport = "tcp"
	}
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.SocketPath == "" {
		s.SocketPath = fmt.Sprintf("/tmp/httpbench_%d.sock", os.Getpid())
	}
	if s.Connections == 0 {
		s.Connections = 1
	}
	if s.Requests == 0 {
		s.Requests = 100
	}
	if s.PayloadSize == 0 {
		s.PayloadSize = 64
	}
	if s.ResponseSize == 0 {
		s.ResponseSize = 1024
	}
}

// Validate rejects scenarios the runner cannot execute.
func (s *Scenario) Validate() error {
	kind, err := transport.ParseKind(s.Transport)
	if err != nil {
		return err
	}
	switch kind {
	case transport.KindTcp, transport.KindTcpUring:
		if s.Host == "" {
			return fmt.Errorf("tcp scenario requires a host")
		}
		if s.Port == 0 {
			return fmt.Errorf("tcp scenario requires a port")
		}
	case transport.KindUnix, transport.KindUnixUring:
		if s.SocketPath == "" {
			return fmt.Errorf("unix scenario requires a socket path")
		}
	}
	if s.Connections < 1 {
		return fmt.Errorf("connections must be >= 1, got %d", s.Connections)
	}
	if s.Requests < 1 {
		return fmt.Errorf("requests must be >= 1, got %d", s.Requests)
	}
	if s.PayloadSize < 0 {
		return fmt.Errorf("payload_size must be >= 0, got %d", s.PayloadSize)
	}
	if s.ResponseSize < 0 {
		return fmt.Errorf("response_size must be >= 0, got %d", s.ResponseSize)
	}
	return nil
}

// Kind returns the parsed transport kind. Validate must have succeeded.
func (s *Scenario) Kind() transport.Kind {
	kind, _ := transport.ParseKind(s.Transport)
	return kind
}

// Target returns the connect address for the scenario's transport kind.
func (s *Scenario) Target() (string, uint16) {
	switch s.Kind() {
	case transport.KindUnix, transport.KindUnixUring:
		return s.SocketPath, 0
	default:
		return s.Host, s.Port
	}
}
