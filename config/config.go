// Package config loads the publisher's YAML configuration and watches it
// for changes to the handful of fields that are safe to hot-reload.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the complete publisher configuration. setDefaults fills in
// the chunk size, window ack size, composition offset and (when telemetry
// is enabled) telemetry address; the server address, app and stream key
// have no defaults.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Publish   PublishConfig   `yaml:"publish"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// ServerConfig is the RTMP endpoint being published to.
type ServerConfig struct {
	Address string `yaml:"address"` // host:port, no scheme
	App     string `yaml:"app"`
}

// PublishConfig controls stream key and wire-framing parameters. Note that
// ChunkSize and WindowAckSize affect what actually goes on the wire and
// are deliberately excluded from hot-reload: changing them mid-stream
// without renegotiating with the server would desync the chunk decoder on
// both ends.
type PublishConfig struct {
	StreamKey               string `yaml:"stream_key"`
	ChunkSize               uint32 `yaml:"chunk_size"`
	WindowAckSize           uint32 `yaml:"window_ack_size"`
	CompositionOffsetMillis int32  `yaml:"composition_offset_millis"`
}

// TelemetryConfig controls the optional websocket status endpoint.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

const (
	defaultChunkSize               = 4096
	defaultWindowAckSize           = 2500000
	defaultCompositionOffsetMillis = 100
	defaultTelemetryAddress        = ":9091"
)

// Load reads and strictly decodes the YAML file at path, rejecting unknown
// fields, then applies defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: read file")
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode yaml")
	}

	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Publish.ChunkSize == 0 {
		c.Publish.ChunkSize = defaultChunkSize
	}
	if c.Publish.WindowAckSize == 0 {
		c.Publish.WindowAckSize = defaultWindowAckSize
	}
	if c.Publish.CompositionOffsetMillis == 0 {
		c.Publish.CompositionOffsetMillis = defaultCompositionOffsetMillis
	}
	if c.Telemetry.Enabled && c.Telemetry.Address == "" {
		c.Telemetry.Address = defaultTelemetryAddress
	}
}
