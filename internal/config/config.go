package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/rgbclient/internal/geometry"
	"github.com/danmuck/rgbclient/internal/protocol"
)

var (
	ErrMissingServer     = errors.New("config: server address is required")
	ErrMissingRect       = errors.New("config: rectangle is required")
	ErrInvalidPort       = errors.New("config: port must be in 1..65535")
	ErrInvalidRetryDelay = errors.New("config: retry delay must be positive")
	ErrInvalidBackoff    = errors.New("config: retry backoff must be >= 1")
)

const (
	DefaultPort         = 3500
	DefaultRetryDelayMS = 500
	DefaultTimeoutMS    = 5000
)

// Config is the merged client configuration: defaults, then the toml file,
// then explicitly set flags.
type Config struct {
	Server string `toml:"server"`
	Port   int    `toml:"port"`

	Source  geometry.Rect `toml:"source"`
	Dest    geometry.Rect `toml:"dest"`
	Content geometry.Rect `toml:"content"`

	RetryCount       int     `toml:"retry_count"`
	RetryDelayMS     int64   `toml:"retry_delay_ms"`
	RetryBackoff     float64 `toml:"retry_backoff"`
	RetryMaxDelayMS  int64   `toml:"retry_max_delay_ms"`
	Reconnect        bool    `toml:"reconnect"`
	ConnectTimeoutMS int64   `toml:"connect_timeout_ms"`

	ShowServerFPS  bool   `toml:"show_server_fps"`
	MaxBufferBytes uint32 `toml:"max_buffer_bytes"`

	Display string `toml:"display"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`

	MetricsAddr string   `toml:"metrics_addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

func Default() Config {
	return Config{
		Port:             DefaultPort,
		RetryDelayMS:     DefaultRetryDelayMS,
		RetryBackoff:     1.0,
		ConnectTimeoutMS: DefaultTimeoutMS,
		MaxBufferBytes:   protocol.DefaultLimits().MaxBufferBytes,
		Display:          "terminal",
	}
}

// LoadFile overlays the keys present in path onto base. Keys absent from the
// file keep their base value.
func LoadFile(path string, base Config) (Config, error) {
	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	cfg := base
	if meta.IsDefined("server") {
		cfg.Server = strings.TrimSpace(raw.Server)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("source") {
		cfg.Source = raw.Source
	}
	if meta.IsDefined("dest") {
		cfg.Dest = raw.Dest
	}
	if meta.IsDefined("content") {
		cfg.Content = raw.Content
	}
	if meta.IsDefined("retry_count") {
		cfg.RetryCount = raw.RetryCount
	}
	if meta.IsDefined("retry_delay_ms") {
		cfg.RetryDelayMS = raw.RetryDelayMS
	}
	if meta.IsDefined("retry_backoff") {
		cfg.RetryBackoff = raw.RetryBackoff
	}
	if meta.IsDefined("retry_max_delay_ms") {
		cfg.RetryMaxDelayMS = raw.RetryMaxDelayMS
	}
	if meta.IsDefined("reconnect") {
		cfg.Reconnect = raw.Reconnect
	}
	if meta.IsDefined("connect_timeout_ms") {
		cfg.ConnectTimeoutMS = raw.ConnectTimeoutMS
	}
	if meta.IsDefined("show_server_fps") {
		cfg.ShowServerFPS = raw.ShowServerFPS
	}
	if meta.IsDefined("max_buffer_bytes") {
		cfg.MaxBufferBytes = raw.MaxBufferBytes
	}
	if meta.IsDefined("display") {
		cfg.Display = strings.TrimSpace(raw.Display)
	}
	if meta.IsDefined("width") {
		cfg.Width = raw.Width
	}
	if meta.IsDefined("height") {
		cfg.Height = raw.Height
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}
	return cfg, nil
}

// Validate checks everything that can be checked before the display exists.
// Destination bounds are checked against the surface by the session.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return ErrMissingServer
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.RetryDelayMS <= 0 {
		return fmt.Errorf("%w: %dms", ErrInvalidRetryDelay, c.RetryDelayMS)
	}
	if c.RetryBackoff != 0 && c.RetryBackoff < 1 {
		return fmt.Errorf("%w: %g", ErrInvalidBackoff, c.RetryBackoff)
	}
	rects := []struct {
		name string
		rect geometry.Rect
	}{
		{"source", c.Source},
		{"dest", c.Dest},
		{"content", c.Content},
	}
	for _, r := range rects {
		if r.rect == (geometry.Rect{}) {
			return fmt.Errorf("%w: %s", ErrMissingRect, r.name)
		}
		if err := r.rect.Validate(); err != nil {
			return fmt.Errorf("%s rectangle: %w", r.name, err)
		}
	}
	return nil
}

// Address joins server and port. A server that already carries a port keeps it.
func (c Config) Address() string {
	server := strings.TrimSpace(c.Server)
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, strconv.Itoa(c.Port))
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}
