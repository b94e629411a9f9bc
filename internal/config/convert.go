package config

import (
	"github.com/danmuck/rgbclient/internal/client"
	"github.com/danmuck/rgbclient/internal/display"
	"github.com/danmuck/rgbclient/internal/protocol"
)

// Headless sinks default to a 64x32 panel.
const (
	DefaultMemoryWidth  = 64
	DefaultMemoryHeight = 32
)

func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.Address = c.Address()
	cfg.Retry = client.RetryPolicy{
		Count:      c.RetryCount,
		Delay:      ms(c.RetryDelayMS),
		Multiplier: c.RetryBackoff,
		MaxDelay:   ms(c.RetryMaxDelayMS),
	}
	cfg.Reconnect = c.Reconnect
	if c.ConnectTimeoutMS > 0 {
		cfg.ConnectTimeout = ms(c.ConnectTimeoutMS)
	}
	cfg.Source = c.Source
	cfg.Dest = c.Dest
	cfg.Content = c.Content
	cfg.ShowServerFPS = c.ShowServerFPS
	cfg.Limits = protocol.Limits{MaxBufferBytes: c.MaxBufferBytes}
	return cfg
}

func (c Config) DisplayOptions(interrupt func()) (display.Options, error) {
	kind, err := display.ParseKind(c.Display)
	if err != nil {
		return display.Options{}, err
	}
	opts := display.Options{
		Kind:      kind,
		Width:     c.Width,
		Height:    c.Height,
		Interrupt: interrupt,
	}
	if kind == display.KindMemory {
		if opts.Width <= 0 {
			opts.Width = DefaultMemoryWidth
		}
		if opts.Height <= 0 {
			opts.Height = DefaultMemoryHeight
		}
	}
	return opts, nil
}
