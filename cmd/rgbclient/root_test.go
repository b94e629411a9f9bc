package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/rgbclient/internal/client"
	"github.com/danmuck/rgbclient/internal/config"
	"github.com/danmuck/rgbclient/internal/geometry"
	"github.com/danmuck/rgbclient/internal/pixel"
	"github.com/danmuck/rgbclient/internal/producer"
	"github.com/danmuck/rgbclient/internal/testutil/testlog"
	"github.com/spf13/pflag"
)

func parseOptions(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	opts := &rootOptions{}
	fs := pflag.NewFlagSet("rgbclient", pflag.ContinueOnError)
	opts.bind(fs)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	return opts.resolve(fs, fs.Args())
}

func TestResolveFlagsOnly(t *testing.T) {
	testlog.Start(t)
	cfg, err := parseOptions(t,
		"--src-rect", "0,0-128,64",
		"--dest-rect=0,0-64,32",
		"--content-rect", "0,0-128,64",
		"--retry-count", "-1",
		"--reconnect",
		"10.1.1.7",
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Address() != "10.1.1.7:3500" {
		t.Fatalf("address: %q", cfg.Address())
	}
	if cfg.RetryCount != -1 || !cfg.Reconnect || cfg.RetryDelayMS != config.DefaultRetryDelayMS {
		t.Fatalf("retry settings: %+v", cfg)
	}
	if cfg.Source != (geometry.Rect{SX: 0, SY: 0, DX: 128, DY: 64}) {
		t.Fatalf("source: %v", cfg.Source)
	}
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	testlog.Start(t)
	cfg, err := parseOptions(t,
		"--config", "ex.config.toml",
		"--retry-count", "0",
		"--dest-rect", "8,0-72,32",
		"--width", "80",
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Port != 4000 || cfg.RetryDelayMS != 250 || !cfg.Reconnect {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.RetryCount != 0 {
		t.Fatalf("explicit flag should win over file, got retry_count=%d", cfg.RetryCount)
	}
	if cfg.Dest != (geometry.Rect{SX: 8, SY: 0, DX: 72, DY: 32}) || cfg.Width != 80 {
		t.Fatalf("flag overrides lost: dest=%v width=%d", cfg.Dest, cfg.Width)
	}
	if cfg.Server != "127.0.0.1" {
		t.Fatalf("server from file: %q", cfg.Server)
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	if _, err := parseOptions(t, "--src-rect", "0,0,64,32", "host"); err == nil || !strings.Contains(err.Error(), "missing '-'") {
		t.Fatalf("expected rect syntax error, got %v", err)
	}
	if _, err := parseOptions(t, "--src-rect", "0,0-0,5", "--dest-rect", "0,0-1,1", "--content-rect", "0,0-1,1", "host"); !errors.Is(err, geometry.ErrInvalidRect) {
		t.Fatalf("expected ErrInvalidRect, got %v", err)
	}
	if _, err := parseOptions(t, "--config", "ex.config.toml", "--port", "0"); !errors.Is(err, config.ErrInvalidPort) {
		t.Fatalf("expected ErrInvalidPort, got %v", err)
	}
	if _, err := parseOptions(t, "--config", "ex.config.toml", "--retry-delay", "0"); !errors.Is(err, config.ErrInvalidRetryDelay) {
		t.Fatalf("expected ErrInvalidRetryDelay, got %v", err)
	}
	if _, err := parseOptions(t, "--src-rect", "0,0-1,1", "--dest-rect", "0,0-1,1"); !errors.Is(err, config.ErrMissingServer) {
		t.Fatalf("expected ErrMissingServer, got %v", err)
	}
}

func startProducer(t *testing.T) (host string, port int) {
	t.Helper()
	cfg := producer.DefaultConfig()
	cfg.Width, cfg.Height = 64, 32
	cfg.Pattern = producer.PatternSolid
	cfg.Color = pixel.RGB{R: 255, G: 255, B: 255}
	cfg.FPS = 0
	cfg.Frames = 2
	p, err := producer.New(cfg)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestRootCommandStreamsUntilServerLeaves(t *testing.T) {
	testlog.Start(t)
	host, port := startProducer(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		host,
		"--port", strconv.Itoa(port),
		"--src-rect", "0,0-64,32",
		"--dest-rect", "0,0-64,32",
		"--content-rect", "0,0-64,32",
		"--display", "memory",
		"--metrics-addr", "127.0.0.1:0",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestRootCommandFailsWhenServerUnreachable(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"127.0.0.1",
		"--port", strconv.Itoa(port),
		"--retry-count", "1",
		"--retry-delay", "1",
		"--src-rect", "0,0-64,32",
		"--dest-rect", "0,0-64,32",
		"--content-rect", "0,0-64,32",
		"--display", "memory",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cmd.ExecuteContext(ctx); !errors.Is(err, client.ErrConnectFailed) {
		t.Fatalf("expected ErrConnectFailed, got %v", err)
	}
}

func TestRootCommandRejectsDestBeyondDisplay(t *testing.T) {
	testlog.Start(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"127.0.0.1",
		"--src-rect", "0,0-64,32",
		"--dest-rect", "0,0-65,32",
		"--content-rect", "0,0-64,32",
		"--display", "memory",
	})
	if err := cmd.ExecuteContext(context.Background()); !errors.Is(err, client.ErrDestExceedsSurface) {
		t.Fatalf("expected ErrDestExceedsSurface, got %v", err)
	}
}

func TestInitWritesTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "client.toml")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Fatalf("unexpected output %q", out.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if string(data) != config.Template() {
		t.Fatalf("template content mismatch")
	}
}
