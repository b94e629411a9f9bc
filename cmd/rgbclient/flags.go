package main

import (
	"github.com/danmuck/rgbclient/internal/config"
	"github.com/danmuck/rgbclient/internal/geometry"
	"github.com/spf13/pflag"
)

// rectValue parses "sx,sy-dx,dy" straight into a geometry.Rect.
type rectValue struct {
	rect *geometry.Rect
}

var _ pflag.Value = (*rectValue)(nil)

func (v *rectValue) String() string {
	if v.rect == nil || *v.rect == (geometry.Rect{}) {
		return ""
	}
	return v.rect.String()
}

func (v *rectValue) Set(raw string) error {
	r, err := geometry.ParseRect(raw)
	if err != nil {
		return err
	}
	*v.rect = r
	return nil
}

func (v *rectValue) Type() string { return "rect" }

type rootOptions struct {
	configPath string
	verbose    bool

	port        int
	retryCount  int
	retryDelay  int64
	reconnect   bool
	sfps        bool
	source      geometry.Rect
	dest        geometry.Rect
	content     geometry.Rect
	display     string
	width       int
	height      int
	metricsAddr string
}

func (o *rootOptions) bind(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringVarP(&o.configPath, "config", "c", "", "toml config file")

	fs.IntVar(&o.port, "port", def.Port, "server port")
	fs.IntVar(&o.retryCount, "retry-count", def.RetryCount, "connect retries per round (-1 retries forever)")
	fs.Int64Var(&o.retryDelay, "retry-delay", def.RetryDelayMS, "delay between attempts in milliseconds")
	fs.BoolVar(&o.reconnect, "reconnect", def.Reconnect, "reconnect after the server goes away")
	fs.BoolVar(&o.sfps, "sfps", def.ShowServerFPS, "log the frame rate received from the server")
	fs.Var(&rectValue{rect: &o.source}, "src-rect", "source rectangle in the server bitmap (sx,sy-dx,dy)")
	fs.Var(&rectValue{rect: &o.dest}, "dest-rect", "destination rectangle on the display (sx,sy-dx,dy)")
	fs.Var(&rectValue{rect: &o.content}, "content-rect", "content rectangle used for centering (sx,sy-dx,dy)")
	fs.StringVar(&o.display, "display", def.Display, "display sink: terminal or memory")
	fs.IntVar(&o.width, "width", def.Width, "display width in pixels (0 uses the sink's size)")
	fs.IntVar(&o.height, "height", def.Height, "display height in pixels (0 uses the sink's size)")
	fs.StringVar(&o.metricsAddr, "metrics-addr", def.MetricsAddr, "serve /healthz, /status and /metrics on host:port")
}

// resolve merges defaults, the config file and the flags the user actually
// set, in that order.
func (o *rootOptions) resolve(fs *pflag.FlagSet, args []string) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadFile(o.configPath, cfg)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Server = args[0]
	}
	if fs.Changed("port") {
		cfg.Port = o.port
	}
	if fs.Changed("retry-count") {
		cfg.RetryCount = o.retryCount
	}
	if fs.Changed("retry-delay") {
		cfg.RetryDelayMS = o.retryDelay
	}
	if fs.Changed("reconnect") {
		cfg.Reconnect = o.reconnect
	}
	if fs.Changed("sfps") {
		cfg.ShowServerFPS = o.sfps
	}
	if fs.Changed("src-rect") {
		cfg.Source = o.source
	}
	if fs.Changed("dest-rect") {
		cfg.Dest = o.dest
	}
	if fs.Changed("content-rect") {
		cfg.Content = o.content
	}
	if fs.Changed("display") {
		cfg.Display = o.display
	}
	if fs.Changed("width") {
		cfg.Width = o.width
	}
	if fs.Changed("height") {
		cfg.Height = o.height
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
