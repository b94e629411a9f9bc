package main

import (
	"fmt"
	"net"

	"github.com/danmuck/rgbclient/internal/logging"
	"github.com/danmuck/rgbclient/internal/pixel"
	"github.com/danmuck/rgbclient/internal/producer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	listen  string
	width   int
	height  int
	format  string
	pattern string
	color   string
	fps     int
	frames  int
	chunk   int
	rotate  bool
	verbose bool
}

func (o serveOptions) producerConfig() (producer.Config, error) {
	cfg := producer.DefaultConfig()
	cfg.Width = o.width
	cfg.Height = o.height
	cfg.FPS = o.fps
	cfg.Frames = o.frames
	cfg.WriteChunk = o.chunk
	cfg.Rotate = o.rotate

	format, err := pixel.ParseFormat(o.format)
	if err != nil {
		return producer.Config{}, err
	}
	cfg.Format = format
	pattern, err := producer.ParsePattern(o.pattern)
	if err != nil {
		return producer.Config{}, err
	}
	cfg.Pattern = pattern
	color, err := producer.ParseColor(o.color)
	if err != nil {
		return producer.Config{}, err
	}
	cfg.Color = color
	return cfg, cfg.Validate()
}

func newRootCmd() *cobra.Command {
	def := producer.DefaultConfig()
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:           "rgbserve",
		Short:         "Stream test-pattern frames to rgbclient peers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				logging.SetLevel(zerolog.DebugLevel)
			}
			cfg, err := opts.producerConfig()
			if err != nil {
				return err
			}
			p, err := producer.New(cfg)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", opts.listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", opts.listen, err)
			}
			pre := p.Preamble()
			log.Info().
				Str("addr", ln.Addr().String()).
				Stringer("pixel_format", pre.PixelFormat).
				Uint16("width", pre.BitmapWidth).
				Uint16("height", pre.BitmapHeight).
				Str("pattern", string(cfg.Pattern)).
				Int("fps", cfg.FPS).
				Msg("rgbserve listening")
			return p.Serve(cmd.Context(), ln)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.listen, "listen", ":3500", "listen address")
	fs.IntVar(&opts.width, "width", def.Width, "bitmap width")
	fs.IntVar(&opts.height, "height", def.Height, "bitmap height")
	fs.StringVar(&opts.format, "format", def.Format.String(), "pixel format: RGB565, RGBA8888, ARGB8888 or RGBA5551")
	fs.StringVar(&opts.pattern, "pattern", string(def.Pattern), "test pattern: solid, bars or sweep")
	fs.StringVar(&opts.color, "color", "#ffffff", "color for the solid and sweep patterns")
	fs.IntVar(&opts.fps, "fps", def.FPS, "frames per second (0 sends as fast as possible)")
	fs.IntVar(&opts.frames, "frames", 0, "frames per connection (0 streams until the peer leaves)")
	fs.IntVar(&opts.chunk, "chunk", 0, "split frame writes into chunks of this many bytes")
	fs.BoolVar(&opts.rotate, "rotate", false, "set the rotate-180 attribute")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}
