package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/rgbclient/internal/compositor"
	"github.com/danmuck/rgbclient/internal/display"
	"github.com/danmuck/rgbclient/internal/geometry"
	"github.com/danmuck/rgbclient/internal/observability"
	"github.com/danmuck/rgbclient/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrDestExceedsSurface = errors.New("client: destination exceeds display surface")
	ErrDisplay            = errors.New("client: display sink failed")
)

// Config is the immutable per-process session configuration.
type Config struct {
	Address        string
	Retry          RetryPolicy
	Reconnect      bool
	ConnectTimeout time.Duration

	Source  geometry.Rect
	Dest    geometry.Rect
	Content geometry.Rect

	ShowServerFPS bool
	Limits        protocol.Limits
}

func DefaultConfig() Config {
	return Config{
		Retry:          DefaultRetryPolicy(),
		ConnectTimeout: 5 * time.Second,
		Limits:         protocol.DefaultLimits(),
	}
}

// Validate checks the rectangles against each other and the surface.
func (c Config) Validate(surfaceWidth, surfaceHeight int) error {
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source rectangle: %w", err)
	}
	if err := c.Dest.Validate(); err != nil {
		return fmt.Errorf("destination rectangle: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content rectangle: %w", err)
	}
	if c.Dest.DX > surfaceWidth {
		return fmt.Errorf("%w: end x %d > width %d", ErrDestExceedsSurface, c.Dest.DX, surfaceWidth)
	}
	if c.Dest.DY > surfaceHeight {
		return fmt.Errorf("%w: end y %d > height %d", ErrDestExceedsSurface, c.Dest.DY, surfaceHeight)
	}
	return nil
}

// Session owns the socket, frame buffer and display for its lifetime. It is
// driven from a single goroutine.
type Session struct {
	cfg       Config
	connector *Connector
	comp      *compositor.Compositor
	status    *observability.Status
	fps       *observability.FPSMeter
}

// Option customizes a Session.
type Option func(*Session)

func WithDialer(d Dialer) Option {
	return func(s *Session) {
		s.connector.dialer = d
	}
}

func WithStatus(status *observability.Status) Option {
	return func(s *Session) {
		s.status = status
	}
}

func NewSession(cfg Config, sink display.Sink, opts ...Option) (*Session, error) {
	w, h := sink.Size()
	if err := cfg.Validate(w, h); err != nil {
		return nil, err
	}
	if cfg.Limits.MaxBufferBytes == 0 {
		cfg.Limits = protocol.DefaultLimits()
	}
	connector, err := NewConnector(cfg.Address, cfg.Retry, cfg.ConnectTimeout, nil)
	if err != nil {
		return nil, err
	}
	s := &Session{
		cfg:       cfg,
		connector: connector,
		comp:      compositor.New(sink),
		fps:       observability.NewFPSMeter(time.Second),
	}
	for _, opt := range opts {
		opt(s)
	}
	log.Info().
		Int("width", w).Int("height", h).
		Str("src", cfg.Source.String()).Str("dest", cfg.Dest.String()).Str("content", cfg.Content.String()).
		Msg("client.NewSession display ready")
	return s, nil
}

// Run loops over connections until shutdown or until a connection ends with
// reconnect disabled. A failed connect round counts as an ended connection.
// It returns nil on shutdown and after a clean peer disconnect.
func (s *Session) Run(ctx context.Context) error {
	defer s.status.SetState(observability.StateStopped)
	for round := 0; ; round++ {
		if round > 0 {
			s.status.SetState(observability.StateWaiting)
			if err := s.comp.Blank(); err != nil {
				return fmt.Errorf("%w: %v", ErrDisplay, err)
			}
			if err := sleepCtx(ctx, s.cfg.Retry.Delay); err != nil {
				return nil
			}
		}

		err := s.runConnection(ctx)
		if ctx.Err() != nil {
			log.Info().Msg("client.Session.Run shutdown requested")
			return nil
		}
		if errors.Is(err, ErrDisplay) {
			return err
		}
		if !s.cfg.Reconnect {
			if errors.Is(err, protocol.ErrPeerDisconnected) {
				return nil
			}
			return err
		}
		log.Info().Err(err).Int("round", round+1).Msg("client.Session.Run reconnecting")
	}
}

func (s *Session) runConnection(ctx context.Context) error {
	s.status.SetState(observability.StateConnecting)
	conn, err := s.connector.Connect(ctx)
	if err != nil {
		s.status.Disconnected(err)
		return err
	}
	id := uuid.NewString()
	logger := log.With().Str("conn_id", id).Str("addr", s.connector.Address()).Logger()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer func() {
		stop()
		logger.Info().Msg("client.Session.runConnection closing")
		_ = conn.Close()
	}()

	err = s.stream(ctx, conn, id)
	s.status.Disconnected(err)
	switch {
	case ctx.Err() != nil:
		observability.RecordConnection("shutdown")
	case errors.Is(err, protocol.ErrPeerDisconnected):
		logger.Warn().Err(err).Msg("client.Session.runConnection server disconnected")
		observability.RecordConnection("disconnected")
		observability.RecordProtocolError(protocol.Reason(err))
	case errors.Is(err, ErrDisplay):
		logger.Error().Err(err).Msg("client.Session.runConnection display failed")
		observability.RecordConnection("display_error")
	case err != nil:
		logger.Error().Err(err).Msg("client.Session.runConnection connection failed")
		observability.RecordConnection("error")
		observability.RecordProtocolError(protocol.Reason(err))
	}
	return err
}

// stream negotiates the preamble then renders frames until the stream ends.
func (s *Session) stream(ctx context.Context, conn net.Conn, id string) error {
	logger := log.With().Str("conn_id", id).Logger()

	p, err := protocol.ReadPreamble(conn)
	if err != nil {
		return err
	}
	logger.Info().
		Uint32("buffer_size", p.BufferSize).
		Uint16("pitch", p.BitmapPitch).
		Uint16("width", p.BitmapWidth).
		Uint16("height", p.BitmapHeight).
		Stringer("pixel_format", p.PixelFormat).
		Uint8("attrs", p.Attrs).
		Msg("client.Session.stream preamble")
	if err := p.CheckMagic(); err != nil {
		logger.Warn().Err(err).Msg("client.Session.stream continuing despite magic mismatch")
	}
	if err := p.Validate(s.cfg.Limits); err != nil {
		return err
	}
	logger.Info().
		Float64("projected_mbps", float64(p.BufferSize)*60/1024/1024).
		Msg("client.Session.stream bandwidth at 60fps")

	blit := geometry.NewBlit(s.cfg.Content, s.cfg.Source, s.cfg.Dest, int(p.BitmapWidth), int(p.BitmapHeight), p.Rotated())
	logger.Debug().
		Str("blit_src", blit.Src.String()).
		Str("blit_dest", blit.Dest.String()).
		Bool("rotated", blit.Rotated).
		Int("axis", blit.Axis).
		Msg("client.Session.stream geometry")

	frame := make([]byte, p.BufferSize)
	reader := protocol.NewFrameReader(conn, len(frame))
	s.fps.Reset()
	s.status.Connected(id, observability.StreamInfo{
		BufferSize:  p.BufferSize,
		Pitch:       p.BitmapPitch,
		Width:       p.BitmapWidth,
		Height:      p.BitmapHeight,
		PixelFormat: p.PixelFormat.String(),
		Rotated:     p.Rotated(),
	})

	for ctx.Err() == nil {
		if err := reader.ReadFrame(frame); err != nil {
			return err
		}
		if s.cfg.ShowServerFPS {
			if fps, ok := s.fps.Tick(); ok {
				logger.Info().Float64("fps", fps).Msg("client.Session.stream server fps")
			}
		}
		start := time.Now()
		if err := s.comp.Render(frame, p, blit); err != nil {
			return fmt.Errorf("%w: %v", ErrDisplay, err)
		}
		observability.RecordFrame(len(frame), time.Since(start))
		s.status.FrameRendered()
	}
	return nil
}
