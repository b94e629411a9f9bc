package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/danmuck/rgbclient/internal/observability"
	"github.com/rs/zerolog/log"
)

var (
	ErrAddressRequired = errors.New("client: server address required")
	ErrConnectFailed   = errors.New("client: connect failed")
)

// Dialer is satisfied by *net.Dialer.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Connector opens the transport with the configured retry policy.
type Connector struct {
	address string
	policy  RetryPolicy
	timeout time.Duration
	dialer  Dialer
	rng     *rand.Rand
}

func NewConnector(address string, policy RetryPolicy, timeout time.Duration, dialer Dialer) (*Connector, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrAddressRequired
	}
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	return &Connector{
		address: address,
		policy:  policy,
		timeout: timeout,
		dialer:  dialer,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (c *Connector) Address() string { return c.address }

// Connect runs one round of attempts. Cancellation of ctx ends the round
// early and returns ctx.Err().
func (c *Connector) Connect(ctx context.Context) (net.Conn, error) {
	log.Info().Str("addr", c.address).Int("retry_count", c.policy.Count).Msg("client.Connector.Connect connecting")
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := c.dial(ctx)
		observability.RecordConnectAttempt(err == nil)
		if err == nil {
			log.Info().Str("addr", c.address).Int("attempt", attempt).Msg("client.Connector.Connect connected")
			return conn, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Debug().Err(err).Str("addr", c.address).Int("attempt", attempt).Msg("client.Connector.Connect dial failed")
		if !c.policy.Allows(attempt) {
			log.Error().Err(err).Str("addr", c.address).Int("attempts", attempt).Msg("client.Connector.Connect giving up")
			return nil, fmt.Errorf("%w: %s after %d attempt(s): %v", ErrConnectFailed, c.address, attempt, err)
		}
		if err := sleepCtx(ctx, c.policy.NextDelay(attempt, c.rng)); err != nil {
			return nil, err
		}
	}
}

func (c *Connector) dial(ctx context.Context) (net.Conn, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.dialer.DialContext(ctx, "tcp", c.address)
}
