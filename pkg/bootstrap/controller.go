package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/warmboot/pkg/log"
	"github.com/bft-labs/warmboot/pkg/rtcmem"
)

// Default controller configuration values.
const (
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultConnectTimeout = 15 * time.Second
	DefaultMaxAttempts    = 3
)

// Config holds the controller configuration.
type Config struct {
	Credentials Credentials

	// PollInterval is the delay between Connected checks while waiting
	// for an association to complete.
	PollInterval time.Duration

	// ConnectTimeout bounds a single association attempt. The original
	// firmware blocked forever here; a bounded wait with a cold retry is
	// a deliberate deviation.
	ConnectTimeout time.Duration

	// MaxAttempts is the total number of association attempts before
	// Bootstrap gives up with ErrConnectTimeout. Attempts after the first
	// always take the cold path.
	MaxAttempts int
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Credentials.SSID == "" {
		return fmt.Errorf("%w: ssid is required", ErrInvalidConfig)
	}
	if c.PollInterval < 0 || c.ConnectTimeout < 0 || c.MaxAttempts < 0 {
		return fmt.Errorf("%w: intervals and attempts must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Option configures optional controller behavior.
type Option func(*Controller)

// WithLogger sets the structured logger. Default is log.Noop.
func WithLogger(logger log.Logger) Option {
	return func(c *Controller) { c.log = logger }
}

// WithClock sets the clock used for the connect wait. Default is the real
// clock; tests inject a mock.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clk = clk }
}

// Controller runs the boot-time connection sequence against a persistent
// record and a network stack. It is not safe for concurrent use; the boot
// control flow is single-threaded by design.
type Controller struct {
	rec   *rtcmem.Record
	stack NetworkStack
	cfg   Config
	log   log.Logger
	clk   clock.Clock
}

// New creates a Controller. cfg is validated and missing values take
// defaults.
func New(rec *rtcmem.Record, stack NetworkStack, cfg Config, opts ...Option) (*Controller, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		rec:   rec,
		stack: stack,
		cfg:   cfg,
		log:   log.Noop{},
		clk:   clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Result summarizes a completed bootstrap.
type Result struct {
	// Path is the branch taken on the attempt that connected: PhaseCold
	// or PhaseWarm.
	Path Phase

	// Attempts is the number of association attempts made.
	Attempts int

	Channel    int32
	ResetCount uint32
	SleepCount uint32
}

// Bootstrap runs one full boot cycle: decide cold vs warm from record
// validity, drive the network stack, wait for the association, then
// re-derive and re-persist the record from live connection state.
//
// A warm attempt that times out clears the record and retries cold; after
// cfg.MaxAttempts the call fails with ErrConnectTimeout. Cancelling ctx
// aborts the wait.
func (c *Controller) Bootstrap(ctx context.Context, cause RestartCause) (Result, error) {
	var path Phase
	attempts := 0
	for {
		attempts++
		warm := c.rec.IsValid()
		if warm {
			path = PhaseWarm
			if err := c.startWarm(ctx, cause); err != nil {
				return Result{}, err
			}
		} else {
			path = PhaseCold
			c.startCold(ctx)
		}

		c.enter(PhaseConnecting)
		err := c.waitConnected(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return Result{}, err
		}
		c.log.Warn("association timed out",
			log.Str("path", path.String()),
			log.Int("attempt", attempts),
			log.Dur("timeout", c.cfg.ConnectTimeout),
		)
		// Stale hints are the prime suspect; drop them so the retry and
		// the next boot rediscover from scratch.
		c.rec.Clear()
		if attempts >= c.cfg.MaxAttempts {
			return Result{}, fmt.Errorf("%w after %d attempts", ErrConnectTimeout, attempts)
		}
	}

	c.enter(PhaseFinalize)
	if err := c.finalize(); err != nil {
		return Result{}, err
	}

	res := Result{
		Path:       path,
		Attempts:   attempts,
		Channel:    c.rec.Channel(),
		ResetCount: c.rec.ResetCount(),
		SleepCount: c.rec.SleepCount(),
	}
	c.log.Info("bootstrap complete",
		log.Str("path", res.Path.String()),
		log.Int("attempts", res.Attempts),
		log.Int32("channel", res.Channel),
		log.Uint32("resets", res.ResetCount),
		log.Uint32("sleeps", res.SleepCount),
	)
	return res, nil
}

// startCold clears the record and requests a full-discovery association.
// Counters are untouched: a cold boot starts the history over.
func (c *Controller) startCold(ctx context.Context) {
	c.enter(PhaseCold)
	c.rec.Clear()
	if err := c.stack.Connect(ctx, c.cfg.Credentials); err != nil {
		c.log.Warn("connect request failed", log.Err(err))
	}
}

// startWarm classifies the restart, bumps the matching counter, replays
// the stored address configuration, and requests a hinted association.
func (c *Controller) startWarm(ctx context.Context, cause RestartCause) error {
	c.enter(PhaseWarm)
	switch cause {
	case CauseDeepSleepWake:
		c.rec.IncSleepCount()
	default:
		c.rec.IncResetCount()
	}
	// Seal immediately: nothing may observe a structurally updated but
	// unvalidated record.
	c.rec.MakeValid()

	if err := c.stack.ConfigureAddrs(c.rec.AddrConfig()); err != nil {
		return fmt.Errorf("configure addresses: %w", err)
	}
	channel := c.rec.Channel()
	peer := c.rec.StationID()
	c.log.Debug("reusing stored hints",
		log.Int32("channel", channel),
		log.Hex("peer", peer),
	)
	if err := c.stack.ConnectHinted(ctx, c.cfg.Credentials, channel, peer); err != nil {
		c.log.Warn("hinted connect request failed", log.Err(err))
	}
	return nil
}

// waitConnected polls the stack until it reports an established
// association, the timeout elapses, or ctx is cancelled.
func (c *Controller) waitConnected(ctx context.Context) error {
	if c.stack.Connected() {
		return nil
	}
	deadline := c.clk.Now().Add(c.cfg.ConnectTimeout)
	ticker := c.clk.Ticker(c.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if c.stack.Connected() {
				return nil
			}
			if !now.Before(deadline) {
				return ErrConnectTimeout
			}
		}
	}
}

// finalize copies live connection state into the record and seals it.
func (c *Controller) finalize() error {
	c.rec.SetChannel(c.stack.Channel())
	if err := c.rec.SetStationID(c.stack.PeerAddr()); err != nil {
		return err
	}
	if err := c.rec.SetAddrConfig(c.stack.Addrs()); err != nil {
		return err
	}
	c.rec.MakeValid()
	return nil
}

func (c *Controller) enter(p Phase) {
	c.log.Debug("phase", log.Str("phase", p.String()))
}
