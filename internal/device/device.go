// Package device wires the persistent record, bootstrap controller, and
// collaborators into the boot/idle/suspend cycle of a simulated device.
package device

import (
	"context"
	"io"
	"os"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/warmboot/internal/cliconfig"
	"github.com/bft-labs/warmboot/internal/console"
	"github.com/bft-labs/warmboot/internal/netstack"
	"github.com/bft-labs/warmboot/internal/power"
	"github.com/bft-labs/warmboot/internal/watch"
	"github.com/bft-labs/warmboot/pkg/bootstrap"
	"github.com/bft-labs/warmboot/pkg/log"
	"github.com/bft-labs/warmboot/pkg/rtcmem"
)

// Params collects the dependencies of Run. Only Config is required; the
// rest default to production implementations.
type Params struct {
	Config cliconfig.Config
	Logger log.Logger
	Clock  clock.Clock

	// In is the console input stream. Defaults to stdin.
	In io.Reader

	// Stack replaces the built-in simulated network stack, mainly for
	// tests.
	Stack bootstrap.NetworkStack

	// ConfigPath, when set, is watched for credential changes.
	ConfigPath string
}

// Run executes device boot cycles until the context is cancelled, the
// console quits, or cfg.Once stops after the first successful boot.
//
// Each cycle is strictly sequential: the bootstrap sequence runs to
// completion before the idle loop starts handling console commands, so
// nothing can observe or mutate the record mid-bootstrap.
func Run(ctx context.Context, p Params) error {
	cfg := p.Config
	logger := p.Logger
	if logger == nil {
		logger = log.Noop{}
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	in := p.In
	if in == nil {
		in = os.Stdin
	}

	region, err := rtcmem.NewRegion(cfg.RegionSize)
	if err != nil {
		return err
	}
	rec, err := rtcmem.Attach(region)
	if err != nil {
		return err
	}

	creds := bootstrap.Credentials{SSID: cfg.SSID, Passphrase: cfg.Passphrase}
	stack := p.Stack
	if stack == nil {
		stack = netstack.New(netstack.Config{
			SSID:        cfg.SSID,
			Passphrase:  cfg.Passphrase,
			Channel:     int32(cfg.Channel),
			Peer:        cfg.Peer,
			Addrs:       cfg.Addrs,
			ScanDelay:   cfg.ScanDelay,
			HintedDelay: cfg.HintedDelay,
		}, clk, logger)
	}

	ctrl, err := bootstrap.New(rec, stack, bootstrap.Config{
		Credentials:    creds,
		PollInterval:   cfg.PollInterval,
		ConnectTimeout: cfg.ConnectTimeout,
		MaxAttempts:    cfg.MaxAttempts,
	}, bootstrap.WithLogger(logger), bootstrap.WithClock(clk))
	if err != nil {
		return err
	}

	pm := power.New(clk, logger)
	reader := console.NewReader(in, logger)

	var changes <-chan struct{}
	if p.ConfigPath != "" {
		w := watch.New(p.ConfigPath, creds, logger)
		go w.Run(ctx)
		changes = w.Changes()
	}

	cause := bootstrap.CausePowerOn
	for {
		if _, err := ctrl.Bootstrap(ctx, cause); err != nil {
			return err
		}
		if cfg.Once {
			return nil
		}

	idle:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case <-changes:
				logger.Info("credentials changed, invalidating stored record")
				rec.Clear()

			case cmd, ok := <-reader.Commands():
				if !ok {
					logger.Info("console closed")
					return nil
				}
				switch cmd {
				case console.CmdSuspend:
					if err := pm.Suspend(ctx, cfg.SuspendFor); err != nil {
						return err
					}
					cause = bootstrap.CauseDeepSleepWake
					break idle

				case console.CmdClear:
					rec.Clear()
					dumpRecord(rec, logger)

				case console.CmdQuit:
					return nil
				}
			}
		}
	}
}

// dumpRecord logs the record image row by row.
func dumpRecord(rec *rtcmem.Record, logger log.Logger) {
	d := rtcmem.DumpRecord(rec)
	for {
		row, ok := d.Next()
		if !ok {
			return
		}
		logger.Info(row)
	}
}
