// Package warmboot persists a small connection-parameter record across
// resets and deep-sleep wakeups, and uses it to skip network discovery on
// the next boot.
//
// The record lives in a word-aligned, reset-persistent memory region and
// is guarded by a CRC-32 checksum; see pkg/rtcmem. On every boot the
// controller in pkg/bootstrap takes the cold path (full discovery) when
// the record is invalid and the warm path (stored channel, peer, and
// address configuration as hints) when it is valid, then re-derives and
// re-persists the record from the live connection.
//
// Example usage:
//
//	cfg := warmboot.DefaultConfig()
//	cfg.SSID = "mynet"
//	cfg.Passphrase = "secret"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := warmboot.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package warmboot

import (
	"context"

	"github.com/bft-labs/warmboot/internal/cliconfig"
	"github.com/bft-labs/warmboot/internal/device"
	"github.com/bft-labs/warmboot/pkg/log"
)

// Config holds the configuration for the warmboot device loop.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// DefaultConfig returns a Config with default values. At minimum, set
// SSID before calling Run.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Run executes boot cycles against the simulated network stack until the
// context is cancelled or the console quits. Use cfg.Once = true to stop
// after the first successful boot.
func Run(ctx context.Context, cfg Config) error {
	return device.Run(ctx, device.Params{
		Config: cfg,
		Logger: log.NewConsole(cfg.Debug),
	})
}
