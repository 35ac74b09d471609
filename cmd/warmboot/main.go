package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/warmboot/internal/cliconfig"
	"github.com/bft-labs/warmboot/internal/device"
	"github.com/bft-labs/warmboot/pkg/log"
)

const helpDescription = `
Simulate a device that remembers its network connection across resets.

The first boot performs full discovery; every boot after that reuses the
channel, peer address, and IP configuration stored in the reset-persistent
record, as long as its checksum still verifies.

Console commands while idle:
  S  suspend, then re-boot as a deep-sleep wake (warm path)
  C  clear the persistent record and dump it (forces a cold boot)
  Q  quit
`

var exampleUsage = strings.TrimSpace(`
  warmboot --ssid mynet --passphrase secret
  warmboot --config $HOME/.warmboot/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "warmboot",
		Short:   "Persist connection parameters across resets and skip discovery on the next boot",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags so file and env values never
			// override explicit flags.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := log.NewConsole(cfg.Debug)
			logCfg := cfg
			if len(logCfg.Passphrase) > 0 {
				logCfg.Passphrase = "*****"
			}
			logger.Info("configuration", log.Any("config", logCfg))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			watchPath := ""
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				watchPath = cfgFile
			}

			err := device.Run(ctx, device.Params{
				Config:     cfg,
				Logger:     logger,
				ConfigPath: watchPath,
			})
			if err != nil && ctx.Err() != nil {
				// Shutdown via signal is a clean exit.
				return nil
			}
			return err
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to TOML config file (default $HOME/.warmboot/config.toml)")
	root.Flags().StringVar(&cfg.SSID, "ssid", cfg.SSID, "network name (required)")
	root.Flags().StringVar(&cfg.Passphrase, "passphrase", cfg.Passphrase, "network passphrase")
	root.Flags().IntVar(&cfg.RegionSize, "region-size", cfg.RegionSize, "persistent region size in bytes")
	root.Flags().DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "delay between connection checks")
	root.Flags().DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "per-attempt association timeout")
	root.Flags().IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "association attempts before giving up")
	root.Flags().DurationVar(&cfg.SuspendFor, "suspend-for", cfg.SuspendFor, "duration of the simulated suspend")
	root.Flags().IntVar(&cfg.Channel, "channel", cfg.Channel, "simulated access point channel")
	root.Flags().StringVar(&cfg.PeerAddr, "peer-addr", cfg.PeerAddr, "simulated access point hardware address")
	root.Flags().DurationVar(&cfg.ScanDelay, "scan-delay", cfg.ScanDelay, "simulated full-discovery cost")
	root.Flags().DurationVar(&cfg.HintedDelay, "hinted-delay", cfg.HintedDelay, "simulated hinted-association cost")
	root.Flags().StringVar(&cfg.LocalAddr, "local-addr", cfg.LocalAddr, "simulated local IPv4 address")
	root.Flags().StringVar(&cfg.Gateway, "gateway", cfg.Gateway, "simulated gateway address")
	root.Flags().StringVar(&cfg.SubnetMask, "subnet-mask", cfg.SubnetMask, "simulated subnet mask")
	root.Flags().StringVar(&cfg.DNSPrimary, "dns-primary", cfg.DNSPrimary, "simulated primary DNS server")
	root.Flags().StringVar(&cfg.DNSSecondary, "dns-secondary", cfg.DNSSecondary, "simulated secondary DNS server")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "run a single boot cycle and exit")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
