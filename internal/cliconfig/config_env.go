package cliconfig

import "os"

// ApplyEnvConfig applies WARMBOOT_* environment variables. Env overrides
// file values but loses to explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("ssid", os.Getenv("WARMBOOT_SSID"), &cfg.SSID)
	s.setString("passphrase", os.Getenv("WARMBOOT_PASSPHRASE"), &cfg.Passphrase)
	s.setString("peer-addr", os.Getenv("WARMBOOT_PEER_ADDR"), &cfg.PeerAddr)
	s.setString("local-addr", os.Getenv("WARMBOOT_LOCAL_ADDR"), &cfg.LocalAddr)
	s.setString("gateway", os.Getenv("WARMBOOT_GATEWAY"), &cfg.Gateway)
	s.setString("subnet-mask", os.Getenv("WARMBOOT_SUBNET_MASK"), &cfg.SubnetMask)
	s.setString("dns-primary", os.Getenv("WARMBOOT_DNS_PRIMARY"), &cfg.DNSPrimary)
	s.setString("dns-secondary", os.Getenv("WARMBOOT_DNS_SECONDARY"), &cfg.DNSSecondary)

	if err := s.setIntFromString("region-size", os.Getenv("WARMBOOT_REGION_SIZE"), &cfg.RegionSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-attempts", os.Getenv("WARMBOOT_MAX_ATTEMPTS"), &cfg.MaxAttempts); err != nil {
		return err
	}
	if err := s.setIntFromString("channel", os.Getenv("WARMBOOT_CHANNEL"), &cfg.Channel); err != nil {
		return err
	}

	if err := s.setDuration("poll-interval", os.Getenv("WARMBOOT_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("connect-timeout", os.Getenv("WARMBOOT_CONNECT_TIMEOUT"), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("suspend-for", os.Getenv("WARMBOOT_SUSPEND_FOR"), &cfg.SuspendFor); err != nil {
		return err
	}
	if err := s.setDuration("scan-delay", os.Getenv("WARMBOOT_SCAN_DELAY"), &cfg.ScanDelay); err != nil {
		return err
	}
	if err := s.setDuration("hinted-delay", os.Getenv("WARMBOOT_HINTED_DELAY"), &cfg.HintedDelay); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("WARMBOOT_ONCE"), &cfg.Once)
	s.setBoolFromString("debug", os.Getenv("WARMBOOT_DEBUG"), &cfg.Debug)

	return nil
}
