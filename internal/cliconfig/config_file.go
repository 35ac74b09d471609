package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to keep the
// TOML readable.
type fileConfig struct {
	SSID       string `toml:"ssid"`
	Passphrase string `toml:"passphrase"`

	RegionSize     int    `toml:"region_size"`
	PollInterval   string `toml:"poll_interval"`
	ConnectTimeout string `toml:"connect_timeout"`
	MaxAttempts    int    `toml:"max_attempts"`
	SuspendFor     string `toml:"suspend_for"`

	Channel      int    `toml:"channel"`
	PeerAddr     string `toml:"peer_addr"`
	ScanDelay    string `toml:"scan_delay"`
	HintedDelay  string `toml:"hinted_delay"`
	LocalAddr    string `toml:"local_addr"`
	Gateway      string `toml:"gateway"`
	SubnetMask   string `toml:"subnet_mask"`
	DNSPrimary   string `toml:"dns_primary"`
	DNSSecondary string `toml:"dns_secondary"`

	Once  *bool `toml:"once"`
	Debug *bool `toml:"debug"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.warmboot/config.toml when the home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".warmboot", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values to cfg, skipping fields whose flags
// were set explicitly.
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("ssid", fc.SSID, &cfg.SSID)
	s.setString("passphrase", fc.Passphrase, &cfg.Passphrase)
	s.setInt("region-size", fc.RegionSize, &cfg.RegionSize)
	s.setInt("max-attempts", fc.MaxAttempts, &cfg.MaxAttempts)
	s.setInt("channel", fc.Channel, &cfg.Channel)
	s.setString("peer-addr", fc.PeerAddr, &cfg.PeerAddr)
	s.setString("local-addr", fc.LocalAddr, &cfg.LocalAddr)
	s.setString("gateway", fc.Gateway, &cfg.Gateway)
	s.setString("subnet-mask", fc.SubnetMask, &cfg.SubnetMask)
	s.setString("dns-primary", fc.DNSPrimary, &cfg.DNSPrimary)
	s.setString("dns-secondary", fc.DNSSecondary, &cfg.DNSSecondary)

	if err := s.setDuration("poll-interval", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("suspend-for", fc.SuspendFor, &cfg.SuspendFor); err != nil {
		return err
	}
	if err := s.setDuration("scan-delay", fc.ScanDelay, &cfg.ScanDelay); err != nil {
		return err
	}
	if err := s.setDuration("hinted-delay", fc.HintedDelay, &cfg.HintedDelay); err != nil {
		return err
	}

	s.setBool("once", fc.Once, &cfg.Once)
	s.setBool("debug", fc.Debug, &cfg.Debug)

	return nil
}
