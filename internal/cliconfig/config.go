// Package cliconfig loads warmboot configuration from file, environment,
// and flags, in that precedence order (flags win).
package cliconfig

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/bft-labs/warmboot/pkg/rtcmem"
)

// Config holds the full configuration for the warmboot binary.
type Config struct {
	SSID       string
	Passphrase string

	RegionSize     int
	PollInterval   time.Duration
	ConnectTimeout time.Duration
	MaxAttempts    int
	SuspendFor     time.Duration

	// Simulated access point parameters.
	Channel      int
	PeerAddr     string
	ScanDelay    time.Duration
	HintedDelay  time.Duration
	LocalAddr    string
	Gateway      string
	SubnetMask   string
	DNSPrimary   string
	DNSSecondary string

	Once  bool
	Debug bool

	// Derived by Validate.
	Peer  net.HardwareAddr  `toml:"-"`
	Addrs rtcmem.AddrConfig `toml:"-"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Passphrase:     os.Getenv("WARMBOOT_PASSPHRASE"),
		RegionSize:     rtcmem.DefaultRegionBytes,
		PollInterval:   100 * time.Millisecond,
		ConnectTimeout: 15 * time.Second,
		MaxAttempts:    3,
		SuspendFor:     10 * time.Second,
		Channel:        6,
		PeerAddr:       "aa:bb:cc:dd:ee:ff",
		ScanDelay:      2 * time.Second,
		HintedDelay:    150 * time.Millisecond,
		LocalAddr:      "192.168.1.50",
		Gateway:        "192.168.1.1",
		SubnetMask:     "255.255.255.0",
		DNSPrimary:     "8.8.8.8",
		DNSSecondary:   "8.8.4.4",
	}
}

// Validate checks the configuration and fills the derived fields.
func (c *Config) Validate() error {
	if c.SSID == "" {
		return fmt.Errorf("ssid is required")
	}
	if c.RegionSize < rtcmem.RecordBytes || c.RegionSize > rtcmem.MaxRegionBytes {
		return fmt.Errorf("region-size must be in %d..%d", rtcmem.RecordBytes, rtcmem.MaxRegionBytes)
	}
	if c.RegionSize%rtcmem.WordSize != 0 {
		return fmt.Errorf("region-size must be a multiple of %d", rtcmem.WordSize)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.Channel < 1 || c.Channel > 14 {
		return fmt.Errorf("channel must be in 1..14")
	}

	peer, err := net.ParseMAC(c.PeerAddr)
	if err != nil {
		return fmt.Errorf("peer-addr: %w", err)
	}
	if len(peer) != rtcmem.StationIDLen {
		return fmt.Errorf("peer-addr must be a %d-byte address", rtcmem.StationIDLen)
	}
	c.Peer = peer

	addrs := []struct {
		name string
		raw  string
		dst  *netip.Addr
	}{
		{"local-addr", c.LocalAddr, &c.Addrs.Local},
		{"gateway", c.Gateway, &c.Addrs.Gateway},
		{"subnet-mask", c.SubnetMask, &c.Addrs.SubnetMask},
		{"dns-primary", c.DNSPrimary, &c.Addrs.DNSPrimary},
		{"dns-secondary", c.DNSSecondary, &c.Addrs.DNSSecondary},
	}
	for _, a := range addrs {
		addr, err := netip.ParseAddr(a.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
		if !addr.Is4() {
			return fmt.Errorf("%s must be IPv4", a.name)
		}
		*a.dst = addr
	}

	return nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// configSetter applies configuration values while respecting precedence:
// a value is skipped when the matching flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", flag, err)
	}
	*dst = n
	return nil
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return
	}
	*dst = b
}
