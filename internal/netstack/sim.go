// Package netstack provides an in-process stand-in for the device's
// network stack, used by the warmboot binary and the end-to-end tests.
package netstack

import (
	"bytes"
	"context"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/warmboot/pkg/bootstrap"
	"github.com/bft-labs/warmboot/pkg/log"
	"github.com/bft-labs/warmboot/pkg/rtcmem"
)

// Config describes the simulated access point.
type Config struct {
	SSID       string
	Passphrase string
	Channel    int32
	Peer       net.HardwareAddr

	// Addrs is the address set handed out on full discovery.
	Addrs rtcmem.AddrConfig

	// ScanDelay is the cost of a full-discovery association; HintedDelay
	// is the cost when the supplied channel and peer match the access
	// point. Mismatched hints fall back to a full scan.
	ScanDelay   time.Duration
	HintedDelay time.Duration
}

// Sim simulates association timing against a single access point. Wrong
// credentials never associate, which is how the real stack behaves when
// the network is gone.
type Sim struct {
	cfg Config
	clk clock.Clock
	log log.Logger

	mu          sync.Mutex
	associating bool
	badCreds    bool
	readyAt     time.Time
	pending     rtcmem.AddrConfig
	configured  *rtcmem.AddrConfig
	connected   bool
	addrs       rtcmem.AddrConfig
}

var _ bootstrap.NetworkStack = (*Sim)(nil)

// New creates a simulated stack driven by clk.
func New(cfg Config, clk clock.Clock, logger log.Logger) *Sim {
	return &Sim{cfg: cfg, clk: clk, log: logger}
}

// Connect starts a full-discovery association.
func (s *Sim) Connect(ctx context.Context, creds bootstrap.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(creds, s.cfg.ScanDelay)
	s.pending = s.cfg.Addrs
	s.log.Debug("association started", log.Str("mode", "scan"), log.Dur("cost", s.cfg.ScanDelay))
	return nil
}

// ConnectHinted starts an association that skips the scan when the hints
// match the access point.
func (s *Sim) ConnectHinted(ctx context.Context, creds bootstrap.Credentials, channel int32, peer net.HardwareAddr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cost := s.cfg.ScanDelay
	mode := "scan-fallback"
	if channel == s.cfg.Channel && bytes.Equal(peer, s.cfg.Peer) {
		cost = s.cfg.HintedDelay
		mode = "hinted"
	}
	s.start(creds, cost)
	if s.configured != nil {
		s.pending = *s.configured
	} else {
		s.pending = s.cfg.Addrs
	}
	s.log.Debug("association started", log.Str("mode", mode), log.Dur("cost", cost))
	return nil
}

// start resets association state for a new attempt. Callers hold s.mu.
func (s *Sim) start(creds bootstrap.Credentials, cost time.Duration) {
	s.associating = true
	s.connected = false
	s.badCreds = creds.SSID != s.cfg.SSID || creds.Passphrase != s.cfg.Passphrase
	s.readyAt = s.clk.Now().Add(cost)
}

// ConfigureAddrs installs the address set used by the next hinted
// association instead of the discovery-served one.
func (s *Sim) ConfigureAddrs(ac rtcmem.AddrConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured = &ac
	return nil
}

// Connected reports whether the pending association has completed.
func (s *Sim) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.associating || s.badCreds {
		return false
	}
	if !s.connected && !s.clk.Now().Before(s.readyAt) {
		s.connected = true
		s.addrs = s.pending
	}
	return s.connected
}

// Channel returns the access point channel once connected.
func (s *Sim) Channel() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return rtcmem.ChannelUnknown
	}
	return s.cfg.Channel
}

// PeerAddr returns the access point hardware address once connected.
func (s *Sim) PeerAddr() net.HardwareAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	peer := make(net.HardwareAddr, len(s.cfg.Peer))
	copy(peer, s.cfg.Peer)
	return peer
}

// Addrs returns the live address configuration once connected.
func (s *Sim) Addrs() rtcmem.AddrConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return rtcmem.AddrConfig{}
	}
	return s.addrs
}
