package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/bft-labs/warmboot/pkg/rtcmem"
)

var testAddrs = rtcmem.AddrConfig{
	Local:        netip.MustParseAddr("192.168.1.50"),
	Gateway:      netip.MustParseAddr("192.168.1.1"),
	SubnetMask:   netip.MustParseAddr("255.255.255.0"),
	DNSPrimary:   netip.MustParseAddr("8.8.8.8"),
	DNSSecondary: netip.MustParseAddr("8.8.4.4"),
}

func testPeer(t *testing.T) net.HardwareAddr {
	t.Helper()
	hw, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}
	return hw
}

// fakeStack records the order and arguments of calls and connects after a
// configurable number of Connected polls.
type fakeStack struct {
	calls []string

	hintChannel int32
	hintPeer    net.HardwareAddr
	configured  rtcmem.AddrConfig

	// connectAfter is the number of Connected polls before reporting an
	// established association. Negative means never.
	connectAfter int
	// coldOnly makes hinted attempts never complete.
	coldOnly bool

	hintedAttempt bool
	polls         int

	liveChannel int32
	livePeer    net.HardwareAddr
	liveAddrs   rtcmem.AddrConfig
}

func (f *fakeStack) Connect(ctx context.Context, creds Credentials) error {
	f.calls = append(f.calls, "connect")
	f.polls = 0
	f.hintedAttempt = false
	return nil
}

func (f *fakeStack) ConnectHinted(ctx context.Context, creds Credentials, channel int32, peer net.HardwareAddr) error {
	f.calls = append(f.calls, "connectHinted")
	f.hintChannel = channel
	f.hintPeer = peer
	f.polls = 0
	f.hintedAttempt = true
	return nil
}

func (f *fakeStack) ConfigureAddrs(ac rtcmem.AddrConfig) error {
	f.calls = append(f.calls, "configureAddrs")
	f.configured = ac
	return nil
}

func (f *fakeStack) Connected() bool {
	if f.connectAfter < 0 {
		return false
	}
	if f.coldOnly && f.hintedAttempt {
		return false
	}
	f.polls++
	return f.polls > f.connectAfter
}

func (f *fakeStack) Channel() int32             { return f.liveChannel }
func (f *fakeStack) PeerAddr() net.HardwareAddr { return f.livePeer }
func (f *fakeStack) Addrs() rtcmem.AddrConfig   { return f.liveAddrs }

func newTestController(t *testing.T, stack NetworkStack) (*Controller, *rtcmem.Record) {
	t.Helper()
	region, err := rtcmem.NewRegion(rtcmem.DefaultRegionBytes)
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}
	rec, err := rtcmem.Attach(region)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	ctrl, err := New(rec, stack, Config{
		Credentials:    Credentials{SSID: "lab", Passphrase: "hunter2"},
		PollInterval:   time.Millisecond,
		ConnectTimeout: 20 * time.Millisecond,
		MaxAttempts:    2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ctrl, rec
}

// A single cold association must teach the record everything needed for
// the next warm boot.
func TestColdBootTeachesRecord(t *testing.T) {
	stack := &fakeStack{
		connectAfter: 2,
		liveChannel:  6,
		livePeer:     testPeer(t),
		liveAddrs:    testAddrs,
	}
	ctrl, rec := newTestController(t, stack)

	res, err := ctrl.Bootstrap(context.Background(), CausePowerOn)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.Path != PhaseCold {
		t.Fatalf("path = %s, want %s", res.Path, PhaseCold)
	}
	if len(stack.calls) != 1 || stack.calls[0] != "connect" {
		t.Fatalf("calls = %v, want [connect]", stack.calls)
	}
	if !rec.IsValid() {
		t.Fatal("record invalid after successful cold boot")
	}
	if rec.Channel() != 6 {
		t.Fatalf("stored channel = %d, want 6", rec.Channel())
	}
	if rec.StationID().String() != stack.livePeer.String() {
		t.Fatalf("stored peer = %s, want %s", rec.StationID(), stack.livePeer)
	}
	if rec.AddrConfig() != testAddrs {
		t.Fatalf("stored addrs = %+v, want %+v", rec.AddrConfig(), testAddrs)
	}
	if rec.ResetCount() != 0 || rec.SleepCount() != 0 {
		t.Fatalf("counters = %d/%d after cold boot, want 0/0", rec.ResetCount(), rec.SleepCount())
	}
}

// A boot with a valid record must configure the stored addresses before
// requesting a hinted connect with exactly the stored channel and peer.
func TestWarmBootReplaysStoredHints(t *testing.T) {
	teach := &fakeStack{connectAfter: 0, liveChannel: 6, livePeer: testPeer(t), liveAddrs: testAddrs}
	ctrl, rec := newTestController(t, teach)
	if _, err := ctrl.Bootstrap(context.Background(), CausePowerOn); err != nil {
		t.Fatalf("teaching boot: %v", err)
	}

	stack := &fakeStack{connectAfter: 1, liveChannel: 6, livePeer: testPeer(t), liveAddrs: testAddrs}
	ctrl2, err := New(rec, stack, Config{
		Credentials:  Credentials{SSID: "lab"},
		PollInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := ctrl2.Bootstrap(context.Background(), CauseExternalReset)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.Path != PhaseWarm {
		t.Fatalf("path = %s, want %s", res.Path, PhaseWarm)
	}
	want := []string{"configureAddrs", "connectHinted"}
	if len(stack.calls) != len(want) || stack.calls[0] != want[0] || stack.calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", stack.calls, want)
	}
	if stack.configured != testAddrs {
		t.Fatalf("configured addrs = %+v, want %+v", stack.configured, testAddrs)
	}
	if stack.hintChannel != 6 {
		t.Fatalf("hint channel = %d, want 6", stack.hintChannel)
	}
	if stack.hintPeer.String() != testPeer(t).String() {
		t.Fatalf("hint peer = %s, want %s", stack.hintPeer, testPeer(t))
	}
}

func TestCounterClassification(t *testing.T) {
	teach := &fakeStack{connectAfter: 0, liveChannel: 1, livePeer: testPeer(t), liveAddrs: testAddrs}
	ctrl, rec := newTestController(t, teach)

	// Cold boot: neither counter moves.
	if _, err := ctrl.Bootstrap(context.Background(), CausePowerOn); err != nil {
		t.Fatalf("cold boot: %v", err)
	}
	if rec.ResetCount() != 0 || rec.SleepCount() != 0 {
		t.Fatalf("after cold: counters = %d/%d, want 0/0", rec.ResetCount(), rec.SleepCount())
	}

	// Deep-sleep wake: sleep counter only.
	res, err := ctrl.Bootstrap(context.Background(), CauseDeepSleepWake)
	if err != nil {
		t.Fatalf("wake boot: %v", err)
	}
	if res.ResetCount != 0 || res.SleepCount != 1 {
		t.Fatalf("after wake: counters = %d/%d, want 0/1", res.ResetCount, res.SleepCount)
	}

	// External reset: reset counter only.
	res, err = ctrl.Bootstrap(context.Background(), CauseExternalReset)
	if err != nil {
		t.Fatalf("reset boot: %v", err)
	}
	if res.ResetCount != 1 || res.SleepCount != 1 {
		t.Fatalf("after reset: counters = %d/%d, want 1/1", res.ResetCount, res.SleepCount)
	}
}

// A warm attempt whose hints lead nowhere must fall back to a cold
// attempt, and the cold success must re-teach the record.
func TestStaleHintsFallBackToCold(t *testing.T) {
	teach := &fakeStack{connectAfter: 0, liveChannel: 3, livePeer: testPeer(t), liveAddrs: testAddrs}
	ctrl, rec := newTestController(t, teach)
	if _, err := ctrl.Bootstrap(context.Background(), CausePowerOn); err != nil {
		t.Fatalf("teaching boot: %v", err)
	}

	stack := &fakeStack{
		connectAfter: 0,
		coldOnly:     true,
		liveChannel:  11,
		livePeer:     testPeer(t),
		liveAddrs:    testAddrs,
	}
	ctrl2, err := New(rec, stack, Config{
		Credentials:    Credentials{SSID: "lab"},
		PollInterval:   time.Millisecond,
		ConnectTimeout: 10 * time.Millisecond,
		MaxAttempts:    3,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := ctrl2.Bootstrap(context.Background(), CauseExternalReset)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.Path != PhaseCold {
		t.Fatalf("path = %s, want %s", res.Path, PhaseCold)
	}
	if res.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", res.Attempts)
	}
	if !rec.IsValid() || rec.Channel() != 11 {
		t.Fatalf("record not re-taught: valid=%v channel=%d", rec.IsValid(), rec.Channel())
	}
	// The fallback cleared the record, so the warm counter bump is gone.
	if rec.ResetCount() != 0 || rec.SleepCount() != 0 {
		t.Fatalf("counters = %d/%d, want 0/0 after cold fallback", rec.ResetCount(), rec.SleepCount())
	}
}

func TestExhaustedAttemptsReturnTimeout(t *testing.T) {
	stack := &fakeStack{connectAfter: -1}
	ctrl, rec := newTestController(t, stack)

	_, err := ctrl.Bootstrap(context.Background(), CausePowerOn)
	if !errors.Is(err, ErrConnectTimeout) {
		t.Fatalf("err = %v, want ErrConnectTimeout", err)
	}
	if rec.IsValid() {
		t.Fatal("record valid after a boot that never connected")
	}
	if got := len(stack.calls); got != 2 {
		t.Fatalf("connect attempts = %d, want 2", got)
	}
}

func TestContextCancelAbortsWait(t *testing.T) {
	stack := &fakeStack{connectAfter: -1}
	ctrl, _ := newTestController(t, stack)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ctrl.Bootstrap(ctx, CausePowerOn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestConfigValidate(t *testing.T) {
	_, err := New(nil, &fakeStack{}, Config{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}

	cfg := Config{Credentials: Credentials{SSID: "lab"}}.withDefaults()
	if cfg.PollInterval != DefaultPollInterval || cfg.ConnectTimeout != DefaultConnectTimeout || cfg.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
