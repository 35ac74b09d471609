package bootstrap

import (
	"context"
	"net"

	"github.com/bft-labs/warmboot/pkg/rtcmem"
)

// Credentials identifies the network the device associates with.
type Credentials struct {
	SSID       string
	Passphrase string
}

// NetworkStack is the consumed contract of the underlying network stack.
// Connect and ConnectHinted start an association attempt; completion is
// observed by polling Connected. The live accessors are meaningful only
// once Connected reports true.
type NetworkStack interface {
	// Connect starts a full-discovery association using credentials only.
	Connect(ctx context.Context, creds Credentials) error

	// ConnectHinted starts an association using a previously observed
	// channel and peer hardware address, letting the stack skip scanning.
	ConnectHinted(ctx context.Context, creds Credentials, channel int32, peer net.HardwareAddr) error

	// ConfigureAddrs installs a previously observed address configuration.
	// Must be called before ConnectHinted when addresses are being reused.
	ConfigureAddrs(ac rtcmem.AddrConfig) error

	// Connected reports whether the association is established.
	Connected() bool

	Channel() int32
	PeerAddr() net.HardwareAddr
	Addrs() rtcmem.AddrConfig
}
