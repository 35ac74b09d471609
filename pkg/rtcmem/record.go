package rtcmem

import (
	"errors"
	"fmt"
	"hash/crc32"
	"net"
	"net/netip"
)

// Byte offsets of the record fields within the region. Every field starts
// on a word boundary; the station ID occupies two words with the trailing
// two bytes unused. IPv4 addresses are stored in network byte order,
// counters and the channel little-endian. The checksum comes last and
// covers everything before it.
const (
	offResetCount   = 0
	offSleepCount   = 4
	offChannel      = 8
	offStationID    = 12
	offLocalAddr    = 20
	offGateway      = 24
	offSubnetMask   = 28
	offDNSPrimary   = 32
	offDNSSecondary = 36
	offChecksum     = 40

	// RecordBytes is the full record footprint including the checksum.
	RecordBytes = offChecksum + WordSize

	// StationIDLen is the length of a peer hardware address.
	StationIDLen = 6
)

// Compile-time guard: the record must fit the reserved area ceiling. An
// unsigned constant underflow here fails the build.
const _ uint = MaxRegionBytes - RecordBytes

// ChannelUnknown marks the channel field as carrying no usable hint.
const ChannelUnknown int32 = -1

// ErrRegionTooSmall is returned by Attach when the region cannot hold a
// full record.
var ErrRegionTooSmall = errors.New("rtcmem: region smaller than record")

// AddrConfig is the IPv4 address configuration carried by the record.
// Unset fields are the zero Addr and persist as 0.0.0.0.
type AddrConfig struct {
	Local        netip.Addr
	Gateway      netip.Addr
	SubnetMask   netip.Addr
	DNSPrimary   netip.Addr
	DNSSecondary netip.Addr
}

// Record maps the connection-parameter layout onto the first RecordBytes
// of a Region. The zero value is not usable; obtain one with Attach.
//
// A Record is single-writer state: the boot-time control flow owns it
// until bootstrap completes, and every mutation that should be trusted on
// the next boot must be sealed with MakeValid before anything else reads
// the record.
type Record struct {
	region *Region
}

// Attach interprets the start of region as a Record. The region is left
// untouched; callers decide validity via IsValid.
func Attach(region *Region) (*Record, error) {
	if region.Size() < RecordBytes {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrRegionTooSmall, region.Size(), RecordBytes)
	}
	return &Record{region: region}, nil
}

// checksum recomputes the CRC over the record image, excluding the stored
// checksum field. The function is CRC-32 with the IEEE polynomial
// 0xEDB88320 (reflected, init and final XOR 0xFFFFFFFF) as implemented by
// hash/crc32; IsValid recomputes byte-for-byte, so the variant must never
// change without clearing deployed records. The CRC of an all-zero image
// is non-zero, which keeps a cleared record permanently invalid.
func (rec *Record) checksum() uint32 {
	buf := make([]byte, offChecksum)
	rec.region.CopyOut(0, buf)
	return crc32.ChecksumIEEE(buf)
}

// IsValid reports whether the stored checksum matches a fresh
// recomputation over the current record bytes. No side effects.
func (rec *Record) IsValid() bool {
	return rec.region.word(offChecksum) == rec.checksum()
}

// MakeValid recomputes the checksum over the current field values and
// stores it. Call after any mutation that should survive to the next boot.
func (rec *Record) MakeValid() {
	rec.region.setWord(offChecksum, rec.checksum())
}

// Clear zeroes the entire record including the checksum field. IsValid is
// false immediately afterward; this is the only supported way to force a
// full-discovery boot.
func (rec *Record) Clear() {
	for off := 0; off < RecordBytes; off += WordSize {
		rec.region.setWord(off, 0)
	}
}

// ResetCount returns the number of non-sleep restarts recorded since the
// last Clear.
func (rec *Record) ResetCount() uint32 {
	return rec.region.word(offResetCount)
}

// IncResetCount increments the non-sleep restart counter and returns the
// new value.
func (rec *Record) IncResetCount() uint32 {
	n := rec.region.word(offResetCount) + 1
	rec.region.setWord(offResetCount, n)
	return n
}

// SleepCount returns the number of deep-sleep wake restarts recorded since
// the last Clear.
func (rec *Record) SleepCount() uint32 {
	return rec.region.word(offSleepCount)
}

// IncSleepCount increments the deep-sleep wake counter and returns the new
// value.
func (rec *Record) IncSleepCount() uint32 {
	n := rec.region.word(offSleepCount) + 1
	rec.region.setWord(offSleepCount, n)
	return n
}

// Channel returns the last observed radio channel, or ChannelUnknown.
func (rec *Record) Channel() int32 {
	return int32(rec.region.word(offChannel))
}

// SetChannel stores the radio channel hint.
func (rec *Record) SetChannel(ch int32) {
	rec.region.setWord(offChannel, uint32(ch))
}

// StationID returns a copy of the stored peer hardware address.
func (rec *Record) StationID() net.HardwareAddr {
	id := make(net.HardwareAddr, StationIDLen)
	rec.region.CopyOut(offStationID, id)
	return id
}

// SetStationID stores the peer hardware address. Only 6-byte addresses are
// accepted.
func (rec *Record) SetStationID(id net.HardwareAddr) error {
	if len(id) != StationIDLen {
		return fmt.Errorf("rtcmem: station id %v: want %d bytes, got %d", id, StationIDLen, len(id))
	}
	rec.region.CopyIn(offStationID, id)
	return nil
}

// AddrConfig returns the stored IPv4 address configuration.
func (rec *Record) AddrConfig() AddrConfig {
	return AddrConfig{
		Local:        rec.addrAt(offLocalAddr),
		Gateway:      rec.addrAt(offGateway),
		SubnetMask:   rec.addrAt(offSubnetMask),
		DNSPrimary:   rec.addrAt(offDNSPrimary),
		DNSSecondary: rec.addrAt(offDNSSecondary),
	}
}

// SetAddrConfig stores the IPv4 address configuration. Every set field
// must be an IPv4 address; unset fields persist as 0.0.0.0.
func (rec *Record) SetAddrConfig(ac AddrConfig) error {
	fields := []struct {
		off  int
		addr netip.Addr
	}{
		{offLocalAddr, ac.Local},
		{offGateway, ac.Gateway},
		{offSubnetMask, ac.SubnetMask},
		{offDNSPrimary, ac.DNSPrimary},
		{offDNSSecondary, ac.DNSSecondary},
	}
	for _, f := range fields {
		if f.addr.IsValid() && !f.addr.Is4() {
			return fmt.Errorf("rtcmem: address %s is not IPv4", f.addr)
		}
	}
	for _, f := range fields {
		var b [4]byte
		if f.addr.IsValid() {
			b = f.addr.As4()
		}
		rec.region.CopyIn(f.off, b[:])
	}
	return nil
}

// addrAt loads the network-ordered IPv4 address stored at off.
func (rec *Record) addrAt(off int) netip.Addr {
	var b [4]byte
	rec.region.CopyOut(off, b[:])
	return netip.AddrFrom4(b)
}
