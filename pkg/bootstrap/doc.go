// Package bootstrap drives the boot-time connection sequence.
//
// On every boot the Controller inspects the persistent record: an invalid
// record forces the cold path (full network discovery with credentials
// only), a valid one takes the warm path (stored channel, peer address,
// and address configuration handed to the network stack as hints, skipping
// the scan). After every successful association the controller re-derives
// the record from live connection state and seals it with MakeValid, so a
// single cold boot teaches all subsequent boots and corruption self-heals
// on the next reset.
package bootstrap
