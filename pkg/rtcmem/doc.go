// Package rtcmem manages the connection-parameter record kept in the
// device's reset-persistent memory area.
//
// The area survives processor resets and deep-sleep wakeups but not full
// power loss, and its backing store only tolerates 32-bit word-aligned
// accesses. Region wraps the area so that every byte-granular operation
// decomposes into aligned word loads and read-modify-write stores; the
// rest of the system never touches the storage directly.
//
// Record maps a fixed field layout onto the first RecordBytes of a Region
// and guards it with a CRC-32 checksum. A record is trustworthy only while
// IsValid reports true; Clear zeroes the whole record, which can never
// checksum as valid, so "cleared" and "valid" are mutually exclusive.
//
// # Usage
//
//	region, err := rtcmem.NewRegion(rtcmem.DefaultRegionBytes)
//	if err != nil {
//	    return err
//	}
//	rec, err := rtcmem.Attach(region)
//	if err != nil {
//	    return err
//	}
//
//	if rec.IsValid() {
//	    // reuse rec.Channel(), rec.StationID(), rec.AddrConfig()
//	}
//
//	// ... after a successful association ...
//	rec.SetChannel(ch)
//	rec.MakeValid()
package rtcmem
