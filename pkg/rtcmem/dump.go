package rtcmem

import (
	"fmt"
	"strings"
)

// DumpWidth is the number of bytes rendered per dump row.
const DumpWidth = 16

// Dumper renders a byte range as hexadecimal rows for diagnostic output.
// Rows are produced lazily via Next, so a console can emit them one at a
// time; Reset restarts the sequence from the first row. Dumper never
// mutates the data it was given.
type Dumper struct {
	data []byte
	base int
	pos  int
}

// NewDumper returns a Dumper over data. base is the offset printed for the
// first row, typically the byte offset of data within the region.
func NewDumper(data []byte, base int) *Dumper {
	return &Dumper{data: data, base: base}
}

// Next returns the next formatted row. ok is false once the range is
// exhausted.
func (d *Dumper) Next() (row string, ok bool) {
	if d.pos >= len(d.data) {
		return "", false
	}
	end := d.pos + DumpWidth
	if end > len(d.data) {
		end = len(d.data)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04x ", d.base+d.pos)
	for _, b := range d.data[d.pos:end] {
		fmt.Fprintf(&sb, " %02x", b)
	}
	d.pos = end
	return sb.String(), true
}

// Reset restarts the sequence from the first row.
func (d *Dumper) Reset() {
	d.pos = 0
}

// DumpRecord renders the record image of rec as hex rows.
func DumpRecord(rec *Record) *Dumper {
	buf := make([]byte, RecordBytes)
	rec.region.CopyOut(0, buf)
	return NewDumper(buf, 0)
}
