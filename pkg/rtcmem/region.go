package rtcmem

import "fmt"

const (
	// WordSize is the access granularity of the backing store, in bytes.
	// The store does not tolerate narrower or misaligned accesses.
	WordSize = 4

	// MaxRegionBytes is the hard ceiling of the reserved area.
	MaxRegionBytes = 512

	// DefaultRegionBytes is the portion of the area reserved by default.
	DefaultRegionBytes = 128
)

// Region is a word-addressed view of the reset-persistent memory area.
// Storage is held as whole 32-bit words; CopyIn and CopyOut decompose
// byte-granular operations into aligned word accesses, so no caller can
// violate the alignment constraint of the backing store.
//
// Within a word, lane 0 holds the lowest byte offset.
type Region struct {
	words []uint32
}

// NewRegion reserves a region of the given size in bytes. The size must be
// a positive multiple of WordSize and at most MaxRegionBytes.
func NewRegion(size int) (*Region, error) {
	if size <= 0 || size > MaxRegionBytes {
		return nil, fmt.Errorf("rtcmem: region size %d out of range (1..%d)", size, MaxRegionBytes)
	}
	if size%WordSize != 0 {
		return nil, fmt.Errorf("rtcmem: region size %d not a multiple of %d", size, WordSize)
	}
	return &Region{words: make([]uint32, size/WordSize)}, nil
}

// Size returns the region capacity in bytes.
func (r *Region) Size() int {
	return len(r.words) * WordSize
}

// CopyIn copies src into the region starting at byte offset off. Source
// and offset may have any alignment; every store to the backing words is a
// whole aligned word, merged by lane masking, and the result is
// byte-identical to a plain copy. Out-of-range copies are a caller bug and
// panic.
func (r *Region) CopyIn(off int, src []byte) {
	if off < 0 || off+len(src) > r.Size() {
		panic(fmt.Sprintf("rtcmem: CopyIn [%d:%d) outside region of %d bytes", off, off+len(src), r.Size()))
	}
	for n := 0; n < len(src); {
		i := (off + n) / WordSize
		lane := (off + n) % WordSize
		w := r.words[i]
		for ; lane < WordSize && n < len(src); lane, n = lane+1, n+1 {
			shift := uint(lane) * 8
			w = w&^(0xFF<<shift) | uint32(src[n])<<shift
		}
		r.words[i] = w
	}
}

// CopyOut copies the byte range starting at off into dst, reading the
// backing store only through whole aligned word loads. Out-of-range copies
// panic, mirroring CopyIn.
func (r *Region) CopyOut(off int, dst []byte) {
	if off < 0 || off+len(dst) > r.Size() {
		panic(fmt.Sprintf("rtcmem: CopyOut [%d:%d) outside region of %d bytes", off, off+len(dst), r.Size()))
	}
	for n := 0; n < len(dst); {
		i := (off + n) / WordSize
		lane := (off + n) % WordSize
		w := r.words[i]
		for ; lane < WordSize && n < len(dst); lane, n = lane+1, n+1 {
			dst[n] = byte(w >> (uint(lane) * 8))
		}
	}
}

// word returns the aligned word containing byte offset off. off must be
// word aligned; record fields are laid out so that this always holds.
func (r *Region) word(off int) uint32 {
	return r.words[off/WordSize]
}

// setWord stores a whole aligned word at byte offset off.
func (r *Region) setWord(off int, w uint32) {
	r.words[off/WordSize] = w
}
