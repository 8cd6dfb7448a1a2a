package gust

import (
	"encoding/binary"
	"hash/adler32"
)

// checksums are the two rolling values stored in the footer.
type checksums struct {
	sum uint32
	xor uint32
}

// computeChecksums folds every whole 32-bit word of buf.
// Trailing bytes that do not fill a word are not covered.
func computeChecksums(buf []byte, order binary.ByteOrder) checksums {
	var c checksums
	for i := 0; i+4 <= len(buf); i += 4 {
		w := order.Uint32(buf[i:])
		c.sum -= w
		c.xor ^= ^w
	}
	return c
}

// seedEcho returns the third footer value for a payload:
// the Adler-32 of the plain data for v2, the first main seed for v3.
func seedEcho(s *SeedSet, plain []byte) uint32 {
	if s.Version == Version3 {
		return s.Main[0]
	}
	return adler32.Checksum(plain)
}
