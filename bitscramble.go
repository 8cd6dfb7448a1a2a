package gust

import "fmt"

const (
	// Largest window whose bit indexes still fit the uint16 tables.
	maxSliceSize = 0x2000

	endScrambleSize   = 0x800
	endSliceSize      = 0x100
	startScrambleSize = 0x800
	startSliceSize    = 0x80
)

// Direction selects which way a reversible pass runs.
type Direction int

const (
	Descramble = Direction(iota)
	Scramble
)

func (d Direction) String() string {
	switch d {
	case Descramble:
		return "descramble"
	case Scramble:
		return "scramble"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// scrambleBits swaps pairs of bits inside every slice-sized window of
// buf[off:off+n]. The pairs come from a permutation of all bit positions of
// a full slice, drawn from r. Descrambling replays the pairs in table order
// and scrambling replays them backwards, so one undoes the other.
//
// A short last window still draws the whole table but only replays as many
// pairs as it has bits. Positions past its end address the bytes that
// follow it in buf and must stay inside buf.
func scrambleBits(buf []byte, off, n, slice int, r *seedRand, dir Direction) error {
	if slice <= 0 || slice > maxSliceSize {
		return fmt.Errorf(pkg+": bit slice 0x%x: %w", slice, ErrAllocation)
	}
	if off < 0 || n < 0 || off+n > len(buf) {
		return fmt.Errorf(pkg+": bit window 0x%x+0x%x outside 0x%x bytes: %w", off, n, len(buf), ErrInvalidContainer)
	}
	size := slice * 8
	pool := make([]uint16, size)
	perm := make([]uint16, size)
	for end := off + n; off < end; off += slice {
		for i := range pool {
			pool[i] = uint16(i)
		}
		for i := 0; i < size; i++ {
			x := int(r.next15()) % (size - i)
			perm[i] = pool[x]
			copy(pool[x:size-i], pool[x+1:size-i])
		}

		limit := min(size, (end-off)*8)
		w := buf[off:]
		var last uint16
		for _, v := range perm[:limit] {
			last = max(last, v)
		}
		if int(last>>3) >= len(w) {
			return fmt.Errorf(pkg+": bit window at 0x%x reaches byte 0x%x of 0x%x: %w",
				off, off+int(last>>3), len(buf), ErrInvalidContainer)
		}
		for k := 0; k < limit; k += 2 {
			i := k
			if dir == Scramble {
				i = limit - 2 - k
			}
			swapBits(w, perm[i], perm[i+1])
		}
	}
	return nil
}

// swapBits exchanges bit a and bit b of w, where a bit index is byte<<3 | bit.
func swapBits(w []byte, a, b uint16) {
	p0, b0 := a>>3, a&7
	p1, b1 := b>>3, b&7
	v0 := (w[p0] >> b0) & 1
	v1 := (w[p1] >> b1) & 1
	w[p0] = w[p0]&^(1<<b0) | v1<<b0
	w[p1] = w[p1]&^(1<<b1) | v0<<b1
}
