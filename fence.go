package gust

import (
	"encoding/binary"
	"fmt"
)

// fenceToggles reports whether draw x falls above the fence, which
// enables the XOR step for the current word.
func fenceToggles(x, fence uint16) bool {
	return uint32(x)%(2*uint32(fence)) >= uint32(fence)
}

// scrambleFenced runs the additive/XOR word cipher over the whole of buf.
// With extraFudge the XOR mask is a second draw instead of x itself.
func scrambleFenced(buf []byte, order binary.ByteOrder, fence uint16, r *seedRand, dir Direction, extraFudge bool) error {
	if len(buf)%2 != 0 {
		return fmt.Errorf(pkg+": fenced buffer size 0x%x: %w", len(buf), ErrInvalidContainer)
	}
	if fence == 0 {
		return fmt.Errorf(pkg+": zero fence: %w", ErrInvalidContainer)
	}
	mask := func(x uint16) uint16 {
		if extraFudge {
			return r.next15()
		}
		return x
	}
	for i := 0; i < len(buf); i += 2 {
		x := r.next15()
		w := order.Uint16(buf[i:])
		if dir == Scramble {
			w += x
			if fenceToggles(x, fence) {
				w ^= mask(x)
			}
		} else {
			if fenceToggles(x, fence) {
				w ^= mask(x)
			}
			w -= x
		}
		order.PutUint16(buf[i:], w)
	}
	return nil
}
