package gust

// scrambleRotating XORs buf with a keystream taken from three rotating
// generator registers. table and length are copied, never modified.
// The pass is its own inverse.
func scrambleRotating(buf []byte, mul uint32, table, length [3]uint32) {
	var (
		idx   = 0
		fudge = uint32(0)
		done  = uint32(0)
	)
	r := newSeedRand(mul, table[idx])
	for i := range buf {
		buf[i] ^= byte(r.next16())
		done++
		if done >= length[idx]+fudge {
			table[idx] = r.acc
			idx++
			if idx >= len(table) {
				idx = 0
				fudge++
			}
			r.acc = table[idx]
			done = 0
		}
	}
}
