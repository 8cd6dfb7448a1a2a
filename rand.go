package gust

const (
	seedConstant  = 0x3b9a73c9
	seedIncrement = 0x2f09
)

// seedRand is the LCG that drives every scrambler pass.
// Each pass owns its own value; it is not safe for concurrent use.
type seedRand struct {
	mul uint32
	acc uint32
}

func newSeedRand(mul, acc uint32) *seedRand {
	return &seedRand{mul: mul, acc: acc}
}

func (r *seedRand) next16() uint16 {
	r.acc = r.mul*r.acc + seedIncrement
	return uint16(r.acc >> 16)
}

func (r *seedRand) next15() uint16 {
	return r.next16() & 0x7fff
}
