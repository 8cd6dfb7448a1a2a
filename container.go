package gust

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"log"
)

// DebugLog, when set, receives a trace of every pipeline transition.
var DebugLog *log.Logger

// State is a step of the .e decoding pipeline.
// Encoding walks the same states backwards.
type State int

const (
	RawFile = State(iota)
	HeaderParsed
	EndUnscrambled
	FenceUnscrambled
	FooterExtracted
	MarkerLocated
	PayloadUnscrambled
	ChecksumsValidated
	Decompressed
	Failed
)

func (s State) String() string {
	switch s {
	case RawFile:
		return "raw file"
	case HeaderParsed:
		return "header parsed"
	case EndUnscrambled:
		return "end unscrambled"
	case FenceUnscrambled:
		return "fence unscrambled"
	case FooterExtracted:
		return "footer extracted"
	case MarkerLocated:
		return "marker located"
	case PayloadUnscrambled:
		return "payload unscrambled"
	case ChecksumsValidated:
		return "checksums validated"
	case Decompressed:
		return "decompressed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type pipeline struct {
	op    string
	state State
}

func (p *pipeline) advance(s State) {
	if DebugLog != nil {
		DebugLog.Printf("%s: %s -> %s", p.op, p.state, s)
	}
	p.state = s
}

func (p *pipeline) fail(err error) error {
	e := &Error{Op: p.op, State: p.state, Err: err}
	if DebugLog != nil {
		DebugLog.Printf("%s: %s -> %s: %v", p.op, p.state, Failed, err)
	}
	p.state = Failed
	return e
}

// Codec decodes and encodes .e files of one title.
// It holds no mutable state and may be shared between goroutines.
type Codec struct {
	seeds *SeedSet
	order binary.ByteOrder
}

// NewCodec validates the seeds and returns a codec for them.
func NewCodec(s *SeedSet) (*Codec, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Codec{seeds: s, order: s.Version.ByteOrder()}, nil
}

func (c *Codec) Seeds() *SeedSet {
	return c.seeds
}

// Frame describes a .e file after its outer passes are undone.
type Frame struct {
	Header Header `json:"header"`
	Footer Footer `json:"footer"`
	// Marker is the offset of the end marker in the payload.
	Marker int `json:"marker"`
}

// unframe undoes the end-bit and fenced passes on a private copy of data
// and locates the footer and the end marker.
func (c *Codec) unframe(p *pipeline, data []byte) ([]byte, *Frame, error) {
	if len(data) < headerSize+footerSize || len(data)%alignment != 0 {
		return nil, nil, p.fail(fmt.Errorf(pkg+": file size 0x%x: %w", len(data), ErrInvalidContainer))
	}
	var fr Frame
	if err := fr.Header.UnmarshalBinary(data); err != nil {
		return nil, nil, p.fail(err)
	}
	if fr.Header.Version != c.seeds.Version {
		return nil, nil, p.fail(fmt.Errorf(pkg+": %v file with %v seeds %q: %w",
			fr.Header.Version, c.seeds.Version, c.seeds.ID, ErrInvalidContainer))
	}
	p.advance(HeaderParsed)

	buf := append([]byte(nil), data[headerSize:]...)
	n := min(len(buf), endScrambleSize)
	if err := scrambleBits(buf, len(buf)-n, n, endSliceSize, newSeedRand(seedConstant, c.seeds.Main[0]), Descramble); err != nil {
		return nil, nil, p.fail(err)
	}
	p.advance(EndUnscrambled)

	err := scrambleFenced(buf, c.order, c.seeds.Fence, newSeedRand(seedConstant, c.seeds.Main[1]),
		Descramble, c.seeds.Version == Version3)
	if err != nil {
		return nil, nil, p.fail(err)
	}
	p.advance(FenceUnscrambled)

	fr.Footer.parse(buf[len(buf)-footerSize:], c.order)
	p.advance(FooterExtracted)

	// the scan starts on the last byte of the footer's reserved word
	m := len(buf) - footerSize + 3
	for m > 0 && buf[m] != endMarker {
		m--
	}
	if m < 4 || buf[m] != endMarker {
		return nil, nil, p.fail(ErrEndMarkerMissing)
	}
	fr.Marker = m
	p.advance(MarkerLocated)
	return buf, &fr, nil
}

// Inspect undoes the outer passes of a .e file and returns its framing
// without touching the payload.
func (c *Codec) Inspect(data []byte) (*Frame, error) {
	p := &pipeline{op: "inspect"}
	_, fr, err := c.unframe(p, data)
	return fr, err
}

// Decode unscrambles, validates and decompresses a .e file.
// Nothing is returned unless every check passes.
func (c *Codec) Decode(data []byte) ([]byte, error) {
	p := &pipeline{op: "decode"}
	buf, fr, err := c.unframe(p, data)
	if err != nil {
		return nil, err
	}
	s := c.seeds
	mul := seedConstant + fr.Footer.Seed

	stream := buf[:fr.Marker]
	scrambleRotating(stream, mul, s.Table, s.Length)
	buf[fr.Marker] = 0
	p.advance(PayloadUnscrambled)

	words := stream[:len(stream)&^3]
	cs := computeChecksums(words, c.order)
	if cs.sum != fr.Footer.Sum || cs.xor != fr.Footer.Xor {
		return nil, p.fail(fmt.Errorf(pkg+": sum 0x%08x/0x%08x xor 0x%08x/0x%08x: %w",
			cs.sum, fr.Footer.Sum, cs.xor, fr.Footer.Xor, ErrChecksumMismatch))
	}
	if s.Version == Version3 && fr.Footer.Seed != s.Main[0] {
		return nil, p.fail(fmt.Errorf(pkg+": seed echo 0x%08x: %w", fr.Footer.Seed, ErrChecksumMismatch))
	}
	p.advance(ChecksumsValidated)

	if s.Version == Version2 {
		// a short head reaches into the marker, padding and footer bytes
		n := min(len(words), startScrambleSize)
		if err := scrambleBits(buf, 0, n, startSliceSize, newSeedRand(mul, s.Main[2]), Descramble); err != nil {
			return nil, p.fail(err)
		}
	}
	n, err := GlazeLength(stream, c.order)
	if err != nil {
		return nil, p.fail(err)
	}
	if n > fr.Header.WorkingSize {
		return nil, p.fail(fmt.Errorf(pkg+": glaze length 0x%x exceeds working size 0x%x: %w",
			n, fr.Header.WorkingSize, ErrInvalidContainer))
	}
	out, err := Unglaze(stream, c.order)
	if err != nil {
		return nil, p.fail(err)
	}
	if s.Version == Version2 {
		if sum := adler32.Checksum(out); sum != fr.Footer.Seed {
			return nil, p.fail(fmt.Errorf(pkg+": adler32 0x%08x/0x%08x: %w", sum, fr.Footer.Seed, ErrChecksumMismatch))
		}
	}
	p.advance(Decompressed)
	return out, nil
}

// Encode compresses and scrambles payload into a .e file.
func (c *Codec) Encode(payload []byte) ([]byte, error) {
	p := &pipeline{op: "encode", state: Decompressed}
	s := c.seeds

	stream, err := Glaze(payload, c.order)
	if err != nil {
		return nil, p.fail(err)
	}
	// whole words keep every payload byte under the checksums, and whole
	// slices keep the start-bit pass inside the stream
	pad := 4
	if len(stream) < startScrambleSize {
		pad = startSliceSize
	}
	for len(stream)%pad != 0 {
		stream = append(stream, 0)
	}
	echo := seedEcho(s, payload)
	mul := seedConstant + echo
	if s.Version == Version2 {
		n := min(len(stream), startScrambleSize)
		if err := scrambleBits(stream, 0, n, startSliceSize, newSeedRand(mul, s.Main[2]), Scramble); err != nil {
			return nil, p.fail(err)
		}
	}
	p.advance(ChecksumsValidated)

	cs := computeChecksums(stream, c.order)
	p.advance(PayloadUnscrambled)

	scrambleRotating(stream, mul, s.Table, s.Length)
	p.advance(MarkerLocated)

	body := len(stream) + 1
	size := body + footerSize
	align := alignment
	if size < endScrambleSize {
		align = endSliceSize
	}
	if r := size % align; r != 0 {
		size += align - r
	}
	buf := make([]byte, size)
	copy(buf, stream)
	buf[len(stream)] = endMarker
	p.advance(FooterExtracted)

	f := Footer{Sum: cs.sum, Xor: cs.xor, Seed: echo}
	f.put(buf[len(buf)-footerSize:], c.order)
	p.advance(FenceUnscrambled)

	err = scrambleFenced(buf, c.order, s.Fence, newSeedRand(seedConstant, s.Main[1]), Scramble, s.Version == Version3)
	if err != nil {
		return nil, p.fail(err)
	}
	p.advance(EndUnscrambled)

	n := min(len(buf), endScrambleSize)
	if err := scrambleBits(buf, len(buf)-n, n, endSliceSize, newSeedRand(seedConstant, s.Main[0]), Scramble); err != nil {
		return nil, p.fail(err)
	}
	p.advance(HeaderParsed)

	work := uint32(max(len(payload), len(buf)))
	if r := work % alignment; r != 0 {
		work += alignment - r
	}
	h := Header{Version: s.Version, WorkingSize: work}
	hdr, err := h.MarshalBinary()
	if err != nil {
		return nil, p.fail(err)
	}
	p.advance(RawFile)
	return append(hdr, buf...), nil
}
