package gust

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/icza/bitio"
)

// Glaze bytecodes.
const (
	opLiteral    = 0x01
	opNear       = 0x02
	opShort      = 0x03
	opDictFar    = 0x04
	opDictFar16  = 0x05
	opLiterals   = 0x06
	opBlock      = 0x07
	blockBias    = 14
	literalsBias = 8
	// most output a single code byte can produce (opBlock with a 0xff length)
	maxCodeOutput = 0xff + blockBias
	maxBlockSize  = 0x100
)

// region is a length-prefixed part of a Glaze stream read with a forward cursor.
type region struct {
	name string
	b    []byte
	pos  int
}

func (r *region) next() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, fmt.Errorf(pkg+": %s exhausted at 0x%x: %w", r.name, r.pos, ErrGlazeOverflow)
	}
	c := r.b[r.pos]
	r.pos++
	return c, nil
}

// buildCodeTable unpacks up to n bytecodes from the bitstream.
// Codes are gamma coded: a 1 bit is code 0x01, L zero bits followed by
// L+1 bits (leading 1 included) give the code, eight zero bits give 0x00.
func buildCodeTable(stream []byte, n uint32) []byte {
	end := len(stream) * 8
	if uint64(n) > uint64(end) {
		n = uint32(end)
	}
	codes := make([]byte, 0, n)
	br := bitio.NewReader(bytes.NewReader(stream))
	pos := 0
	for pos < end && len(codes) < int(n) {
		one, err := br.ReadBool()
		if err != nil {
			break
		}
		pos++
		if one {
			codes = append(codes, opLiteral)
			continue
		}
		zeros := 1
		for zeros < 8 {
			one, err = br.ReadBool()
			if err != nil {
				return codes
			}
			pos++
			if one {
				break
			}
			zeros++
		}
		if zeros == 8 {
			codes = append(codes, 0)
			continue
		}
		low, err := br.ReadBits(uint8(zeros))
		if err != nil {
			return codes
		}
		pos += zeros
		codes = append(codes, byte(1<<zeros|low))
	}
	return codes
}

// writeCode gamma codes one bytecode, the inverse of buildCodeTable.
func writeCode(w *bitio.Writer, c byte) error {
	switch c {
	case 0:
		return w.WriteBits(0, 8)
	case 1:
		return w.WriteBool(true)
	}
	n := uint8(bits.Len8(c) - 1)
	if err := w.WriteBits(0, n); err != nil {
		return err
	}
	return w.WriteBits(uint64(c), n+1)
}

// takeRegion slices a length-prefixed region out of src at off.
// chk accumulates the declared sizes the same way the game does and both
// it and the real bounds must stay inside src.
func takeRegion(src []byte, off int, chk *uint64, order binary.ByteOrder, name string) ([]byte, int, error) {
	if off+4 > len(src) {
		return nil, 0, fmt.Errorf(pkg+": %s size missing: %w", name, ErrGlazeTooLarge)
	}
	n := order.Uint32(src[off:])
	*chk += uint64(n) + 4
	if *chk >= uint64(len(src)) || uint64(off)+4+uint64(n) > uint64(len(src)) {
		return nil, 0, fmt.Errorf(pkg+": %s of 0x%x bytes is too large: %w", name, n, ErrGlazeTooLarge)
	}
	off += 4
	return src[off : off+int(n)], off + int(n), nil
}

// GlazeLength returns the decompressed length declared by a Glaze stream.
func GlazeLength(src []byte, order binary.ByteOrder) (uint32, error) {
	if len(src) < 4 {
		return 0, fmt.Errorf(pkg+": glaze stream of %d bytes: %w", len(src), ErrGlazeTooLarge)
	}
	return order.Uint32(src), nil
}

// Unglaze decompresses a Glaze stream.
func Unglaze(src []byte, order binary.ByteOrder) ([]byte, error) {
	decLen, err := GlazeLength(src, order)
	if err != nil {
		return nil, err
	}
	var chk uint64
	bitstream, off, err := takeRegion(src, 4, &chk, order, "bitstream")
	if err != nil {
		return nil, err
	}
	if len(bitstream) < 4 {
		return nil, fmt.Errorf(pkg+": bitstream of %d bytes has no code length: %w", len(bitstream), ErrGlazeTooLarge)
	}
	dict, off, err := takeRegion(src, off, &chk, order, "dictionary")
	if err != nil {
		return nil, err
	}
	lens, _, err := takeRegion(src, off, &chk, order, "length table")
	if err != nil {
		return nil, err
	}

	codes := buildCodeTable(bitstream[4:], order.Uint32(bitstream))
	if uint64(decLen) > uint64(len(codes))*maxCodeOutput {
		return nil, fmt.Errorf(pkg+": 0x%x bytes cannot come from %d codes: %w", decLen, len(codes), ErrGlazeOverflow)
	}
	if DebugLog != nil {
		DebugLog.Printf("unglaze: out=0x%x codes=%d dict=0x%x lens=0x%x", decLen, len(codes), len(dict), len(lens))
	}

	d := glazeDecoder{
		dst:  make([]byte, decLen),
		code: region{name: "bytecode table", b: codes},
		dict: region{name: "dictionary", b: dict},
		lens: region{name: "length table", b: lens},
	}
	if err := d.run(); err != nil {
		return nil, err
	}
	return d.dst, nil
}

type glazeDecoder struct {
	dst  []byte
	out  int
	code region
	dict region
	lens region
}

func (d *glazeDecoder) literals(n int) error {
	if d.out+n > len(d.dst) {
		return fmt.Errorf(pkg+": %d literals at 0x%x: %w", n, d.out, ErrGlazeOverflow)
	}
	for ; n > 0; n-- {
		c, err := d.dict.next()
		if err != nil {
			return err
		}
		d.dst[d.out] = c
		d.out++
	}
	return nil
}

func (d *glazeDecoder) backref(dist, n int) error {
	if dist <= 0 || dist > d.out {
		return fmt.Errorf(pkg+": distance %d at 0x%x: %w", dist, d.out, ErrGlazeOverflow)
	}
	if d.out+n > len(d.dst) {
		return fmt.Errorf(pkg+": copy of %d at 0x%x: %w", n, d.out, ErrGlazeOverflow)
	}
	for ; n > 0; n-- {
		d.dst[d.out] = d.dst[d.out-dist]
		d.out++
	}
	return nil
}

func (d *glazeDecoder) run() error {
	for d.out < len(d.dst) {
		if d.dict.pos > len(d.dict.b) || d.lens.pos > len(d.lens.b) || d.code.pos > len(d.code.b) {
			return fmt.Errorf(pkg+": cursor past region end: %w", ErrGlazeOverflow)
		}
		op, err := d.code.next()
		if err != nil {
			return err
		}
		switch op {
		case opLiteral:
			err = d.literals(1)
		case opNear:
			var dist byte
			if dist, err = d.code.next(); err == nil {
				err = d.backref(int(dist), 1)
			}
		case opShort:
			err = d.short()
		case opDictFar:
			err = d.dictFar()
		case opDictFar16:
			err = d.dictFar16()
		case opLiterals:
			var l byte
			if l, err = d.code.next(); err == nil {
				err = d.literals(int(l) + literalsBias)
			}
		case opBlock:
			var l byte
			if l, err = d.lens.next(); err == nil {
				err = d.literals(int(l) + blockBias)
			}
		default:
			// unknown codes carry no operands
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *glazeDecoder) short() error {
	dist, err := d.code.next()
	if err != nil {
		return err
	}
	l, err := d.code.next()
	if err != nil {
		return err
	}
	return d.backref(int(dist)+int(l), int(l)+1)
}

func (d *glazeDecoder) dictFar() error {
	l, err := d.code.next()
	if err != nil {
		return err
	}
	dist, err := d.dict.next()
	if err != nil {
		return err
	}
	return d.backref(int(dist)+int(l), int(l)+1)
}

func (d *glazeDecoder) dictFar16() error {
	hi, err := d.code.next()
	if err != nil {
		return err
	}
	lo, err := d.dict.next()
	if err != nil {
		return err
	}
	l, err := d.code.next()
	if err != nil {
		return err
	}
	return d.backref((int(hi)<<8|int(lo))+int(l), int(l)+1)
}

// literalBlocks splits n bytes into opBlock runs of at most maxBlockSize.
// A tail shorter than blockBias borrows from the previous run; when there
// is no previous run the bytes are returned as singles.
func literalBlocks(n int) (blocks []int, singles int) {
	if n < blockBias {
		return nil, n
	}
	for ; n >= maxBlockSize; n -= maxBlockSize {
		blocks = append(blocks, maxBlockSize)
	}
	switch {
	case n >= blockBias:
		blocks = append(blocks, n)
	case n > 0:
		blocks[len(blocks)-1] -= blockBias - n
		blocks = append(blocks, blockBias)
	}
	return blocks, 0
}

// Glaze wraps src into a Glaze stream made only of literal runs.
// It never compresses, but Unglaze restores src exactly.
func Glaze(src []byte, order binary.ByteOrder) ([]byte, error) {
	blocks, singles := literalBlocks(len(src))

	var packed bytes.Buffer
	bw := bitio.NewWriter(&packed)
	lens := make([]byte, 0, len(blocks))
	for _, b := range blocks {
		if err := writeCode(bw, opBlock); err != nil {
			return nil, err
		}
		lens = append(lens, byte(b-blockBias))
	}
	for i := 0; i < singles; i++ {
		if err := writeCode(bw, opLiteral); err != nil {
			return nil, err
		}
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	ncodes := len(blocks) + singles

	out := make([]byte, 0, 4*5+packed.Len()+len(src)+len(lens))
	out = appendUint32(out, order, uint32(len(src)))
	out = appendUint32(out, order, uint32(4+packed.Len()))
	out = appendUint32(out, order, uint32(ncodes))
	out = append(out, packed.Bytes()...)
	out = appendUint32(out, order, uint32(len(src)))
	out = append(out, src...)
	out = appendUint32(out, order, uint32(len(lens)))
	out = append(out, lens...)
	return out, nil
}

func appendUint32(b []byte, order binary.ByteOrder, v uint32) []byte {
	var w [4]byte
	order.PutUint32(w[:], v)
	return append(b, w[:]...)
}
