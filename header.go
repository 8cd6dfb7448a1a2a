package gust

import (
	"encoding"
	"encoding/binary"
	"fmt"
)

const (
	headerSize = 16
	footerSize = 16
	alignment  = 16
	endMarker  = 0xff
)

var (
	_ encoding.BinaryMarshaler   = &Header{}
	_ encoding.BinaryUnmarshaler = &Header{}
)

// Header is the fixed 16 byte header of a .e file.
type Header struct {
	Version Version `json:"version"`
	// WorkingSize is the scratch buffer the game allocates to decode the file.
	WorkingSize uint32  `json:"working_size"`
	Reserved    [8]byte `json:"-"`
}

func (h *Header) MarshalBinary() ([]byte, error) {
	if h.Version.Unknown() {
		return nil, fmt.Errorf(pkg+": header %v: %w", h.Version, ErrInvalidContainer)
	}
	order := h.Version.ByteOrder()
	data := make([]byte, headerSize)
	p := data

	// byte 0-3: type tag, in the byte order it selects
	order.PutUint32(p, uint32(h.Version))
	p = p[4:]

	// byte 4-7: working size
	order.PutUint32(p, h.WorkingSize)
	p = p[4:]

	// byte 8-15: reserved
	copy(p, h.Reserved[:])
	return data, nil
}

func (h *Header) UnmarshalBinary(data []byte) error {
	*h = Header{}
	if len(data) < headerSize {
		return fmt.Errorf(pkg+": header of %d bytes: %w", len(data), ErrInvalidContainer)
	}

	// byte 0-3: type tag
	switch {
	case binary.BigEndian.Uint32(data) == uint32(Version2):
		h.Version = Version2
	case binary.LittleEndian.Uint32(data) == uint32(Version3):
		h.Version = Version3
	default:
		return fmt.Errorf(pkg+": invalid type 0x%08x: %w", binary.BigEndian.Uint32(data), ErrInvalidContainer)
	}
	order := h.Version.ByteOrder()
	data = data[4:]

	// byte 4-7: working size
	h.WorkingSize = order.Uint32(data)
	data = data[4:]

	// byte 8-15: reserved
	copy(h.Reserved[:], data[:8])
	return nil
}

// Footer is the trailer of the scrambled payload. It is only readable once
// the end-bit and fenced passes have been undone.
type Footer struct {
	Marker uint32 `json:"marker"`
	Sum    uint32 `json:"sum"`
	Xor    uint32 `json:"xor"`
	// Seed is the Adler-32 of the plain data for v2 files and a seed echo
	// for v3 files. It is added to the generator multiplier.
	Seed uint32 `json:"seed"`
}

func (f *Footer) put(p []byte, order binary.ByteOrder) {
	// byte 0-3: reserved, may hold the end marker
	order.PutUint32(p, f.Marker)
	p = p[4:]

	// byte 4-7: subtractive checksum
	order.PutUint32(p, f.Sum)
	p = p[4:]

	// byte 8-11: complemented XOR checksum
	order.PutUint32(p, f.Xor)
	p = p[4:]

	// byte 12-15: seed
	order.PutUint32(p, f.Seed)
}

func (f *Footer) parse(p []byte, order binary.ByteOrder) {
	f.Marker = order.Uint32(p)
	f.Sum = order.Uint32(p[4:])
	f.Xor = order.Uint32(p[8:])
	f.Seed = order.Uint32(p[12:])
}
