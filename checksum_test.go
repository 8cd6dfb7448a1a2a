package gust

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksums(t *testing.T) {
	data := []byte{0, 0, 0, 1, 0, 0, 0, 2, 0xff, 0xff}
	c := computeChecksums(data, binary.BigEndian)
	require.Equal(t, checksums{sum: 0xfffffffd, xor: 0x00000003}, c)

	c = computeChecksums(data, binary.LittleEndian)
	require.Equal(t, checksums{sum: 0xfd000000, xor: 0x03000000}, c)

	require.Equal(t, checksums{}, computeChecksums(nil, binary.BigEndian))
}

func TestSeedEcho(t *testing.T) {
	s := &SeedSet{Version: Version2, Main: [3]uint32{7, 11, 13}}
	require.Equal(t, uint32(0x00620062), seedEcho(s, []byte("a")))
	s.Version = Version3
	require.Equal(t, uint32(7), seedEcho(s, []byte("a")))
}
