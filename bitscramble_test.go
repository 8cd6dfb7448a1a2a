package gust

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScrambleBitsGolden(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	err := scrambleBits(data, 0, len(data), 4, newSeedRand(seedConstant, 0x6e45), Scramble)
	require.NoError(t, err)
	require.Equal(t, "\x84\x08\x00\x04\x28\x0d\x0e\x00\x91\x08\x08\x89\x3f\x02\x40\x99", string(data))

	err = scrambleBits(data, 0, len(data), 4, newSeedRand(seedConstant, 0x6e45), Descramble)
	require.NoError(t, err)
	require.Equal(t, "\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f", string(data))
}

// A short last window draws a full table and swaps into the bytes after it.
func TestScrambleBitsShortWindow(t *testing.T) {
	data := make([]byte, 0x200)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	orig := append([]byte(nil), data...)
	err := scrambleBits(data, 0, 0x90, startSliceSize, newSeedRand(seedConstant, 0x7525), Descramble)
	require.NoError(t, err)

	want := "" +
		"12e7cb5e3e1369510ac37b8055c429e93179df0a197d7ca7983f83e353bb2fc2" +
		"977e1a347910311083364cb69f90a861f3305b9f2319605fc177b6b0aab455df" +
		"52dc2742172cb70a1b972a29e6d9045e2155bec806089e881d19f107271796f1" +
		"793b82c4f264ce82e297fea1b5db5ab33f2c33e52943b60682ccfc1eac595415" +
		"838a939887aeadb4b1c2c9d0d35ee5edf3f801080f363fb43b327900574e5d5d" +
		"636a51787f874d94bba2a9b0a7bac5ccd7d8e1c8eff67d040b12182127ae3578" +
		"4f4a517a5f666d747b86a990d79aa7ac33bac3c8cfd6dde4ebe2f900070e1514" +
		"230a31303f044d505b626970776e85ac939aa1a0afb6bdc4cad2d8e0a7eef7fc"
	require.Equal(t, want, hex.EncodeToString(data[:0x100]))
	require.Equal(t, orig[0x100:], data[0x100:])

	err = scrambleBits(data, 0, 0x90, startSliceSize, newSeedRand(seedConstant, 0x7525), Scramble)
	require.NoError(t, err)
	require.Equal(t, orig, data)
}

func TestScrambleBitsOutside(t *testing.T) {
	err := scrambleBits(make([]byte, 16), 0, 16, endSliceSize, newSeedRand(seedConstant, 0x6e45), Descramble)
	require.ErrorIs(t, err, ErrInvalidContainer)

	err = scrambleBits(make([]byte, 16), 8, 9, 4, newSeedRand(seedConstant, 0x6e45), Descramble)
	require.ErrorIs(t, err, ErrInvalidContainer)
	err = scrambleBits(make([]byte, 16), -1, 4, 4, newSeedRand(seedConstant, 0x6e45), Descramble)
	require.ErrorIs(t, err, ErrInvalidContainer)
}

func TestScrambleBitsZero(t *testing.T) {
	data := make([]byte, 0x200)
	err := scrambleBits(data, 0, len(data), endSliceSize, newSeedRand(seedConstant, 0x6e45), Scramble)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 0x200), data)
}

func TestScrambleBitsRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, slice := range []int{startSliceSize, endSliceSize} {
		for _, n := range []int{1, 15, 16, 0x7f, 0x80, 0x81, 0x100, 0x101, 0x800, 0x1234} {
			t.Run(fmt.Sprintf("%x/%x", slice, n), func(t *testing.T) {
				// room for the table of a short last window
				orig := make([]byte, n+slice)
				rnd.Read(orig)
				data := append([]byte(nil), orig...)

				err := scrambleBits(data, 0, n, slice, newSeedRand(seedConstant, 0x7525), Scramble)
				require.NoError(t, err)
				if n >= 4 {
					require.NotEqual(t, orig, data)
				}
				err = scrambleBits(data, 0, n, slice, newSeedRand(seedConstant, 0x7525), Descramble)
				require.NoError(t, err)
				require.Equal(t, orig, data)
			})
		}
	}
}

func TestScrambleBitsKeepsPopulation(t *testing.T) {
	data := bytes.Repeat([]byte{0x81}, 0x200)
	err := scrambleBits(data, 0, 0x180, endSliceSize, newSeedRand(seedConstant, 1), Scramble)
	require.NoError(t, err)
	ones := 0
	for _, b := range data {
		for ; b != 0; b &= b - 1 {
			ones++
		}
	}
	require.Equal(t, 2*0x200, ones)
}

func TestScrambleBitsBadSlice(t *testing.T) {
	err := scrambleBits(make([]byte, 8), 0, 8, 0, newSeedRand(seedConstant, 1), Scramble)
	require.ErrorIs(t, err, ErrAllocation)
	err = scrambleBits(make([]byte, 8), 0, 8, maxSliceSize+1, newSeedRand(seedConstant, 1), Scramble)
	require.ErrorIs(t, err, ErrAllocation)
}

func TestDirectionString(t *testing.T) {
	require.Equal(t, "scramble", Scramble.String())
	require.Equal(t, "descramble", Descramble.String())
	require.Equal(t, "Direction(5)", Direction(5).String())
}
