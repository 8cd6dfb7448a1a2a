package gust

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSeeds(t *testing.T) {
	s, err := DefaultSeeds().Lookup("a17")
	require.NoError(t, err)
	require.Equal(t, &SeedSet{
		ID:             "A17",
		Name:           "Atelier Sophie: The Alchemist of the Mysterious Book",
		Version:        Version2,
		Main:           [3]uint32{0x6e45, 0xc9af, 0x7525},
		Table:          [3]uint32{0xa9d9, 0xae8f, 0x89f5},
		Length:         [3]uint32{0x1d, 0x13, 0x0b},
		Fence:          0xa99,
		ValidatePrimes: true,
	}, s)

	_, err = DefaultSeeds().Lookup("A99")
	require.ErrorIs(t, err, ErrConfigNotFound)
}

const testSeedsJSON = `{"seeds": [
	{"id": "T3", "version": "v3", "main": [2, 3, "0x5"], "table": [7, 11, 13],
	 "length": [17, 19, 23], "fence": "0x1d"},
	{"id": "T2", "version": 2, "main": [4, 6, 8], "table": [9, 10, 12],
	 "length": [14, 15, 16], "fence": 21, "validate_primes": false}
]}`

func TestLoadSeeds(t *testing.T) {
	tbl, err := LoadSeeds(strings.NewReader(testSeedsJSON))
	require.NoError(t, err)

	list := tbl.List()
	require.Len(t, list, 2)
	require.Equal(t, "T2", list[0].ID)
	require.Equal(t, "T3", list[1].ID)

	s, err := tbl.Lookup("t3")
	require.NoError(t, err)
	require.Equal(t, Version3, s.Version)
	require.Equal(t, [3]uint32{2, 3, 5}, s.Main)
	require.Equal(t, uint16(0x1d), s.Fence)
	require.True(t, s.ValidatePrimes)

	s, err = tbl.Lookup("T2")
	require.NoError(t, err)
	require.False(t, s.ValidatePrimes)
}

func TestLoadSeedsErrors(t *testing.T) {
	for _, c := range []struct {
		name string
		doc  string
		err  error
	}{
		{"not prime", `{"seeds":[{"id":"X","version":2,"main":[4,3,5],"table":[7,11,13],"length":[17,19,23],"fence":29}]}`, ErrNotPrime},
		{"fence not prime", `{"seeds":[{"id":"X","version":2,"main":[2,3,5],"table":[7,11,13],"length":[17,19,23],"fence":21}]}`, ErrNotPrime},
		{"bad version", `{"seeds":[{"id":"X","version":4,"main":[2,3,5],"table":[7,11,13],"length":[17,19,23],"fence":29}]}`, ErrInvalidContainer},
		{"zero fence", `{"seeds":[{"id":"X","version":2,"main":[2,3,5],"table":[7,11,13],"length":[17,19,23],"fence":0,"validate_primes":false}]}`, ErrInvalidContainer},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadSeeds(strings.NewReader(c.doc))
			require.ErrorIs(t, err, c.err)
		})
	}

	_, err := LoadSeeds(strings.NewReader(`{"seeds":[{"id":"X","main":["nope",3,5]}]}`))
	require.Error(t, err)
	_, err = LoadSeeds(strings.NewReader(`{"seeds":[{"version":2}]}`))
	require.Error(t, err)
	_, err = LoadSeeds(strings.NewReader(`{"seeds":[{"id":"X","fence":"0x10000"}]}`))
	require.Error(t, err)
}

func TestSeedSetJSON(t *testing.T) {
	s, err := DefaultSeeds().Lookup("A17")
	require.NoError(t, err)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(data), `"fence":"0xa99"`)

	var back SeedSet
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, *s, back)
}

func TestVersionString(t *testing.T) {
	require.Equal(t, "v2", Version2.String())
	require.Equal(t, "v3", Version3.String())
	require.Equal(t, "Version(7)", Version(7).String())
	require.True(t, Version(7).Unknown())
}
