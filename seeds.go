package gust

import (
	_ "embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

//go:embed seeds.json
var defaultSeedsJSON []byte

var (
	_ json.Marshaler   = Version(0)
	_ json.Unmarshaler = (*Version)(nil)

	_ json.Marshaler   = Hex32(0)
	_ json.Unmarshaler = (*Hex32)(nil)

	_ json.Marshaler   = &SeedSet{}
	_ json.Unmarshaler = &SeedSet{}
)

const (
	Version2 = Version(2)
	Version3 = Version(3)
)

// Version is the container type tag. It selects the byte order and which
// optional passes run.
type Version int

func (v Version) Unknown() bool {
	switch v {
	case Version2, Version3:
		return false
	}
	return true
}

func (v Version) String() string {
	switch v {
	case Version2:
		return "v2"
	case Version3:
		return "v3"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// ByteOrder returns the byte order of every multi-byte field of the version.
func (v Version) ByteOrder() binary.ByteOrder {
	if v == Version3 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(v))
}

func (v *Version) UnmarshalJSON(data []byte) error {
	var n int
	err := json.Unmarshal(data, &n)
	if err == nil {
		*v = Version(n)
		return nil
	}
	var s string
	err = json.Unmarshal(data, &s)
	if err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "v2", "2":
		*v = Version2
	case "v3", "3":
		*v = Version3
	default:
		return fmt.Errorf("unsupported version value: %q", s)
	}
	return nil
}

// Hex32 is a seed value. In JSON it is a number or a "0x" prefixed string.
type Hex32 uint32

func (h Hex32) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%x", uint32(h)))
}

func (h *Hex32) UnmarshalJSON(data []byte) error {
	var n uint32
	err := json.Unmarshal(data, &n)
	if err == nil {
		*h = Hex32(n)
		return nil
	}
	var s string
	err = json.Unmarshal(data, &s)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("unsupported seed value: %q", s)
	}
	*h = Hex32(v)
	return nil
}

// SeedSet holds the per-title constants of the scrambling passes.
// It is read-only once loaded.
type SeedSet struct {
	ID      string
	Name    string
	Version Version
	// Main seeds start the end-bit, fenced and start-bit passes.
	Main [3]uint32
	// Table seeds and Length switches drive the rotating pass.
	Table  [3]uint32
	Length [3]uint32
	Fence  uint16
	// ValidatePrimes enables the primality check of Validate.
	ValidatePrimes bool
}

type jsonSeedSet struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Version        Version  `json:"version"`
	Main           [3]Hex32 `json:"main"`
	Table          [3]Hex32 `json:"table"`
	Length         [3]Hex32 `json:"length"`
	Fence          Hex32    `json:"fence"`
	ValidatePrimes *bool    `json:"validate_primes,omitempty"`
}

func (s *SeedSet) MarshalJSON() ([]byte, error) {
	v := s.ValidatePrimes
	js := jsonSeedSet{
		ID:             s.ID,
		Name:           s.Name,
		Version:        s.Version,
		Fence:          Hex32(s.Fence),
		ValidatePrimes: &v,
	}
	for i := range s.Main {
		js.Main[i] = Hex32(s.Main[i])
		js.Table[i] = Hex32(s.Table[i])
		js.Length[i] = Hex32(s.Length[i])
	}
	return json.Marshal(js)
}

func (s *SeedSet) UnmarshalJSON(data []byte) error {
	var js jsonSeedSet
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	if js.Fence > 0xffff {
		return fmt.Errorf("fence value 0x%x does not fit 16 bits", uint32(js.Fence))
	}
	*s = SeedSet{
		ID:             js.ID,
		Name:           js.Name,
		Version:        js.Version,
		Fence:          uint16(js.Fence),
		ValidatePrimes: js.ValidatePrimes == nil || *js.ValidatePrimes,
	}
	for i := range js.Main {
		s.Main[i] = uint32(js.Main[i])
		s.Table[i] = uint32(js.Table[i])
		s.Length[i] = uint32(js.Length[i])
	}
	return nil
}

func isPrime(v uint32) bool {
	return big.NewInt(int64(v)).ProbablyPrime(0)
}

// Validate checks the version and fence and, when ValidatePrimes is set,
// that every seed value is prime.
func (s *SeedSet) Validate() error {
	if s.Version.Unknown() {
		return fmt.Errorf(pkg+": seeds %q: unsupported %v: %w", s.ID, s.Version, ErrInvalidContainer)
	}
	if s.Fence == 0 {
		return fmt.Errorf(pkg+": seeds %q: zero fence: %w", s.ID, ErrInvalidContainer)
	}
	if !s.ValidatePrimes {
		return nil
	}
	check := func(name string, arr [3]uint32) error {
		for i, v := range arr {
			if !isPrime(v) {
				return fmt.Errorf(pkg+": seeds %q: %s[%d] = 0x%x: %w", s.ID, name, i, v, ErrNotPrime)
			}
		}
		return nil
	}
	if err := check("main", s.Main); err != nil {
		return err
	}
	if err := check("table", s.Table); err != nil {
		return err
	}
	if err := check("length", s.Length); err != nil {
		return err
	}
	if !isPrime(uint32(s.Fence)) {
		return fmt.Errorf(pkg+": seeds %q: fence = 0x%x: %w", s.ID, s.Fence, ErrNotPrime)
	}
	return nil
}

// SeedTable is a set of title configurations keyed by id.
// It is safe for concurrent reads.
type SeedTable struct {
	byID map[string]*SeedSet
}

// LoadSeeds reads a JSON seed table and validates every entry.
func LoadSeeds(r io.Reader) (*SeedTable, error) {
	var doc struct {
		Seeds []*SeedSet `json:"seeds"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf(pkg+": cannot parse seeds: %w", err)
	}
	t := &SeedTable{byID: make(map[string]*SeedSet, len(doc.Seeds))}
	for _, s := range doc.Seeds {
		if s.ID == "" {
			return nil, fmt.Errorf(pkg+": seed entry without id")
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToUpper(s.ID)
		if _, ok := t.byID[key]; ok {
			return nil, fmt.Errorf(pkg+": duplicate seed id %q", s.ID)
		}
		t.byID[key] = s
	}
	return t, nil
}

// DefaultSeeds returns the table built into the package.
func DefaultSeeds() *SeedTable {
	t, err := LoadSeeds(strings.NewReader(string(defaultSeedsJSON)))
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the seeds of a title. Ids are case-insensitive.
func (t *SeedTable) Lookup(id string) (*SeedSet, error) {
	s, ok := t.byID[strings.ToUpper(id)]
	if !ok {
		return nil, fmt.Errorf(pkg+": %q: %w", id, ErrConfigNotFound)
	}
	return s, nil
}

// List returns all seed sets sorted by id.
func (t *SeedTable) List() []*SeedSet {
	out := make([]*SeedSet, 0, len(t.byID))
	for _, s := range t.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
