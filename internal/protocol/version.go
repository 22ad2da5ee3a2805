package protocol

import (
	"fmt"
	"strings"

	"github.com/muurk/kpowire/internal/wire"
)

// Version is a protocol major version.
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
)

// Versions lists the supported protocol versions in ascending order.
var Versions = []Version{V1, V2}

func (v Version) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}

// Valid reports whether v is a supported version.
func (v Version) Valid() bool {
	return v == V1 || v == V2
}

// ParseVersion accepts "v1", "1", "v2" or "2".
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v1", "1":
		return V1, nil
	case "v2", "2":
		return V2, nil
	}
	return 0, fmt.Errorf("unsupported protocol version %q (want v1 or v2)", s)
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Types returns the set of data types the version carries on the wire.
func (v Version) Types() Types {
	if v == V1 {
		return typesV1
	}
	return typesV2
}

// Types is a set of wire data types, one bit per tag.
type Types uint16

var (
	typesV2 = typesOf(
		wire.Bool, wire.Uint8, wire.Int8, wire.Uint16, wire.Int16, wire.Uint32, wire.Int32,
		wire.Uint64, wire.Int64, wire.Float32, wire.Float64, wire.String, wire.ByteArray,
	)
	// v1 has no 64-bit integers.
	typesV1 = typesV2 &^ typesOf(wire.Uint64, wire.Int64)
)

func typesOf(ts ...wire.DataType) Types {
	var set Types
	for _, t := range ts {
		set |= 1 << t
	}
	return set
}

// Has reports whether t is in the set.
func (ts Types) Has(t wire.DataType) bool {
	return t.Valid() && ts&(1<<t) != 0
}

// Check returns an InvalidDataType error when t is not in the set.
func (ts Types) Check(t wire.DataType) error {
	if ts.Has(t) {
		return nil
	}
	return NewDataTypeError(fmt.Sprintf("data type %s is not supported", t), wire.ErrInvalidDataType)
}
