package wire

import (
	"errors"
	"testing"
)

func TestLengthAddBuild(t *testing.T) {
	var l Length
	steps := []struct {
		typ  DataType
		val  any
		want int
	}{
		{Uint8, nil, 1},
		{Uint16, nil, 3},
		{Float64, nil, 11},
		{String, "abc", 16},
		{ByteArray, []byte{1, 2}, 22},
		{Bool, nil, 23},
	}
	for _, s := range steps {
		got, err := l.Add(s.typ, s.val)
		if err != nil {
			t.Fatalf("Add(%s): %v", s.typ, err)
		}
		if got != s.want {
			t.Fatalf("Add(%s) = %d, want %d", s.typ, got, s.want)
		}
	}

	if n := l.Build(); n != 23 {
		t.Errorf("Build() = %d, want 23", n)
	}
	if n := l.Build(); n != 0 {
		t.Errorf("Build() after reset = %d, want 0", n)
	}
}

func TestLengthAddErrors(t *testing.T) {
	var l Length
	if _, err := l.Add(DataType(11), nil); !errors.Is(err, ErrInvalidDataType) {
		t.Errorf("Add(11) error = %v, want ErrInvalidDataType", err)
	}
	if _, err := l.Add(String, 5); !errors.Is(err, ErrType) {
		t.Errorf("Add(String, 5) error = %v, want ErrType", err)
	}
	if l.Total() != 0 {
		t.Errorf("Total() = %d after failed adds, want 0", l.Total())
	}
}

// writeSample is measured and written through the same code path.
func writeSample(w Writer) error {
	for _, step := range []func() error{
		func() error { return w.WriteUint8(0x0e) },
		func() error { return w.WriteUint16(99) },
		func() error { return w.WriteASCII("/a/b") },
		func() error { return w.WriteByType(Int32, -5) },
		func() error { return w.WriteOctets(make([]byte, 20)) },
		func() error { return w.WriteByType(ByteArray, "00ff") },
		func() error { return w.WriteString("desc") },
		func() error { return w.WriteFloat32(1) },
		func() error { return w.WriteBool(true) },
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func TestLengthMatchesWrites(t *testing.T) {
	var l Length
	if err := writeSample(&l); err != nil {
		t.Fatalf("measure: %v", err)
	}
	b := Alloc(l.Build())
	if err := writeSample(b); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !b.IsEndOfBuffer() {
		t.Errorf("buffer has %d unused bytes", b.Remaining())
	}
}

func TestDataTypeHelpers(t *testing.T) {
	pairs := map[DataType]DataType{
		Int8:    Uint8,
		Int16:   Uint16,
		Int32:   Uint32,
		Int64:   Uint64,
		Uint32:  Uint32,
		Float32: Float32,
		Float64: Float64,
	}
	for in, want := range pairs {
		if got := in.Unsigned(); got != want {
			t.Errorf("%s.Unsigned() = %s, want %s", in, got, want)
		}
	}

	if DataType(11).Valid() || DataType(14).Valid() {
		t.Error("reserved and out of range tags must be invalid")
	}
	if Bool.Numeric() || String.Numeric() || !Float64.Numeric() || !Uint8.Numeric() {
		t.Error("Numeric() classification is wrong")
	}
	if got, err := ParseDataType("uint16"); err != nil || got != Uint16 {
		t.Errorf("ParseDataType(uint16) = %v, %v", got, err)
	}
	if _, err := ParseDataType("reserved"); !errors.Is(err, ErrInvalidDataType) {
		t.Errorf("ParseDataType(reserved) error = %v", err)
	}
}
