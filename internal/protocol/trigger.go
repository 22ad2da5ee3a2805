package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/muurk/kpowire/internal/wire"
)

// TriggerMode controls when a node reports and which of the trigger N and
// trigger T fields follow the mode byte.
type TriggerMode uint8

const (
	TriggerAnyChange TriggerMode = iota
	TriggerRequest
	TriggerN
	TriggerT
	TriggerNT
	TriggerDomain
	TriggerTChanged
	TriggerR
	TriggerRT
	TriggerTS
)

var triggerModeNames = [...]string{
	TriggerAnyChange: "anyChange",
	TriggerRequest:   "request",
	TriggerN:         "n",
	TriggerT:         "t",
	TriggerNT:        "nt",
	TriggerDomain:    "domain",
	TriggerTChanged:  "tChanged",
	TriggerR:         "r",
	TriggerRT:        "rt",
	TriggerTS:        "ts",
}

func (m TriggerMode) Valid() bool {
	return int(m) < len(triggerModeNames)
}

func (m TriggerMode) String() string {
	if m.Valid() {
		return triggerModeNames[m]
	}
	return fmt.Sprintf("TriggerMode(%d)", uint8(m))
}

// ParseTriggerMode is the inverse of TriggerMode.String.
func ParseTriggerMode(s string) (TriggerMode, error) {
	for i, name := range triggerModeNames {
		if strings.EqualFold(name, s) {
			return TriggerMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trigger mode %q", s)
}

func (m TriggerMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *TriggerMode) UnmarshalText(text []byte) error {
	if n, err := strconv.ParseUint(string(text), 10, 8); err == nil {
		*m = TriggerMode(n)
		return nil
	}
	v, err := ParseTriggerMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// HasN reports whether a trigger N value follows the mode.
func (m TriggerMode) HasN() bool {
	switch m {
	case TriggerN, TriggerNT, TriggerR, TriggerRT, TriggerTS:
		return true
	}
	return false
}

// HasT reports whether a trigger T period (u32 milliseconds) follows.
func (m TriggerMode) HasT() bool {
	switch m {
	case TriggerT, TriggerNT, TriggerTChanged, TriggerRT, TriggerTS:
		return true
	}
	return false
}

// Trigger is a trigger mode with its conditional fields. N holds the decoded
// Go value of the N field (see TriggerNType); it is nil when the mode carries
// no N.
type Trigger struct {
	Mode TriggerMode `yaml:"mode" json:"mode"`
	N    any         `yaml:"n,omitempty" json:"n,omitempty"`
	T    uint32      `yaml:"t,omitempty" json:"t,omitempty"`
}

// TriggerNType returns the wire type of trigger N for a node. Delta modes use
// the unsigned counterpart of the node data type, rate modes use float32 and
// the step mode uses uint32.
func TriggerNType(mode TriggerMode, node NodeType, dt *wire.DataType) (wire.DataType, error) {
	switch mode {
	case TriggerR, TriggerRT:
		return wire.Float32, nil
	case TriggerTS:
		return wire.Uint32, nil
	case TriggerN, TriggerNT:
		if node == NodeGroup {
			return 0, NewNodeTypeError(fmt.Sprintf("trigger mode %s needs a point", mode))
		}
		if dt == nil {
			return 0, NewOptionError(fmt.Sprintf("trigger mode %s needs a data type", mode))
		}
		if !dt.Numeric() {
			return 0, NewDataTypeError(fmt.Sprintf("trigger mode %s needs a numeric data type, have %s", mode, dt), nil)
		}
		return dt.Unsigned(), nil
	}
	return 0, fmt.Errorf("trigger mode %s carries no N", mode)
}

// Trigger writes the mode and its conditional fields for a node of type node
// and data type dt (nil when the node has none).
func (e *Encoder) Trigger(tr Trigger, node NodeType, dt *wire.DataType) {
	if !tr.Mode.Valid() {
		e.Fail(fmt.Errorf("%w: trigger mode %d", wire.ErrRange, uint8(tr.Mode)))
		return
	}
	e.U8(uint8(tr.Mode))
	if tr.Mode.HasN() {
		t, err := TriggerNType(tr.Mode, node, dt)
		if err != nil {
			e.Fail(err)
			return
		}
		if err := checkDeltaRange(tr.N, dt); err != nil {
			e.Fail(err)
			return
		}
		e.Value(t, tr.N)
	}
	if tr.Mode.HasT() {
		e.U32(tr.T)
	}
}

// Trigger reads a trigger for a node of type node and data type dt.
func (d *Decoder) Trigger(node NodeType, dt *wire.DataType) Trigger {
	tr := Trigger{Mode: TriggerMode(d.U8())}
	if d.err != nil {
		return Trigger{}
	}
	if !tr.Mode.Valid() {
		d.Fail(NewProtocolError(fmt.Sprintf("unknown trigger mode %d", uint8(tr.Mode)), nil))
		return Trigger{}
	}
	if tr.Mode.HasN() {
		t, err := TriggerNType(tr.Mode, node, dt)
		if err != nil {
			d.Fail(err)
			return Trigger{}
		}
		tr.N = d.Value(t)
		if err := checkTriggerN(tr.N, dt); err != nil {
			d.Fail(err)
		}
	}
	if tr.Mode.HasT() {
		tr.T = d.U32()
	}
	return tr
}

func checkTriggerN(v any, dt *wire.DataType) error {
	switch x := v.(type) {
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return NewValueError(fmt.Sprintf("trigger N %v is not finite", f))
		}
	case uint64:
		if dt != nil && *dt == wire.Int64 && x > math.MaxInt64 {
			return NewValueError(fmt.Sprintf("trigger N %d exceeds the int64 range", x))
		}
	}
	return nil
}

// checkDeltaRange bounds an unsigned delta on an int64 node to the int64 range.
func checkDeltaRange(v any, dt *wire.DataType) error {
	if dt == nil || *dt != wire.Int64 {
		return nil
	}
	var u uint64
	switch x := v.(type) {
	case uint64:
		u = x
	case uint:
		u = uint64(x)
	default:
		return nil
	}
	if u > math.MaxInt64 {
		return fmt.Errorf("%w: trigger N %d exceeds the int64 range", wire.ErrRange, u)
	}
	return nil
}
