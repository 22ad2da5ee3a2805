package wire

import (
	"encoding/hex"
	"fmt"
	"math"
)

// smallestNormalFloat32 is the smallest positive normal float32 (~1.1755e-38).
const smallestNormalFloat32 = 0x1p-126

func checkFloat32(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: NaN is not a number", ErrType)
	}
	if v == 0 {
		return nil
	}
	if a := math.Abs(v); a < smallestNormalFloat32 || a > math.MaxFloat32 {
		return fmt.Errorf("%w: %g does not fit float32", ErrRange, v)
	}
	return nil
}

func checkFloat64(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: NaN is not a number", ErrType)
	}
	if math.IsInf(v, 0) {
		return fmt.Errorf("%w: %g does not fit float64", ErrRange, v)
	}
	return nil
}

// integerValue normalises every Go integer kind. Unsigned inputs are returned
// in u with unsigned set; signed inputs in n.
func integerValue(v any) (n int64, u uint64, unsigned bool, err error) {
	switch x := v.(type) {
	case int:
		return int64(x), 0, false, nil
	case int8:
		return int64(x), 0, false, nil
	case int16:
		return int64(x), 0, false, nil
	case int32:
		return int64(x), 0, false, nil
	case int64:
		return x, 0, false, nil
	case uint:
		return 0, uint64(x), true, nil
	case uint8:
		return 0, uint64(x), true, nil
	case uint16:
		return 0, uint64(x), true, nil
	case uint32:
		return 0, uint64(x), true, nil
	case uint64:
		return 0, x, true, nil
	}
	return 0, 0, false, fmt.Errorf("%w: %T is not an integer", ErrType, v)
}

func unsignedValue(t DataType, v any, max uint64) (uint64, error) {
	n, u, unsigned, err := integerValue(v)
	if err != nil {
		return 0, err
	}
	if !unsigned {
		if n < 0 {
			return 0, fmt.Errorf("%w: %d is negative for %s", ErrRange, n, t)
		}
		u = uint64(n)
	}
	if u > max {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrRange, u, t)
	}
	return u, nil
}

func signedValue(t DataType, v any, min, max int64) (int64, error) {
	n, u, unsigned, err := integerValue(v)
	if err != nil {
		return 0, err
	}
	if unsigned {
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d does not fit %s", ErrRange, u, t)
		}
		n = int64(u)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrRange, n, t)
	}
	return n, nil
}

func floatValue(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	}
	n, u, unsigned, err := integerValue(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %T is not a number", ErrType, v)
	}
	if unsigned {
		return float64(u), nil
	}
	return float64(n), nil
}

// byteArrayValue accepts raw octets or their hex text.
func byteArrayValue(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		b, err := hex.DecodeString(x)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex byte array: %v", ErrType, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %T is not a byte array", ErrType, v)
}

func checkLength(n int) error {
	if n > MaxStringLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLong, n, MaxStringLength)
	}
	return nil
}
