// Package wire implements the scalar layer of the kpowire binary protocol.
//
// A Buffer wraps a fixed-size byte slice with a single cursor. Every read
// and write is bounds checked and advances the cursor by the width of the
// value. All multi-byte numbers are big-endian.
//
// # Scalar Types
//
// Scalars are identified by a DataType tag:
//   - Bool, Uint8, Int8: 1 byte
//   - Uint16, Int16: 2 bytes
//   - Uint32, Int32, Float32: 4 bytes
//   - Uint64, Int64, Float64: 8 bytes
//   - String, ByteArray: 2-byte length prefix + payload (max 4096 bytes)
//
// ByteArray payloads travel as lowercase hex text; the prefix and the limit
// count hex characters.
//
// Tag 11 is reserved and never valid on the wire.
//
// # Sizing
//
// Encoders never grow a buffer. A message is first "written" into a Length,
// which implements the same Writer interface as Buffer but only accumulates
// sizes, then written for real into a Buffer of exactly that size:
//
//	var l wire.Length
//	_ = writeFields(&l)
//	buf := wire.Alloc(l.Build())
//	if err := writeFields(buf); err != nil {
//	    return nil, err
//	}
//	// buf.IsEndOfBuffer() == true
//
// Because both passes run the same function they cannot drift apart.
//
// # Errors
//
// Reads fail with ErrTruncated when the buffer runs out. Writes validate the
// value first and fail with ErrType or ErrRange; nothing is written on failure.
package wire
