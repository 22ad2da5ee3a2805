package wire

// Writer is implemented by Buffer, which writes values, and by Length, which
// only measures them. Message encoders are written once against Writer.
type Writer interface {
	WriteBool(v bool) error
	WriteUint8(v uint8) error
	WriteInt8(v int8) error
	WriteUint16(v uint16) error
	WriteInt16(v int16) error
	WriteUint32(v uint32) error
	WriteInt32(v int32) error
	WriteUint64(v uint64) error
	WriteInt64(v int64) error
	WriteFloat32(v float32) error
	WriteFloat64(v float64) error
	WriteString(s string) error
	WriteASCII(s string) error
	WriteByteArray(b []byte) error
	WriteOctets(b []byte) error
	WriteByType(t DataType, v any) error
}

var (
	_ Writer = (*Buffer)(nil)
	_ Writer = (*Length)(nil)
)
