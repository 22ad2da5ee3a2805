package protocol

import (
	"errors"
	"fmt"
)

// ErrorKind classifies codec failures.
type ErrorKind int

const (
	// Unclassified is reported by KindOf for errors that are not *Error.
	Unclassified ErrorKind = iota
	// InvalidOpcode indicates an unknown or unexpected opcode byte.
	InvalidOpcode
	// InvalidSequenceNumber indicates a zero sequence id.
	InvalidSequenceNumber
	// ProtocolError indicates trailing bytes or any other structural failure.
	ProtocolError
	// InvalidNodeType indicates an unsupported node type or a type/option mismatch.
	InvalidNodeType
	// InvalidOption indicates reserved bits, or an option that implies another unset option.
	InvalidOption
	// InvalidDataType indicates a data type outside the valid range for its context.
	InvalidDataType
	// InvalidValue indicates a trigger value that cannot be represented.
	InvalidValue
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case Unclassified:
		return "Unclassified"
	case InvalidOpcode:
		return "InvalidOpcode"
	case InvalidSequenceNumber:
		return "InvalidSequenceNumber"
	case ProtocolError:
		return "ProtocolError"
	case InvalidNodeType:
		return "InvalidNodeType"
	case InvalidOption:
		return "InvalidOption"
	case InvalidDataType:
		return "InvalidDataType"
	case InvalidValue:
		return "InvalidValue"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a classified codec error
type Error struct {
	Kind    ErrorKind // Category of error
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewInvalidOpcodeError creates an InvalidOpcode error
func NewInvalidOpcodeError(message string) *Error {
	return NewError(InvalidOpcode, message, nil)
}

// NewSequenceError creates an InvalidSequenceNumber error
func NewSequenceError() *Error {
	return NewError(InvalidSequenceNumber, "sequence id 0 is reserved", nil)
}

// NewProtocolError creates a ProtocolError error
func NewProtocolError(message string, err error) *Error {
	return NewError(ProtocolError, message, err)
}

// NewNodeTypeError creates an InvalidNodeType error
func NewNodeTypeError(message string) *Error {
	return NewError(InvalidNodeType, message, nil)
}

// NewOptionError creates an InvalidOption error
func NewOptionError(message string) *Error {
	return NewError(InvalidOption, message, nil)
}

// NewDataTypeError creates an InvalidDataType error
func NewDataTypeError(message string, err error) *Error {
	return NewError(InvalidDataType, message, err)
}

// NewValueError creates an InvalidValue error
func NewValueError(message string) *Error {
	return NewError(InvalidValue, message, nil)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unclassified
}

// IsKind checks if err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
