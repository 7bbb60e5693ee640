package schema

import "fmt"

// ArgType is the closed vocabulary of argument types a tool can declare.
// Every type has a fixed or length-prefixed wire size; arguments are
// serialized left to right with no padding.
type ArgType int

const (
	// ArgU8 is an unsigned 8-bit integer.
	ArgU8 ArgType = iota
	// ArgU16 is an unsigned 16-bit integer.
	ArgU16
	// ArgU32 is an unsigned 32-bit integer.
	ArgU32
	// ArgU64 is an unsigned 64-bit integer, the common type for amounts.
	ArgU64
	// ArgU128 is an unsigned 128-bit integer.
	ArgU128
	// ArgI8 is a signed 8-bit integer.
	ArgI8
	// ArgI16 is a signed 16-bit integer.
	ArgI16
	// ArgI32 is a signed 32-bit integer.
	ArgI32
	// ArgI64 is a signed 64-bit integer.
	ArgI64
	// ArgI128 is a signed 128-bit integer.
	ArgI128
	// ArgBool is a single-byte boolean.
	ArgBool
	// ArgPubkey is a 32-byte account reference. Only pubkey parameters
	// carry signer/writable flags.
	ArgPubkey
	// ArgString is a UTF-8 string with a 4-byte little-endian length prefix.
	ArgString
	// ArgBytes is an opaque byte sequence with a 4-byte little-endian
	// length prefix.
	ArgBytes
)

// TokenInt is the compact-mode shorthand for ArgU64. The compact encoder
// emits it to save bytes; the decoder accepts it alongside "u64".
const TokenInt = "int"

// Token returns the canonical short-string token for the type.
func (t ArgType) Token() string {
	switch t {
	case ArgU8:
		return "u8"
	case ArgU16:
		return "u16"
	case ArgU32:
		return "u32"
	case ArgU64:
		return "u64"
	case ArgU128:
		return "u128"
	case ArgI8:
		return "i8"
	case ArgI16:
		return "i16"
	case ArgI32:
		return "i32"
	case ArgI64:
		return "i64"
	case ArgI128:
		return "i128"
	case ArgBool:
		return "bool"
	case ArgPubkey:
		return "pubkey"
	case ArgString:
		return "str"
	case ArgBytes:
		return "bytes"
	}
	return fmt.Sprintf("ArgType(%d)", int(t))
}

// CompactToken returns the token the compact encoding uses. It differs from
// Token only for ArgU64, which compact-encodes as the "int" shorthand.
func (t ArgType) CompactToken() string {
	if t == ArgU64 {
		return TokenInt
	}
	return t.Token()
}

// String implements fmt.Stringer.
func (t ArgType) String() string {
	return t.Token()
}

// ParseArgType maps a wire token back to its ArgType. The vocabulary is
// closed: an unrecognized token is a hard failure, because argument
// serialization cannot proceed with an unknown width.
func ParseArgType(token string) (ArgType, error) {
	switch token {
	case "u8":
		return ArgU8, nil
	case "u16":
		return ArgU16, nil
	case "u32":
		return ArgU32, nil
	case "u64", TokenInt:
		return ArgU64, nil
	case "u128":
		return ArgU128, nil
	case "i8":
		return ArgI8, nil
	case "i16":
		return ArgI16, nil
	case "i32":
		return ArgI32, nil
	case "i64":
		return ArgI64, nil
	case "i128":
		return ArgI128, nil
	case "bool":
		return ArgBool, nil
	case "pubkey":
		return ArgPubkey, nil
	case "str":
		return ArgString, nil
	case "bytes":
		return ArgBytes, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, token)
}
