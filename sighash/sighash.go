package sighash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Namespace tags for discriminator derivation. The namespace is hashed
// together with the name, so an instruction and an account type with the
// same name never collide.
const (
	NamespaceGlobal  = "global"
	NamespaceAccount = "account"
)

// Size is the length of a derived discriminator in bytes.
const Size = 8

// ListTools is the reserved discriminator for the discovery instruction,
// sha256("global:list_tools")[:8]. No user-chosen tool name may derive to
// this value; schema construction rejects the collision.
var ListTools = Discriminator{0x42, 0x19, 0x5e, 0x6a, 0x55, 0xfd, 0x41, 0xc0}

// Discriminator is an 8-byte identifier that routes an instruction or tags
// an account type. It is always derived from a name, never chosen.
type Discriminator [Size]byte

// Error values for hex parsing.
var (
	ErrBadLength = errors.New("discriminator must be 16 hex characters")
	ErrBadHex    = errors.New("invalid discriminator hex")
)

// Instruction derives the discriminator for an instruction name:
// sha256("global:<name>")[:8].
func Instruction(name string) Discriminator {
	return derive(NamespaceGlobal, name)
}

// Account derives the discriminator for an account type name:
// sha256("account:<name>")[:8].
func Account(name string) Discriminator {
	return derive(NamespaceAccount, name)
}

func derive(namespace, name string) Discriminator {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{':'})
	h.Write([]byte(name))
	sum := h.Sum(nil)

	var d Discriminator
	copy(d[:], sum[:Size])
	return d
}

// Hex returns the discriminator as 16 lowercase hex characters, the form
// used in wire schemas.
func (d Discriminator) Hex() string {
	return hex.EncodeToString(d[:])
}

// String implements fmt.Stringer.
func (d Discriminator) String() string {
	return d.Hex()
}

// IsReserved reports whether d equals the reserved list_tools discriminator.
func (d Discriminator) IsReserved() bool {
	return d == ListTools
}

// ParseHex parses a 16-character hex string into a Discriminator.
func ParseHex(s string) (Discriminator, error) {
	var d Discriminator
	if len(s) != Size*2 {
		return d, fmt.Errorf("%w: got %d characters", ErrBadLength, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	copy(d[:], raw)
	return d, nil
}
