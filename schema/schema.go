package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/toolwire/sighash"
)

// Version is the protocol version tag carried by every schema. Consumers
// compare it for exact equality.
const Version = "2024-11-05"

// DiscoveryToolName is the reserved discovery instruction. It is the only
// name allowed to derive to the reserved discriminator.
const DiscoveryToolName = "list_tools"

// Error values for schema construction.
var (
	ErrUnknownType       = errors.New("unknown argument type token")
	ErrInvalidName       = errors.New("invalid name")
	ErrDuplicateTool     = errors.New("duplicate tool name")
	ErrDuplicateParam    = errors.New("duplicate parameter name")
	ErrReservedCollision = errors.New("tool name derives to the reserved list_tools discriminator")
	ErrSuffixName        = errors.New("parameter name ends in a flag suffix")
	ErrBadOrder          = errors.New("order list is not a permutation of declared parameters")
	ErrFlagsOnValue      = errors.New("signer/writable flags on a non-pubkey parameter")
)

// Param is the canonical in-memory form of a tool parameter. Both wire
// representations (suffix keys in compact mode, explicit booleans in
// paginated mode) normalize into it.
type Param struct {
	// Name is the base parameter name, without flag suffix.
	Name string
	// Type is one token of the closed vocabulary.
	Type ArgType
	// Signer and Writable are only meaningful for ArgPubkey parameters.
	Signer   bool
	Writable bool
	// Description is emitted only by the paginated encoding.
	Description string
}

// Suffix returns the compact-mode name suffix encoding the flags:
// "_s" signer, "_w" writable, "_sw" both, "" neither.
func (p Param) Suffix() string {
	switch {
	case p.Signer && p.Writable:
		return "_sw"
	case p.Signer:
		return "_s"
	case p.Writable:
		return "_w"
	}
	return ""
}

// CompactKey returns the parameter key used in the compact encoding:
// the base name plus the flag suffix for account references, the bare
// name for everything else.
func (p Param) CompactKey() string {
	if p.Type == ArgPubkey {
		return p.Name + p.Suffix()
	}
	return p.Name
}

// SplitSuffix strips a compact-mode flag suffix from a parameter key and
// returns the base name with the flags it encoded. "_sw" is checked first:
// the suffixes overlap and the longest match wins.
func SplitSuffix(key string) (base string, signer, writable bool) {
	switch {
	case strings.HasSuffix(key, "_sw"):
		return strings.TrimSuffix(key, "_sw"), true, true
	case strings.HasSuffix(key, "_s"):
		return strings.TrimSuffix(key, "_s"), true, false
	case strings.HasSuffix(key, "_w"):
		return strings.TrimSuffix(key, "_w"), false, true
	}
	return key, false, false
}

func hasFlagSuffix(name string) bool {
	base, _, _ := SplitSuffix(name)
	return base != name
}

// Tool describes one callable instruction: its derived discriminator, its
// ordered parameters, and the wire order of its arguments.
type Tool struct {
	Name        string
	Description string
	// Discriminator is derived from the name via sighash.Instruction.
	Discriminator sighash.Discriminator
	// Params are in declaration order, which is call-argument order.
	Params []Param
	// Order lists compact keys in instruction wire order. Empty means
	// natural declaration order.
	Order []string
}

// Param returns the parameter with the given base name.
func (t *Tool) Param(name string) (Param, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// CompactKeys returns the compact-mode keys of all parameters in wire order.
func (t *Tool) CompactKeys() []string {
	if len(t.Order) > 0 {
		out := make([]string, len(t.Order))
		copy(out, t.Order)
		return out
	}
	out := make([]string, len(t.Params))
	for i, p := range t.Params {
		out[i] = p.CompactKey()
	}
	return out
}

// Validate checks the tool's invariants. Build performs the same checks;
// Validate exists for tools assembled as literals.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty tool name", ErrInvalidName)
	}
	if strings.ContainsRune(t.Name, 0) {
		return fmt.Errorf("%w: tool name contains NUL", ErrInvalidName)
	}
	if t.Discriminator.IsReserved() && t.Name != DiscoveryToolName {
		return fmt.Errorf("%w: %q", ErrReservedCollision, t.Name)
	}

	seen := make(map[string]struct{}, len(t.Params))
	for _, p := range t.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: empty parameter name in tool %q", ErrInvalidName, t.Name)
		}
		if hasFlagSuffix(p.Name) {
			return fmt.Errorf("%w: %q in tool %q", ErrSuffixName, p.Name, t.Name)
		}
		if p.Type != ArgPubkey && (p.Signer || p.Writable) {
			return fmt.Errorf("%w: %q in tool %q", ErrFlagsOnValue, p.Name, t.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %q in tool %q", ErrDuplicateParam, p.Name, t.Name)
		}
		seen[p.Name] = struct{}{}
	}

	if len(t.Order) > 0 {
		if err := t.validateOrder(); err != nil {
			return err
		}
	}
	return nil
}

// validateOrder checks that Order is a permutation of a subset of the
// declared parameters' compact keys, with no repeats.
func (t *Tool) validateOrder() error {
	keys := make(map[string]struct{}, len(t.Params))
	for _, p := range t.Params {
		keys[p.CompactKey()] = struct{}{}
	}
	used := make(map[string]struct{}, len(t.Order))
	for _, key := range t.Order {
		if _, ok := keys[key]; !ok {
			return fmt.Errorf("%w: key %q not declared in tool %q", ErrBadOrder, key, t.Name)
		}
		if _, dup := used[key]; dup {
			return fmt.Errorf("%w: key %q repeated in tool %q", ErrBadOrder, key, t.Name)
		}
		used[key] = struct{}{}
	}
	return nil
}

// Schema is the complete self-description of a program: its name and its
// callable tools in declaration order. It is constructed once and never
// mutated; concurrent reads need no synchronization.
type Schema struct {
	Version string
	Name    string
	Tools   []Tool
}

// Tool returns the tool with the given name.
func (s *Schema) Tool(name string) (*Tool, bool) {
	for i := range s.Tools {
		if s.Tools[i].Name == name {
			return &s.Tools[i], true
		}
	}
	return nil, false
}

// Validate checks every tool plus schema-level invariants.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty schema name", ErrInvalidName)
	}
	seen := make(map[string]struct{}, len(s.Tools))
	for i := range s.Tools {
		t := &s.Tools[i]
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTool, t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}
