package anchoridl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadIDL reports IDL JSON that does not parse into the expected shape.
var ErrBadIDL = errors.New("anchoridl: invalid IDL")

// IDL is the root of an Anchor IDL document. Only the pieces that feed
// schema conversion are modeled; everything else is ignored on decode.
type IDL struct {
	Version      string        `json:"version"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
	Metadata     *Metadata     `json:"metadata"`
}

// Metadata carries the deployed program address when the IDL includes one.
type Metadata struct {
	Address string `json:"address"`
}

// Instruction is one callable entry point.
type Instruction struct {
	Name     string        `json:"name"`
	Docs     []string      `json:"docs"`
	Accounts []AccountItem `json:"accounts"`
	Args     []Arg         `json:"args"`
}

// AccountItem is either a single account or a named composite group of
// accounts. The IDL encodes the two shapes as an untagged union.
type AccountItem struct {
	Single    *Account
	Composite *AccountGroup
}

// Account is a single account reference. Older IDLs flag mutability with
// isMut/isSigner, newer ones with writable/signer; both decode here.
type Account struct {
	Name       string   `json:"name"`
	IsMut      bool     `json:"isMut"`
	IsSigner   bool     `json:"isSigner"`
	Writable   bool     `json:"writable"`
	Signer     bool     `json:"signer"`
	IsOptional bool     `json:"isOptional"`
	Docs       []string `json:"docs"`
}

func (a *Account) writable() bool { return a.IsMut || a.Writable }
func (a *Account) signer() bool   { return a.IsSigner || a.Signer }

// AccountGroup is a nested account struct.
type AccountGroup struct {
	Name     string        `json:"name"`
	Accounts []AccountItem `json:"accounts"`
}

func (it *AccountItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		Accounts json.RawMessage `json:"accounts"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrBadIDL, err)
	}
	if probe.Accounts != nil {
		it.Composite = &AccountGroup{}
		return json.Unmarshal(data, it.Composite)
	}
	it.Single = &Account{}
	return json.Unmarshal(data, it.Single)
}

// Arg is one instruction argument.
type Arg struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// TypeRef is the IDL type union: a bare primitive name or a wrapper object
// such as {"vec":"u8"} or {"option":{"defined":"Foo"}}.
type TypeRef struct {
	Primitive string
	Option    *TypeRef
	Vec       *TypeRef
	Array     *TypeRef
	Defined   bool
	Other     bool
}

func (t *TypeRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty type", ErrBadIDL)
	}

	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &t.Primitive)
	}

	var wrapper struct {
		Option  json.RawMessage `json:"option"`
		Vec     json.RawMessage `json:"vec"`
		Array   json.RawMessage `json:"array"`
		Defined json.RawMessage `json:"defined"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return fmt.Errorf("%w: %v", ErrBadIDL, err)
	}

	switch {
	case wrapper.Option != nil:
		t.Option = &TypeRef{}
		return t.Option.UnmarshalJSON(wrapper.Option)
	case wrapper.Vec != nil:
		t.Vec = &TypeRef{}
		return t.Vec.UnmarshalJSON(wrapper.Vec)
	case wrapper.Array != nil:
		var pair []json.RawMessage
		if err := json.Unmarshal(wrapper.Array, &pair); err != nil || len(pair) == 0 {
			return fmt.Errorf("%w: malformed array type", ErrBadIDL)
		}
		t.Array = &TypeRef{}
		return t.Array.UnmarshalJSON(pair[0])
	case wrapper.Defined != nil:
		t.Defined = true
		return nil
	default:
		t.Other = true
		return nil
	}
}

// Parse decodes IDL JSON.
func Parse(data []byte) (*IDL, error) {
	var idl IDL
	if err := json.Unmarshal(data, &idl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadIDL, err)
	}
	if idl.Name == "" {
		return nil, fmt.Errorf("%w: missing program name", ErrBadIDL)
	}
	return &idl, nil
}

func joinDocs(docs []string) string {
	return strings.Join(docs, " ")
}
