package anchoridl

import (
	"fmt"

	"github.com/jonwraymond/toolwire/codec"
	"github.com/jonwraymond/toolwire/schema"
)

// discoveryDescription is the fixed description of the prepended discovery
// tool.
const discoveryDescription = "List available MCP tools for this program"

// Convert maps an Anchor IDL onto a tool schema. The discovery tool is
// always prepended, each instruction becomes one tool, nested account
// groups flatten to underscore-joined names, and argument types collapse
// onto the closed wire vocabulary.
func Convert(idl *IDL) (*schema.Schema, error) {
	b := schema.New(idl.Name).
		MustTool(schema.NewTool(schema.DiscoveryToolName).Description(discoveryDescription))

	for _, ix := range idl.Instructions {
		tb := schema.NewTool(ix.Name)
		if desc := joinDocs(ix.Docs); desc != "" {
			tb.Description(desc)
		}

		for _, acc := range flattenAccounts(ix.Accounts, "") {
			tb.AccountDesc(acc.name, acc.description, acc.signer, acc.writable)
		}
		for _, arg := range ix.Args {
			tb.Arg(arg.Name, argType(&arg.Type))
		}

		b.MustTool(tb)
	}

	s, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("anchoridl: convert %q: %w", idl.Name, err)
	}
	return s, nil
}

// ConvertJSON parses IDL JSON and returns the compact schema bytes.
func ConvertJSON(data []byte) ([]byte, error) {
	idl, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s, err := Convert(idl)
	if err != nil {
		return nil, err
	}
	return codec.EncodeCompact(s), nil
}

type flatAccount struct {
	name        string
	description string
	signer      bool
	writable    bool
}

func flattenAccounts(items []AccountItem, prefix string) []flatAccount {
	var out []flatAccount
	for _, item := range items {
		switch {
		case item.Single != nil:
			acc := item.Single
			out = append(out, flatAccount{
				name:        joined(prefix, acc.Name),
				description: joinDocs(acc.Docs),
				signer:      acc.signer(),
				writable:    acc.writable(),
			})
		case item.Composite != nil:
			out = append(out, flattenAccounts(item.Composite.Accounts, joined(prefix, item.Composite.Name))...)
		}
	}
	return out
}

func joined(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// argType maps an IDL type onto the wire vocabulary. Byte vectors and byte
// arrays become bytes; options unwrap to their inner type; anything the
// vocabulary cannot express degrades to a JSON-encoded string.
func argType(t *TypeRef) schema.ArgType {
	switch {
	case t.Primitive != "":
		switch t.Primitive {
		case "u8":
			return schema.ArgU8
		case "u16":
			return schema.ArgU16
		case "u32":
			return schema.ArgU32
		case "u64":
			return schema.ArgU64
		case "u128":
			return schema.ArgU128
		case "i8":
			return schema.ArgI8
		case "i16":
			return schema.ArgI16
		case "i32":
			return schema.ArgI32
		case "i64":
			return schema.ArgI64
		case "i128":
			return schema.ArgI128
		case "bool":
			return schema.ArgBool
		case "pubkey", "Pubkey", "publicKey":
			return schema.ArgPubkey
		case "bytes":
			return schema.ArgBytes
		default:
			return schema.ArgString
		}
	case t.Option != nil:
		return argType(t.Option)
	case t.Vec != nil:
		if t.Vec.Primitive == "u8" {
			return schema.ArgBytes
		}
		return schema.ArgString
	case t.Array != nil:
		if t.Array.Primitive == "u8" {
			return schema.ArgBytes
		}
		return schema.ArgString
	default:
		return schema.ArgString
	}
}
