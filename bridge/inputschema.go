package bridge

import (
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/toolwire/codec"
	"github.com/jonwraymond/toolwire/schema"
)

// toMCPTool converts a decoded discovery tool into the MCP tool shape.
// Account references become string properties with a solana-pubkey format
// and x-is-signer/x-is-writable extensions, so an agent knows which inputs
// must sign and which are written.
func toMCPTool(t *codec.Tool) mcp.Tool {
	properties := make(map[string]any, len(t.Params))
	required := make([]string, 0, len(t.Params))

	for _, p := range t.Params {
		properties[p.Name] = paramProperty(p)
		required = append(required, p.Name)
	}

	inputSchema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		inputSchema["required"] = required
	}

	return mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: inputSchema,
	}
}

func paramProperty(p schema.Param) map[string]any {
	var props map[string]any
	switch p.Type {
	case schema.ArgPubkey:
		props = map[string]any{
			"type":          "string",
			"format":        "solana-pubkey",
			"x-is-signer":   p.Signer,
			"x-is-writable": p.Writable,
		}
	case schema.ArgU8, schema.ArgU16, schema.ArgU32, schema.ArgU64, schema.ArgU128:
		props = map[string]any{
			"type":    "integer",
			"minimum": 0,
		}
	case schema.ArgI8, schema.ArgI16, schema.ArgI32, schema.ArgI64, schema.ArgI128:
		props = map[string]any{
			"type": "integer",
		}
	case schema.ArgBool:
		props = map[string]any{
			"type": "boolean",
		}
	case schema.ArgBytes:
		props = map[string]any{
			"type":            "string",
			"contentEncoding": "base64",
		}
	default:
		props = map[string]any{
			"type": "string",
		}
	}

	if p.Type == schema.ArgU64 {
		props["maximum"] = uint64(math.MaxUint64)
	}
	if p.Description != "" {
		props["description"] = p.Description
	}
	return props
}
