package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jonwraymond/toolwire/schema"
	"github.com/jonwraymond/toolwire/sighash"
)

var (
	// ErrMalformed reports JSON that does not parse or a document missing a
	// required field.
	ErrMalformed = errors.New("codec: malformed document")

	// ErrBadCursor reports a nextCursor value that is not a small decimal
	// integer.
	ErrBadCursor = errors.New("codec: invalid cursor")
)

// Document is the decoded, normalized form of a discovery response. Both the
// compact and the paginated wire shapes decode into the same Document, so
// callers never branch on which form a program happened to serve.
type Document struct {
	Version string
	Name    string
	Tools   []Tool

	// NextCursor is the raw pagination marker, empty when the document is
	// compact or is the last page.
	NextCursor string
}

// Tool is one decoded tool. Params preserves wire order with suffix flags
// already folded into the Signer and Writable fields.
type Tool struct {
	Name          string
	Description   string
	Discriminator sighash.Discriminator
	Params        []schema.Param

	// Order lists the compact keys in the order the document declared them
	// required, defaulting to parameter order when the document carried no
	// explicit list.
	Order []string
}

// Param returns the parameter with the given base name, or nil.
func (t *Tool) Param(name string) *schema.Param {
	for i := range t.Params {
		if t.Params[i].Name == name {
			return &t.Params[i]
		}
	}
	return nil
}

// Tool returns the named tool, or nil.
func (d *Document) Tool(name string) *Tool {
	for i := range d.Tools {
		if d.Tools[i].Name == name {
			return &d.Tools[i]
		}
	}
	return nil
}

// Cursor parses NextCursor as a page index. ok is false when the document
// has no next page.
func (d *Document) Cursor() (cursor uint8, ok bool, err error) {
	if d.NextCursor == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(d.NextCursor, 10, 8)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrBadCursor, d.NextCursor)
	}
	return uint8(n), true, nil
}

type wireDocument struct {
	Version    string            `json:"v"`
	Name       string            `json:"name"`
	Tools      []json.RawMessage `json:"tools"`
	NextCursor string            `json:"nextCursor"`
}

type wireTool struct {
	N             string          `json:"n"`
	Name          string          `json:"name"`
	I             string          `json:"i"`
	Description   string          `json:"description"`
	D             string          `json:"d"`
	Discriminator string          `json:"discriminator"`
	P             json.RawMessage `json:"p"`
	Parameters    json.RawMessage `json:"parameters"`
	R             []string        `json:"r"`
}

type wireParam struct {
	Type        string `json:"type"`
	Signer      bool   `json:"signer"`
	Writable    bool   `json:"writable"`
	Description string `json:"description"`
}

// Decode parses a discovery response in either wire form. Unknown fields are
// ignored so a newer encoder does not break an older reader; a missing tool
// name or discriminator, a bad discriminator, or an unknown type token is a
// hard error.
func Decode(data []byte) (*Document, error) {
	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := &Document{
		Version:    wire.Version,
		Name:       wire.Name,
		NextCursor: wire.NextCursor,
		Tools:      make([]Tool, 0, len(wire.Tools)),
	}
	for i, raw := range wire.Tools {
		tool, err := decodeTool(raw)
		if err != nil {
			return nil, fmt.Errorf("tool %d: %w", i, err)
		}
		doc.Tools = append(doc.Tools, tool)
	}
	return doc, nil
}

func decodeTool(raw json.RawMessage) (Tool, error) {
	var wire wireTool
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Tool{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	name := wire.Name
	if name == "" {
		name = wire.N
	}
	if name == "" {
		return Tool{}, fmt.Errorf("%w: tool has no name", ErrMalformed)
	}

	hexDisc := wire.Discriminator
	if hexDisc == "" {
		hexDisc = wire.D
	}
	if hexDisc == "" {
		return Tool{}, fmt.Errorf("%w: tool %q has no discriminator", ErrMalformed, name)
	}
	disc, err := sighash.ParseHex(hexDisc)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %q: %w", name, err)
	}

	desc := wire.Description
	if desc == "" {
		desc = wire.I
	}

	rawParams := wire.Parameters
	if rawParams == nil {
		rawParams = wire.P
	}
	params, err := decodeParams(rawParams)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %q: %w", name, err)
	}

	order := wire.R
	if order == nil {
		order = make([]string, 0, len(params))
		for _, p := range params {
			order = append(order, p.CompactKey())
		}
	}

	return Tool{
		Name:          name,
		Description:   desc,
		Discriminator: disc,
		Params:        params,
		Order:         order,
	}, nil
}

// decodeParams walks the parameter object token by token so declaration
// order survives the round trip. Each value is either a bare type token
// (compact form, flags encoded in the key suffix) or an object with explicit
// type and flag fields (extended form).
func decodeParams(raw json.RawMessage) ([]schema.Param, error) {
	if raw == nil {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: parameters is not an object", ErrMalformed)
	}

	var params []schema.Param
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string parameter key", ErrMalformed)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		p, err := decodeParam(key, value)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func decodeParam(key string, value json.RawMessage) (schema.Param, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return schema.Param{}, fmt.Errorf("%w: empty value for %q", ErrMalformed, key)
	}

	if trimmed[0] == '"' {
		// Compact form: the value is the type token itself.
		var token string
		if err := json.Unmarshal(trimmed, &token); err != nil {
			return schema.Param{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		at, err := schema.ParseArgType(token)
		if err != nil {
			return schema.Param{}, fmt.Errorf("parameter %q: %w", key, err)
		}
		p := schema.Param{Name: key, Type: at}
		if at == schema.ArgPubkey {
			p.Name, p.Signer, p.Writable = schema.SplitSuffix(key)
		}
		return p, nil
	}

	var wire wireParam
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return schema.Param{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if wire.Type == "" {
		return schema.Param{}, fmt.Errorf("%w: parameter %q has no type", ErrMalformed, key)
	}
	at, err := schema.ParseArgType(wire.Type)
	if err != nil {
		return schema.Param{}, fmt.Errorf("parameter %q: %w", key, err)
	}
	return schema.Param{
		Name:        key,
		Type:        at,
		Signer:      wire.Signer,
		Writable:    wire.Writable,
		Description: wire.Description,
	}, nil
}
