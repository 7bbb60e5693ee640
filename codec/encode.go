package codec

import (
	"strconv"

	"github.com/jonwraymond/toolwire/schema"
)

// EncodeCompact serializes the whole schema as one compact document:
//
//	{"v":"2024-11-05","name":"counter","tools":[{"n":...,"d":...,...}]}
//
// The output is deterministic byte for byte: object keys follow parameter
// declaration order and optional fields are omitted rather than emitted
// empty. The compact form is the one measured against the byte budget.
func EncodeCompact(s *schema.Schema) []byte {
	buf := make([]byte, 0, 512)
	buf = appendHeader(buf, s)
	for i := range s.Tools {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendCompactTool(buf, &s.Tools[i])
	}
	buf = append(buf, ']', '}')
	return buf
}

// EncodePage serializes one page of the paginated form: exactly the tool at
// position cursor, in the extended parameter form, plus a nextCursor marker
// unless this is the last page. A cursor at or beyond the tool count yields
// an empty tools array with no nextCursor, the same terminal shape a caller
// sees after the last page.
func EncodePage(s *schema.Schema, cursor uint8) []byte {
	buf := make([]byte, 0, 512)
	buf = appendHeader(buf, s)

	idx := int(cursor)
	if idx < len(s.Tools) {
		buf = appendExtendedTool(buf, &s.Tools[idx])
	}
	buf = append(buf, ']')

	if idx+1 < len(s.Tools) {
		buf = append(buf, `,"nextCursor":"`...)
		buf = strconv.AppendInt(buf, int64(idx+1), 10)
		buf = append(buf, '"')
	}

	buf = append(buf, '}')
	return buf
}

func appendHeader(buf []byte, s *schema.Schema) []byte {
	buf = append(buf, `{"v":"`...)
	buf = appendEscaped(buf, version(s))
	buf = append(buf, `","name":"`...)
	buf = appendEscaped(buf, s.Name)
	buf = append(buf, `","tools":[`...)
	return buf
}

func version(s *schema.Schema) string {
	if s.Version != "" {
		return s.Version
	}
	return schema.Version
}

// appendCompactTool writes {"n":...,"i":...?,"d":...,"p":{...}?,"r":[...]?}.
// p and r are omitted together for parameterless tools.
func appendCompactTool(buf []byte, t *schema.Tool) []byte {
	buf = append(buf, `{"n":"`...)
	buf = appendEscaped(buf, t.Name)
	buf = append(buf, '"')

	if t.Description != "" {
		buf = append(buf, `,"i":"`...)
		buf = appendEscaped(buf, t.Description)
		buf = append(buf, '"')
	}

	buf = append(buf, `,"d":"`...)
	buf = append(buf, t.Discriminator.Hex()...)
	buf = append(buf, '"')

	if len(t.Params) == 0 {
		return append(buf, '}')
	}

	buf = append(buf, `,"p":{`...)
	for i, p := range t.Params {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = appendEscaped(buf, p.CompactKey())
		buf = append(buf, `":"`...)
		buf = append(buf, p.Type.CompactToken()...)
		buf = append(buf, '"')
	}

	buf = append(buf, `},"r":[`...)
	for i, key := range t.CompactKeys() {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = appendEscaped(buf, key)
		buf = append(buf, '"')
	}
	return append(buf, ']', '}')
}

// appendExtendedTool writes the verbose one-tool-per-page form with full
// field names, explicit flag booleans, and parameter descriptions.
func appendExtendedTool(buf []byte, t *schema.Tool) []byte {
	buf = append(buf, `{"name":"`...)
	buf = appendEscaped(buf, t.Name)
	buf = append(buf, '"')

	if t.Description != "" {
		buf = append(buf, `,"description":"`...)
		buf = appendEscaped(buf, t.Description)
		buf = append(buf, '"')
	}

	buf = append(buf, `,"discriminator":"`...)
	buf = append(buf, t.Discriminator.Hex()...)
	buf = append(buf, '"')

	if len(t.Params) == 0 {
		return append(buf, '}')
	}

	buf = append(buf, `,"parameters":{`...)
	for i, p := range t.Params {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = appendEscaped(buf, p.Name)
		buf = append(buf, `":{"type":"`...)
		buf = append(buf, p.Type.Token()...)
		buf = append(buf, '"')
		if p.Signer {
			buf = append(buf, `,"signer":true`...)
		}
		if p.Writable {
			buf = append(buf, `,"writable":true`...)
		}
		if p.Description != "" {
			buf = append(buf, `,"description":"`...)
			buf = appendEscaped(buf, p.Description)
			buf = append(buf, '"')
		}
		buf = append(buf, '}')
	}
	return append(buf, '}', '}')
}

// appendEscaped writes s with JSON string escaping for quotes, backslashes,
// and the control characters that appear in practice.
func appendEscaped(buf []byte, s string) []byte {
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			buf = append(buf, string(r)...)
		}
	}
	return buf
}
