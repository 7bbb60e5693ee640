package client

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/jonwraymond/toolwire/codec"
	"github.com/jonwraymond/toolwire/schema"
	"github.com/jonwraymond/toolwire/sighash"
)

var (
	// ErrToolNotFound reports a call against a tool the schema does not
	// declare.
	ErrToolNotFound = errors.New("client: tool not found")

	// ErrMissingParam reports a required parameter the caller did not
	// supply.
	ErrMissingParam = errors.New("client: missing parameter")

	// ErrInvalidArg reports an argument value that does not parse as its
	// declared type.
	ErrInvalidArg = errors.New("client: invalid argument")

	// ErrNoReturnData is returned by Simulator implementations when the
	// program produced no response.
	ErrNoReturnData = errors.New("client: no return data")
)

// maxPages bounds a full-schema walk so a buggy or hostile program cannot
// hold the client in a cursor loop.
const maxPages = 100

// Simulator executes a read-only call against a program and returns its raw
// return data. Implementations wrap whatever transport reaches the runtime;
// the client itself never talks to a network.
type Simulator interface {
	Simulate(ctx context.Context, program string, data []byte) ([]byte, error)
}

// AccountMeta is one account reference in a built call.
type AccountMeta struct {
	Address  string
	Signer   bool
	Writable bool
}

// Call is a fully assembled invocation: the target program, the accounts it
// touches, and the serialized instruction data.
type Call struct {
	Program  string
	Accounts []AccountMeta
	Data     []byte
}

// Client discovers tools and builds calls against them.
type Client struct {
	sim Simulator
}

// New returns a client that reaches programs through sim.
func New(sim Simulator) *Client {
	return &Client{sim: sim}
}

// ListTools fetches the first page of a program's schema. Compact schemas
// arrive whole; paginated schemas need ListToolsAll for the full picture.
func (c *Client) ListTools(ctx context.Context, program string) (*codec.Document, error) {
	return c.ListToolsPage(ctx, program, 0)
}

// ListToolsPage fetches one page by cursor.
func (c *Client) ListToolsPage(ctx context.Context, program string, cursor uint8) (*codec.Document, error) {
	data := append([]byte(nil), sighash.ListTools[:]...)
	if cursor > 0 {
		data = append(data, cursor)
	}

	raw, err := c.sim.Simulate(ctx, program, data)
	if err != nil {
		return nil, fmt.Errorf("list_tools page %d: %w", cursor, err)
	}
	doc, err := codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("list_tools page %d: %w", cursor, err)
	}
	return doc, nil
}

// ListToolsAll walks every page and merges the tools into one document. A
// compact schema returns after the single fetch.
func (c *Client) ListToolsAll(ctx context.Context, program string) (*codec.Document, error) {
	doc, err := c.ListToolsPage(ctx, program, 0)
	if err != nil {
		return nil, err
	}

	for fetched := 1; fetched < maxPages; fetched++ {
		cursor, ok, err := doc.Cursor()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		page, err := c.ListToolsPage(ctx, program, cursor)
		if err != nil {
			return nil, err
		}
		doc.Tools = append(doc.Tools, page.Tools...)
		doc.NextCursor = page.NextCursor
	}
	doc.NextCursor = ""
	return doc, nil
}

// BuildCall assembles an invocation of the named tool. Account addresses
// and argument values are looked up by parameter base name; parameters are
// serialized in the tool's declared wire order behind the 8-byte
// discriminator.
func (c *Client) BuildCall(doc *codec.Document, program, toolName string, accounts map[string]string, args map[string]string) (*Call, error) {
	tool := doc.Tool(toolName)
	if tool == nil {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, toolName)
	}

	call := &Call{
		Program: program,
		Data:    append([]byte(nil), tool.Discriminator[:]...),
	}

	for _, key := range tool.Order {
		base, _, _ := schema.SplitSuffix(key)
		p := tool.Param(base)
		if p == nil {
			p = tool.Param(key)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: order key %q has no parameter", ErrInvalidArg, key)
		}

		if p.Type == schema.ArgPubkey {
			addr, ok := lookup(accounts, p.Name, key)
			if !ok {
				return nil, fmt.Errorf("%w: account %q", ErrMissingParam, p.Name)
			}
			call.Accounts = append(call.Accounts, AccountMeta{
				Address:  addr,
				Signer:   p.Signer,
				Writable: p.Writable,
			})
			continue
		}

		value, ok := lookup(args, p.Name, key)
		if !ok {
			return nil, fmt.Errorf("%w: argument %q", ErrMissingParam, p.Name)
		}
		data, err := appendArg(call.Data, p.Type, value)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", p.Name, err)
		}
		call.Data = data
	}

	return call, nil
}

func lookup(m map[string]string, base, key string) (string, bool) {
	if v, ok := m[base]; ok {
		return v, true
	}
	v, ok := m[key]
	return v, ok
}

// appendArg serializes one argument value in little-endian layout. Strings
// and byte blobs carry a u32 length prefix; bytes values are supplied as
// standard base64.
func appendArg(data []byte, t schema.ArgType, value string) ([]byte, error) {
	switch t {
	case schema.ArgU8, schema.ArgU16, schema.ArgU32, schema.ArgU64:
		bits := map[schema.ArgType]int{
			schema.ArgU8: 8, schema.ArgU16: 16, schema.ArgU32: 32, schema.ArgU64: 64,
		}[t]
		v, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as %s", ErrInvalidArg, value, t.Token())
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		return append(data, buf[:bits/8]...), nil

	case schema.ArgI8, schema.ArgI16, schema.ArgI32, schema.ArgI64:
		bits := map[schema.ArgType]int{
			schema.ArgI8: 8, schema.ArgI16: 16, schema.ArgI32: 32, schema.ArgI64: 64,
		}[t]
		v, err := strconv.ParseInt(value, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as %s", ErrInvalidArg, value, t.Token())
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		return append(data, buf[:bits/8]...), nil

	case schema.ArgU128, schema.ArgI128:
		return appendBig(data, t, value)

	case schema.ArgBool:
		switch value {
		case "true", "1":
			return append(data, 1), nil
		case "false", "0":
			return append(data, 0), nil
		}
		return nil, fmt.Errorf("%w: %q as bool", ErrInvalidArg, value)

	case schema.ArgString:
		data = binary.LittleEndian.AppendUint32(data, uint32(len(value)))
		return append(data, value...), nil

	case schema.ArgBytes:
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as base64 bytes", ErrInvalidArg, value)
		}
		data = binary.LittleEndian.AppendUint32(data, uint32(len(decoded)))
		return append(data, decoded...), nil

	default:
		return nil, fmt.Errorf("%w: unsupported type %s", ErrInvalidArg, t.Token())
	}
}

// appendBig writes a 128-bit integer as 16 little-endian bytes, two's
// complement for the signed case.
func appendBig(data []byte, t schema.ArgType, value string) ([]byte, error) {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q as %s", ErrInvalidArg, value, t.Token())
	}

	lo := new(big.Int)
	hi := new(big.Int).Lsh(big.NewInt(1), 128)
	if t == schema.ArgI128 {
		lo.Neg(new(big.Int).Lsh(big.NewInt(1), 127))
		hi.Rsh(hi, 1)
	}
	if n.Cmp(lo) < 0 || n.Cmp(hi) >= 0 {
		return nil, fmt.Errorf("%w: %q out of range for %s", ErrInvalidArg, value, t.Token())
	}

	if n.Sign() < 0 {
		n.Add(n, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	var buf [16]byte
	n.FillBytes(buf[:])
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return append(data, buf[:]...), nil
}
