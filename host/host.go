package host

import (
	"bytes"
	"errors"
	"sync"

	"github.com/jonwraymond/toolwire/codec"
	"github.com/jonwraymond/toolwire/schema"
	"github.com/jonwraymond/toolwire/sighash"
)

var (
	// ErrNotDiscovery reports request bytes that do not start with the
	// discovery discriminator.
	ErrNotDiscovery = errors.New("host: not a discovery request")

	// ErrShortRequest reports request bytes shorter than a discriminator.
	ErrShortRequest = errors.New("host: request shorter than 8 bytes")
)

// IsListTools reports whether the request data starts with the reserved
// discovery discriminator.
func IsListTools(data []byte) bool {
	return len(data) >= sighash.Size && bytes.Equal(data[:sighash.Size], sighash.ListTools[:])
}

// Cursor extracts the optional page cursor, the byte after the
// discriminator. A request without one means page zero.
func Cursor(data []byte) uint8 {
	if len(data) > sighash.Size {
		return data[sighash.Size]
	}
	return 0
}

// Matches reports whether the request data routes to the named operation.
func Matches(data []byte, name string) bool {
	return len(data) >= sighash.Size &&
		sighash.Instruction(name) == sighash.Discriminator(data[:sighash.Size])
}

// Discriminator returns the leading 8 request bytes for routing.
func Discriminator(data []byte) (sighash.Discriminator, error) {
	if len(data) < sighash.Size {
		return sighash.Discriminator{}, ErrShortRequest
	}
	return sighash.Discriminator(data[:sighash.Size]), nil
}

// Responder answers discovery requests for one schema. Responses are
// rendered once, on the first request, and reused for every request after.
// A Responder is safe for concurrent use.
type Responder struct {
	schema *schema.Schema
	mode   codec.Mode

	once    sync.Once
	compact []byte
	pages   *codec.Pages
	initErr error
}

// NewResponder validates the schema against the requested mode. ModeCompact
// fails up front when the schema cannot fit one response; ModeAuto resolves
// to compact or paginated based on the measured size.
func NewResponder(s *schema.Schema, mode codec.Mode) (*Responder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	resolved := codec.Plan(s, mode)
	if mode == codec.ModeCompact && !codec.Fits(s) {
		return nil, codec.ErrBudgetExceeded
	}
	return &Responder{schema: s, mode: resolved}, nil
}

// Mode reports the resolved serving mode.
func (r *Responder) Mode() codec.Mode {
	return r.mode
}

// Respond handles one discovery request and returns the response bytes. The
// returned slice is shared; callers must not modify it.
func (r *Responder) Respond(data []byte) ([]byte, error) {
	if !IsListTools(data) {
		return nil, ErrNotDiscovery
	}

	r.once.Do(r.render)
	if r.initErr != nil {
		return nil, r.initErr
	}

	if r.mode == codec.ModeCompact {
		return r.compact, nil
	}
	return r.pages.Page(Cursor(data)), nil
}

func (r *Responder) render() {
	if r.mode == codec.ModeCompact {
		r.compact = codec.EncodeCompact(r.schema)
		return
	}
	r.pages, r.initErr = codec.NewPages(r.schema)
}
