package codec

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/toolwire/schema"
)

// Limit is the hard ceiling on a single discovery response, matching the
// transport's return-data window. Both the compact document and every
// individual page must fit under it.
const Limit = 1024

// ErrBudgetExceeded reports a document or page that cannot fit in Limit
// bytes.
var ErrBudgetExceeded = errors.New("codec: response exceeds byte budget")

// Mode selects how a schema is served.
type Mode int

const (
	// ModeAuto serves compact when the whole schema fits, paginated
	// otherwise.
	ModeAuto Mode = iota

	// ModeCompact always serves the single compact document.
	ModeCompact

	// ModePaginated always serves one tool per page.
	ModePaginated
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeCompact:
		return "compact"
	case ModePaginated:
		return "paginated"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// CompactSize reports the exact serialized length of the compact form. It is
// a measurement, not an estimate, so budget decisions never drift from what
// the encoder actually produces.
func CompactSize(s *schema.Schema) int {
	return len(EncodeCompact(s))
}

// Fits reports whether the compact form stays within the byte budget.
func Fits(s *schema.Schema) bool {
	return CompactSize(s) <= Limit
}

// Plan resolves ModeAuto against the schema's measured size. ModeCompact and
// ModePaginated pass through unchanged.
func Plan(s *schema.Schema, m Mode) Mode {
	if m != ModeAuto {
		return m
	}
	if Fits(s) {
		return ModeCompact
	}
	return ModePaginated
}

// Pages holds every paginated response for a schema, rendered once. Serving
// a page is then a slice lookup with no allocation.
type Pages struct {
	pages    [][]byte
	terminal []byte
}

// NewPages renders all pages up front. A schema with no tools still yields
// one page, the empty-tools terminal document. NewPages fails if any single
// page exceeds the byte budget or if the schema has more tools than a
// one-byte cursor can address.
func NewPages(s *schema.Schema) (*Pages, error) {
	if len(s.Tools) > 256 {
		return nil, fmt.Errorf("%w: %d tools exceed cursor range", ErrBudgetExceeded, len(s.Tools))
	}
	n := len(s.Tools)
	if n == 0 {
		n = 1
	}
	p := &Pages{pages: make([][]byte, n)}
	for i := 0; i < n; i++ {
		page := EncodePage(s, uint8(i))
		if len(page) > Limit {
			return nil, fmt.Errorf("%w: page %d is %d bytes", ErrBudgetExceeded, i, len(page))
		}
		p.pages[i] = page
	}
	terminal := appendHeader(make([]byte, 0, 64), s)
	p.terminal = append(terminal, ']', '}')
	return p, nil
}

// Len reports the number of real pages.
func (p *Pages) Len() int {
	return len(p.pages)
}

// Page returns the rendered page for cursor. Cursors past the end return the
// terminal empty-tools document, the same bytes a fresh encode would
// produce. The returned slice is shared; callers must not modify it.
func (p *Pages) Page(cursor uint8) []byte {
	if int(cursor) < len(p.pages) {
		return p.pages[cursor]
	}
	return p.terminal
}
