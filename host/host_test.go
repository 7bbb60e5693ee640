package host

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jonwraymond/toolwire/codec"
	"github.com/jonwraymond/toolwire/schema"
	"github.com/jonwraymond/toolwire/sighash"
)

func listToolsRequest(cursor uint8) []byte {
	data := append([]byte(nil), sighash.ListTools[:]...)
	if cursor > 0 {
		data = append(data, cursor)
	}
	return data
}

func smallSchema(t testing.TB) *schema.Schema {
	t.Helper()
	s, err := schema.New("counter").
		MustTool(schema.NewTool("increment").
			Writable("counter").
			Signer("authority").
			Arg("amount", schema.ArgU64)).
		MustTool(schema.NewTool("reset").Writable("counter").Signer("authority")).
		Build()
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return s
}

func TestIsListTools(t *testing.T) {
	if !IsListTools(listToolsRequest(0)) {
		t.Error("discovery request not recognized")
	}
	if !IsListTools(listToolsRequest(3)) {
		t.Error("discovery request with cursor not recognized")
	}
	if IsListTools(sighash.ListTools[:7]) {
		t.Error("short data must not match")
	}

	other := sighash.Instruction("increment")
	if IsListTools(other[:]) {
		t.Error("foreign discriminator must not match")
	}
}

func TestCursor(t *testing.T) {
	if got := Cursor(listToolsRequest(0)); got != 0 {
		t.Errorf("bare request cursor = %d", got)
	}
	if got := Cursor(listToolsRequest(7)); got != 7 {
		t.Errorf("cursor = %d, want 7", got)
	}
	if got := Cursor(append(listToolsRequest(7), 0xFF)); got != 7 {
		t.Errorf("trailing bytes changed cursor to %d", got)
	}
}

func TestMatches(t *testing.T) {
	disc := sighash.Instruction("increment")
	payload := append(disc[:], 1, 2, 3)
	if !Matches(payload, "increment") {
		t.Error("increment request not matched")
	}
	if Matches(payload, "decrement") {
		t.Error("wrong name matched")
	}
	if Matches(payload[:5], "increment") {
		t.Error("short data matched")
	}
}

func TestDiscriminator(t *testing.T) {
	disc, err := Discriminator(listToolsRequest(0))
	if err != nil || !disc.IsReserved() {
		t.Errorf("Discriminator() = %s, %v", disc, err)
	}
	if _, err := Discriminator([]byte{1, 2}); !errors.Is(err, ErrShortRequest) {
		t.Errorf("short request error = %v", err)
	}
}

func TestResponderCompact(t *testing.T) {
	s := smallSchema(t)
	r, err := NewResponder(s, codec.ModeAuto)
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}
	if r.Mode() != codec.ModeCompact {
		t.Fatalf("mode = %v, want compact", r.Mode())
	}

	got, err := r.Respond(listToolsRequest(0))
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !bytes.Equal(got, codec.EncodeCompact(s)) {
		t.Error("compact response differs from direct encode")
	}
	if len(got) > codec.Limit {
		t.Errorf("response is %d bytes", len(got))
	}
}

func TestResponderPaginated(t *testing.T) {
	s := smallSchema(t)
	r, err := NewResponder(s, codec.ModePaginated)
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}

	page0, err := r.Respond(listToolsRequest(0))
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	doc, err := codec.Decode(page0)
	if err != nil {
		t.Fatalf("decode page 0: %v", err)
	}
	if len(doc.Tools) != 1 || doc.Tools[0].Name != "increment" {
		t.Errorf("page 0 tools = %+v", doc.Tools)
	}
	if doc.NextCursor != "1" {
		t.Errorf("nextCursor = %q", doc.NextCursor)
	}

	page1, err := r.Respond(listToolsRequest(1))
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	doc, err = codec.Decode(page1)
	if err != nil {
		t.Fatalf("decode page 1: %v", err)
	}
	if len(doc.Tools) != 1 || doc.Tools[0].Name != "reset" {
		t.Errorf("page 1 tools = %+v", doc.Tools)
	}
	if doc.NextCursor != "" {
		t.Errorf("last page nextCursor = %q", doc.NextCursor)
	}

	beyond, err := r.Respond(listToolsRequest(42))
	if err != nil {
		t.Fatalf("page 42: %v", err)
	}
	doc, err = codec.Decode(beyond)
	if err != nil {
		t.Fatalf("decode terminal page: %v", err)
	}
	if len(doc.Tools) != 0 || doc.NextCursor != "" {
		t.Errorf("terminal page = %+v", doc)
	}
}

func TestResponderRejectsNonDiscovery(t *testing.T) {
	r, err := NewResponder(smallSchema(t), codec.ModeAuto)
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}
	disc := sighash.Instruction("increment")
	if _, err := r.Respond(disc[:]); !errors.Is(err, ErrNotDiscovery) {
		t.Errorf("Respond(increment) error = %v", err)
	}
}

func TestResponderCompactOverBudget(t *testing.T) {
	b := schema.New("wide")
	for i := 0; i < 12; i++ {
		b.MustTool(schema.NewTool("operation_" + strings.Repeat("x", 10) + string(rune('a'+i))).
			Description(strings.Repeat("long description ", 4)).
			Writable("state").
			Arg("amount", schema.ArgU64))
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	if _, err := NewResponder(s, codec.ModeCompact); !errors.Is(err, codec.ErrBudgetExceeded) {
		t.Errorf("forced compact error = %v", err)
	}

	r, err := NewResponder(s, codec.ModeAuto)
	if err != nil {
		t.Fatalf("auto mode: %v", err)
	}
	if r.Mode() != codec.ModePaginated {
		t.Errorf("auto resolved to %v", r.Mode())
	}
}

func TestResponderConcurrent(t *testing.T) {
	r, err := NewResponder(smallSchema(t), codec.ModePaginated)
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		cursor := uint8(i % 3)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Respond(listToolsRequest(cursor)); err != nil {
				t.Errorf("Respond(%d): %v", cursor, err)
			}
		}()
	}
	wg.Wait()
}

func BenchmarkRespondCompact(b *testing.B) {
	r, err := NewResponder(smallSchema(b), codec.ModeCompact)
	if err != nil {
		b.Fatalf("NewResponder: %v", err)
	}
	req := listToolsRequest(0)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := r.Respond(req); err != nil {
			b.Fatal(err)
		}
	}
}
