package schema

import (
	"errors"
	"testing"

	"github.com/jonwraymond/toolwire/sighash"
)

func TestParseArgType(t *testing.T) {
	tests := []struct {
		token string
		want  ArgType
	}{
		{"u8", ArgU8},
		{"u16", ArgU16},
		{"u32", ArgU32},
		{"u64", ArgU64},
		{"int", ArgU64},
		{"u128", ArgU128},
		{"i8", ArgI8},
		{"i64", ArgI64},
		{"i128", ArgI128},
		{"bool", ArgBool},
		{"pubkey", ArgPubkey},
		{"str", ArgString},
		{"bytes", ArgBytes},
	}

	for _, tt := range tests {
		got, err := ParseArgType(tt.token)
		if err != nil {
			t.Errorf("ParseArgType(%q) error: %v", tt.token, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseArgType(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestParseArgTypeUnknown(t *testing.T) {
	for _, token := range []string{"", "u256", "float", "Pubkey", "string"} {
		if _, err := ParseArgType(token); !errors.Is(err, ErrUnknownType) {
			t.Errorf("ParseArgType(%q) error = %v, want ErrUnknownType", token, err)
		}
	}
}

func TestCompactToken(t *testing.T) {
	if got := ArgU64.CompactToken(); got != "int" {
		t.Errorf("ArgU64.CompactToken() = %q, want %q", got, "int")
	}
	if got := ArgU32.CompactToken(); got != "u32" {
		t.Errorf("ArgU32.CompactToken() = %q, want %q", got, "u32")
	}
	if got := ArgU64.Token(); got != "u64" {
		t.Errorf("ArgU64.Token() = %q, want %q", got, "u64")
	}
}

func TestParamSuffix(t *testing.T) {
	tests := []struct {
		signer, writable bool
		want             string
	}{
		{false, false, ""},
		{true, false, "_s"},
		{false, true, "_w"},
		{true, true, "_sw"},
	}

	for _, tt := range tests {
		p := Param{Name: "acct", Type: ArgPubkey, Signer: tt.signer, Writable: tt.writable}
		if got := p.Suffix(); got != tt.want {
			t.Errorf("Suffix(signer=%v, writable=%v) = %q, want %q", tt.signer, tt.writable, got, tt.want)
		}
		if got := p.CompactKey(); got != "acct"+tt.want {
			t.Errorf("CompactKey = %q, want %q", got, "acct"+tt.want)
		}
	}
}

func TestCompactKeyNonPubkey(t *testing.T) {
	// Value arguments never carry a suffix regardless of flags on the wire.
	p := Param{Name: "amount", Type: ArgU64}
	if got := p.CompactKey(); got != "amount" {
		t.Errorf("CompactKey = %q, want %q", got, "amount")
	}
}

func TestSplitSuffix(t *testing.T) {
	tests := []struct {
		key              string
		base             string
		signer, writable bool
	}{
		{"counter_w", "counter", false, true},
		{"authority_s", "authority", true, false},
		{"payer_sw", "payer", true, true},
		{"amount", "amount", false, false},
		// _sw must win over a trailing _w match.
		{"from_sw", "from", true, true},
	}

	for _, tt := range tests {
		base, signer, writable := SplitSuffix(tt.key)
		if base != tt.base || signer != tt.signer || writable != tt.writable {
			t.Errorf("SplitSuffix(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.key, base, signer, writable, tt.base, tt.signer, tt.writable)
		}
	}
}

func TestToolBuilder(t *testing.T) {
	tool, err := NewTool("transfer").
		Description("Transfer tokens").
		SignerWritable("from").
		Writable("to").
		Arg("amount", ArgU64).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if tool.Name != "transfer" {
		t.Errorf("Name = %q", tool.Name)
	}
	if tool.Discriminator != sighash.Instruction("transfer") {
		t.Errorf("Discriminator = %s, want derived value", tool.Discriminator)
	}
	if len(tool.Params) != 3 {
		t.Fatalf("Params = %d, want 3", len(tool.Params))
	}

	keys := tool.CompactKeys()
	want := []string{"from_sw", "to_w", "amount"}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("CompactKeys[%d] = %q, want %q", i, keys[i], k)
		}
	}
}

func TestToolBuilderRejectsDuplicateParam(t *testing.T) {
	_, err := NewTool("t").Writable("acct").Signer("acct").Build()
	if !errors.Is(err, ErrDuplicateParam) {
		t.Errorf("error = %v, want ErrDuplicateParam", err)
	}
}

func TestToolBuilderRejectsSuffixName(t *testing.T) {
	for _, name := range []string{"counter_w", "authority_s", "payer_sw"} {
		_, err := NewTool("t").Writable(name).Build()
		if !errors.Is(err, ErrSuffixName) {
			t.Errorf("Writable(%q) error = %v, want ErrSuffixName", name, err)
		}
	}
}

func TestToolBuilderRejectsFlagsOnValue(t *testing.T) {
	tool := Tool{
		Name:          "t",
		Discriminator: sighash.Instruction("t"),
		Params:        []Param{{Name: "amount", Type: ArgU64, Writable: true}},
	}
	if err := tool.Validate(); !errors.Is(err, ErrFlagsOnValue) {
		t.Errorf("error = %v, want ErrFlagsOnValue", err)
	}
}

func TestToolOrderValidation(t *testing.T) {
	base := func() *ToolBuilder {
		return NewTool("increment").
			Writable("counter").
			Signer("authority").
			Arg("amount", ArgU64)
	}

	if _, err := base().Order("counter_w", "authority_s", "amount").Build(); err != nil {
		t.Errorf("valid order rejected: %v", err)
	}
	// Subset is allowed.
	if _, err := base().Order("amount").Build(); err != nil {
		t.Errorf("subset order rejected: %v", err)
	}
	if _, err := base().Order("missing").Build(); !errors.Is(err, ErrBadOrder) {
		t.Error("undeclared key accepted")
	}
	if _, err := base().Order("amount", "amount").Build(); !errors.Is(err, ErrBadOrder) {
		t.Error("repeated key accepted")
	}
	// Order uses compact keys, not base names.
	if _, err := base().Order("counter").Build(); !errors.Is(err, ErrBadOrder) {
		t.Error("base name accepted where compact key required")
	}
}

func TestReservedCollisionRejected(t *testing.T) {
	tool := Tool{
		Name:          "impostor",
		Discriminator: sighash.ListTools,
	}
	if err := tool.Validate(); !errors.Is(err, ErrReservedCollision) {
		t.Errorf("error = %v, want ErrReservedCollision", err)
	}

	// The discovery tool itself legitimately owns the reserved value.
	lt, err := NewTool(DiscoveryToolName).Description("List available tools").Build()
	if err != nil {
		t.Fatalf("list_tools rejected: %v", err)
	}
	if !lt.Discriminator.IsReserved() {
		t.Error("list_tools discriminator is not the reserved constant")
	}
}

func TestSchemaBuilder(t *testing.T) {
	s, err := New("counter").
		MustTool(NewTool("initialize").
			SignerWritable("counter").
			Signer("authority")).
		MustTool(NewTool("increment").
			Writable("counter").
			Signer("authority").
			Arg("amount", ArgU64)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if s.Version != Version {
		t.Errorf("Version = %q, want %q", s.Version, Version)
	}
	if s.Name != "counter" {
		t.Errorf("Name = %q", s.Name)
	}
	if len(s.Tools) != 2 {
		t.Fatalf("Tools = %d, want 2", len(s.Tools))
	}

	inc, ok := s.Tool("increment")
	if !ok {
		t.Fatal("Tool(increment) not found")
	}
	if inc.Discriminator.Hex() != "0b12680968ae3b21" {
		t.Errorf("increment discriminator = %s", inc.Discriminator.Hex())
	}
}

func TestSchemaBuilderDuplicateTool(t *testing.T) {
	_, err := New("p").
		MustTool(NewTool("a")).
		MustTool(NewTool("a")).
		Build()
	if !errors.Is(err, ErrDuplicateTool) {
		t.Errorf("error = %v, want ErrDuplicateTool", err)
	}
}

func TestSchemaBuilderPropagatesToolError(t *testing.T) {
	_, err := New("p").
		MustTool(NewTool("t").Writable("acct_sw")).
		Build()
	if !errors.Is(err, ErrSuffixName) {
		t.Errorf("error = %v, want ErrSuffixName", err)
	}
}

func TestSchemaImmutableCopies(t *testing.T) {
	tb := NewTool("t").Arg("a", ArgU64)
	tool, err := tb.Build()
	if err != nil {
		t.Fatal(err)
	}
	// Mutating the builder after Build must not alias the built tool.
	tb.Arg("b", ArgU32)
	if len(tool.Params) != 1 {
		t.Errorf("built tool aliased builder state: %d params", len(tool.Params))
	}
}
