package anchoridl

import (
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/toolwire/schema"
)

const sampleIDL = `{
	"version": "0.1.0",
	"name": "counter",
	"metadata": {"address": "Ctr111"},
	"instructions": [
		{
			"name": "initialize",
			"docs": ["Initialize a new counter account"],
			"accounts": [
				{"name": "counter", "isMut": true, "isSigner": true},
				{"name": "authority", "isMut": false, "isSigner": true},
				{"name": "systemProgram", "isMut": false, "isSigner": false}
			],
			"args": []
		},
		{
			"name": "increment",
			"docs": ["Increment the counter by amount"],
			"accounts": [
				{"name": "counter", "isMut": true, "isSigner": false},
				{"name": "authority", "isMut": false, "isSigner": true}
			],
			"args": [
				{"name": "amount", "type": "u64"}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	idl, err := Parse([]byte(sampleIDL))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if idl.Name != "counter" || len(idl.Instructions) != 2 {
		t.Errorf("idl = %q with %d instructions", idl.Name, len(idl.Instructions))
	}
	if idl.Metadata == nil || idl.Metadata.Address != "Ctr111" {
		t.Errorf("metadata = %+v", idl.Metadata)
	}

	if _, err := Parse([]byte(`{"instructions":[]}`)); !errors.Is(err, ErrBadIDL) {
		t.Errorf("nameless IDL error = %v", err)
	}
	if _, err := Parse([]byte(`not json`)); !errors.Is(err, ErrBadIDL) {
		t.Errorf("bad JSON error = %v", err)
	}
}

func TestConvert(t *testing.T) {
	idl, err := Parse([]byte(sampleIDL))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Convert(idl)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if s.Name != "counter" {
		t.Errorf("schema name = %q", s.Name)
	}
	if len(s.Tools) != 3 {
		t.Fatalf("tools = %d, want list_tools + 2 instructions", len(s.Tools))
	}
	if s.Tools[0].Name != schema.DiscoveryToolName {
		t.Errorf("first tool = %q", s.Tools[0].Name)
	}
	if !s.Tools[0].Discriminator.IsReserved() {
		t.Error("discovery tool must keep the reserved discriminator")
	}

	init := s.Tools[1]
	if init.Name != "initialize" || len(init.Params) != 3 {
		t.Errorf("initialize = %+v", init)
	}
	if p, ok := init.Param("counter"); !ok || !p.Signer || !p.Writable {
		t.Errorf("counter account flags = %+v", p)
	}

	inc := s.Tools[2]
	if p, ok := inc.Param("amount"); !ok || p.Type != schema.ArgU64 {
		t.Errorf("amount = %+v", p)
	}
}

func TestConvertCompositeAccounts(t *testing.T) {
	input := `{
		"name": "vault",
		"instructions": [{
			"name": "deposit",
			"accounts": [
				{"name": "vaultGroup", "accounts": [
					{"name": "vault", "isMut": true},
					{"name": "mint"}
				]},
				{"name": "depositor", "isSigner": true}
			],
			"args": [{"name": "amount", "type": "u64"}]
		}]
	}`
	idl, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Convert(idl)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	deposit, ok := s.Tool("deposit")
	if !ok {
		t.Fatal("deposit tool missing")
	}
	if p, ok := deposit.Param("vaultGroup_vault"); !ok || !p.Writable {
		t.Errorf("flattened vault param = %+v", p)
	}
	if _, ok := deposit.Param("vaultGroup_mint"); !ok {
		t.Error("flattened mint param missing")
	}
}

func TestConvertModernFlagSpelling(t *testing.T) {
	input := `{
		"name": "modern",
		"instructions": [{
			"name": "run",
			"accounts": [{"name": "state", "writable": true, "signer": true}],
			"args": []
		}]
	}`
	idl, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Convert(idl)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	run, ok := s.Tool("run")
	if !ok {
		t.Fatal("run tool missing")
	}
	if p, ok := run.Param("state"); !ok || !p.Signer || !p.Writable {
		t.Errorf("state flags = %+v", p)
	}
}

func TestArgTypeMapping(t *testing.T) {
	input := `{
		"name": "types_test",
		"instructions": [{
			"name": "test_types",
			"accounts": [],
			"args": [
				{"name": "amount", "type": "u64"},
				{"name": "flag", "type": "bool"},
				{"name": "key", "type": "pubkey"},
				{"name": "data", "type": {"vec": "u8"}},
				{"name": "fixed", "type": {"array": ["u8", 32]}},
				{"name": "maybe", "type": {"option": "u32"}},
				{"name": "label", "type": "string"},
				{"name": "big", "type": "u128"},
				{"name": "custom", "type": {"defined": "MyStruct"}}
			]
		}]
	}`
	idl, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Convert(idl)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	want := map[string]schema.ArgType{
		"amount": schema.ArgU64,
		"flag":   schema.ArgBool,
		"key":    schema.ArgPubkey,
		"data":   schema.ArgBytes,
		"fixed":  schema.ArgBytes,
		"maybe":  schema.ArgU32,
		"label":  schema.ArgString,
		"big":    schema.ArgU128,
		"custom": schema.ArgString,
	}
	tool, ok := s.Tool("test_types")
	if !ok {
		t.Fatal("test_types tool missing")
	}
	for name, typ := range want {
		p, ok := tool.Param(name)
		if !ok || p.Type != typ {
			t.Errorf("arg %q = %+v, want type %v", name, p, typ)
		}
	}
}

func TestConvertJSON(t *testing.T) {
	out, err := ConvertJSON([]byte(sampleIDL))
	if err != nil {
		t.Fatalf("ConvertJSON: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		`"name":"counter"`,
		`"n":"list_tools"`,
		`"n":"initialize"`,
		`"n":"increment"`,
		`"i":"Initialize a new counter account"`,
		`"counter_w":"pubkey"`,
		`"amount":"int"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("compact output missing %s\ngot: %s", want, got)
		}
	}
}
