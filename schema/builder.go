package schema

import "github.com/jonwraymond/toolwire/sighash"

// ToolBuilder assembles a Tool. The discriminator is derived from the name
// at Build time; it is never supplied by the caller.
type ToolBuilder struct {
	name        string
	description string
	params      []Param
	order       []string
}

// NewTool starts a builder for the named tool.
func NewTool(name string) *ToolBuilder {
	return &ToolBuilder{name: name}
}

// Description sets the human-readable tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	b.description = desc
	return b
}

// Account adds an account-reference parameter with explicit flags.
func (b *ToolBuilder) Account(name string, signer, writable bool) *ToolBuilder {
	b.params = append(b.params, Param{Name: name, Type: ArgPubkey, Signer: signer, Writable: writable})
	return b
}

// AccountDesc adds an account-reference parameter with a description.
func (b *ToolBuilder) AccountDesc(name, desc string, signer, writable bool) *ToolBuilder {
	b.params = append(b.params, Param{Name: name, Type: ArgPubkey, Signer: signer, Writable: writable, Description: desc})
	return b
}

// Signer adds a read-only account that must sign.
func (b *ToolBuilder) Signer(name string) *ToolBuilder {
	return b.Account(name, true, false)
}

// SignerDesc adds a signer account with a description.
func (b *ToolBuilder) SignerDesc(name, desc string) *ToolBuilder {
	return b.AccountDesc(name, desc, true, false)
}

// Writable adds a writable, non-signing account.
func (b *ToolBuilder) Writable(name string) *ToolBuilder {
	return b.Account(name, false, true)
}

// WritableDesc adds a writable account with a description.
func (b *ToolBuilder) WritableDesc(name, desc string) *ToolBuilder {
	return b.AccountDesc(name, desc, false, true)
}

// SignerWritable adds an account that signs and is written.
func (b *ToolBuilder) SignerWritable(name string) *ToolBuilder {
	return b.Account(name, true, true)
}

// SignerWritableDesc adds a signer+writable account with a description.
func (b *ToolBuilder) SignerWritableDesc(name, desc string) *ToolBuilder {
	return b.AccountDesc(name, desc, true, true)
}

// Arg adds a value argument.
func (b *ToolBuilder) Arg(name string, t ArgType) *ToolBuilder {
	b.params = append(b.params, Param{Name: name, Type: t})
	return b
}

// ArgDesc adds a value argument with a description.
func (b *ToolBuilder) ArgDesc(name, desc string, t ArgType) *ToolBuilder {
	b.params = append(b.params, Param{Name: name, Type: t, Description: desc})
	return b
}

// Order overrides the wire order with an explicit list of compact keys.
// Build rejects lists that are not a permutation of a subset of the
// declared parameters.
func (b *ToolBuilder) Order(keys ...string) *ToolBuilder {
	b.order = append([]string(nil), keys...)
	return b
}

// Build derives the discriminator, validates the tool, and returns it.
func (b *ToolBuilder) Build() (Tool, error) {
	t := Tool{
		Name:          b.name,
		Description:   b.description,
		Discriminator: sighash.Instruction(b.name),
		Params:        append([]Param(nil), b.params...),
		Order:         append([]string(nil), b.order...),
	}
	if err := t.Validate(); err != nil {
		return Tool{}, err
	}
	return t, nil
}

// SchemaBuilder assembles a Schema from tools in declaration order.
type SchemaBuilder struct {
	name  string
	tools []Tool
	err   error
}

// New starts a builder for the named program.
func New(name string) *SchemaBuilder {
	return &SchemaBuilder{name: name}
}

// Tool appends a built tool.
func (b *SchemaBuilder) Tool(t Tool) *SchemaBuilder {
	b.tools = append(b.tools, t)
	return b
}

// MustTool builds the tool and appends it, deferring any build error to
// Build. It keeps declaration sites compact for static schemas.
func (b *SchemaBuilder) MustTool(tb *ToolBuilder) *SchemaBuilder {
	t, err := tb.Build()
	if err != nil && b.err == nil {
		b.err = err
	}
	b.tools = append(b.tools, t)
	return b
}

// Build validates and returns the schema.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := &Schema{
		Version: Version,
		Name:    b.name,
		Tools:   append([]Tool(nil), b.tools...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
