// Package schema defines the data model for program self-description: a
// named, ordered set of tool descriptors with derived discriminators, a
// closed argument-type vocabulary, and signer/writable access flags.
//
// A Schema is assembled once, validated at construction, and treated as
// immutable for the life of the program. Construction enforces the
// invariants the wire format depends on: unique tool and parameter names,
// no parameter name ending in a flag suffix (the compact encoding would
// misread it), flags only on account references, and rejection of any tool
// name whose derived discriminator collides with the reserved discovery
// identifier.
//
// # Building a schema
//
//	s, err := schema.New("counter").
//		MustTool(schema.NewTool("increment").
//			Description("Add to counter value").
//			Writable("counter").
//			Signer("authority").
//			Arg("amount", schema.ArgU64)).
//		Build()
//
// Encoding and decoding live in the codec package; this package only holds
// the model and its invariants.
package schema
