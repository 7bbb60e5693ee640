// Package host is the program-side half of the discovery protocol: routing
// incoming request bytes by discriminator and answering the reserved
// list_tools operation with pre-rendered schema bytes.
//
// A program wires it into its dispatch loop:
//
//	responder, err := host.NewResponder(programSchema, codec.ModeAuto)
//	...
//	if host.IsListTools(data) {
//		return responder.Respond(data)
//	}
//	if host.Matches(data, "increment") {
//		return handleIncrement(accounts, data[8:])
//	}
package host
