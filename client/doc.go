// Package client is the calling side of the discovery protocol: it fetches
// a program's tool schema, follows pagination, and turns a tool name plus
// named parameters into a ready-to-send call.
//
// The transport is abstracted behind the Simulator interface, so the same
// client works against a live RPC endpoint, a local runtime, or an
// in-process responder in tests.
package client
