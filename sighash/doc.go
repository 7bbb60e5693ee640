// Package sighash derives 8-byte discriminators from instruction and
// account names using SHA-256 truncation.
//
// The derivation is deterministic and namespace-separated: instruction
// discriminators hash "global:<name>", account type discriminators hash
// "account:<name>", and the first 8 bytes of the digest become the
// identifier. Independent implementations agree byte for byte, which is
// what lets a client route calls to a program it has never seen before.
//
// One value is reserved: ListTools, the discriminator of the discovery
// instruction itself. Derivation of any other name to this value is a
// collision and must be rejected at schema construction.
package sighash
