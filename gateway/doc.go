// Package gateway exposes a schema catalog over HTTP. Programs are loaded
// at startup from compact schema files or Anchor IDLs, or registered at
// runtime by POSTing their discovery document, and clients browse programs,
// list tools, and search tool descriptions without touching the chain.
package gateway
