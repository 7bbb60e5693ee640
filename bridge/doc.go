// Package bridge fronts a discovered program with a standard MCP server.
// The program's self-described tools become MCP tools, tools/call assembles
// the on-chain call, and an optional Invoker submits it. Without an invoker
// the bridge answers with the assembled call so a wallet can sign and send
// it out of band.
//
// Transports follow the MCP convention: line-delimited JSON-RPC over stdio
// and POSTed JSON-RPC over HTTP.
package bridge
