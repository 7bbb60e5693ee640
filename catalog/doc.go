// Package catalog stores and searches discovered program schemas. A gateway
// or indexer fetches schemas with the client package, files them here by
// program address, and answers lookups without re-querying the chain.
//
// Two Store implementations are provided: an in-memory map for tests and
// single-process use, and a SQLite-backed store for persistence. The
// separate Index adds full-text search over tool names and descriptions.
package catalog
