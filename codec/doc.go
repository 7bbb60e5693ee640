// Package codec serializes tool schemas into the two wire forms of the
// discovery protocol and decodes either form back into one normalized
// document.
//
// The compact form packs every tool into a single document with one-letter
// keys and suffix-encoded account flags; it is the form measured against the
// 1 KiB response budget. The paginated form serves one tool per page with
// full field names and per-parameter descriptions, linked by a nextCursor
// marker. Encoding is deterministic: the same schema always produces the
// same bytes.
//
// Decoding is tolerant where encoding is strict. Unknown fields are skipped,
// either long or short key names are accepted, and both parameter shapes
// normalize to the same representation. Only structural problems fail:
// missing names or discriminators, discriminators that are not 16 hex
// characters, and type tokens outside the closed vocabulary.
package codec
