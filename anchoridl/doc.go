// Package anchoridl converts Anchor IDL documents into tool schemas, so an
// existing program becomes discoverable without touching its source. The
// converter reads both the classic isMut/isSigner account flags and the
// newer writable/signer spelling.
package anchoridl
