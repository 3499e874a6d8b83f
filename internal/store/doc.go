// Package store provides on-disk persistence for the Auth Broker's
// online-path token cache.
//
// Entries are serialized as JSON and written via a temp-file-then-rename
// sequence so a crash mid-write never corrupts the cache, guarded by an
// advisory lock file so two processes never interleave writes to the
// same entry. Encryption at rest is optional, sealed with the same
// scrypt + chacha20poly1305 envelope format the identity-store idiom
// this package is descended from uses for private key material.
package store
