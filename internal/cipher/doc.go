// Package cipher provides authenticated encryption for lock artifacts.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte random key generated once per folder
//   - 12-byte random nonce per encryption operation
//   - Authenticated encryption prevents tampering
//
// The envelope layout is nonce || ciphertext || tag. Reusing a nonce under
// the same key is forbidden; a fresh nonce is drawn for every call.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
package cipher
