// Package auth produces authorization contexts after a local identity check.
//
// The orchestrator treats the context as an opaque, time-bounded capability
// required before key vault access. The default implementation verifies a
// passphrase against a PBKDF2-HMAC-SHA256 verifier enrolled at init time:
//   - 32-byte random salt (stored unencrypted)
//   - 210,000 iterations (OWASP minimum recommendation)
//
// Authorization failure or cancellation always propagates verbatim and
// leaves no observable side effects.
package auth
