package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrInvalidKey        = errors.New("invalid key size")
)

// GenerateKey produces a new random 256-bit key. Called exactly once per
// folder, at first lock; subsequent locks reuse the stored key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with a fresh random nonce.
// The returned envelope is nonce || ciphertext || tag.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := gocipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, NonceSize+len(ciphertext))
	copy(result, nonce)
	copy(result[NonceSize:], ciphertext)

	return result, nil
}

// Decrypt decrypts an envelope produced by Encrypt. A tag verification
// failure returns ErrAuthFailed and no plaintext, ever.
func Decrypt(envelope, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	if len(envelope) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := gocipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := envelope[:NonceSize]
	ciphertext := envelope[NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
