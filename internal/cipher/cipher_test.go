package cipher

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	plaintext := []byte("some folder archive bytes")
	envelope, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	decrypted, err := Decrypt(envelope, key)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	envelope, err := Encrypt([]byte{}, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	decrypted, err := Decrypt(envelope, key)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(decrypted))
	}
}

func TestFreshNoncePerCall(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	plaintext := []byte("same input")
	a, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	b, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if bytes.Equal(a[:NonceSize], b[:NonceSize]) {
		t.Error("nonce reused across calls")
	}
	if bytes.Equal(a, b) {
		t.Error("identical envelopes for repeated encryption")
	}
}

func TestDecryptTamperedEnvelope(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	envelope, err := Encrypt([]byte("sensitive data"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip one bit in every byte position in turn. Each mutation must fail
	// authentication, whether it lands in the nonce, ciphertext or tag.
	for i := range envelope {
		tampered := append([]byte(nil), envelope...)
		tampered[i] ^= 0x01
		if _, err := Decrypt(tampered, key); err != ErrAuthFailed {
			t.Fatalf("byte %d: expected ErrAuthFailed, got %v", i, err)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	key1, _ := GenerateKey()
	key2, _ := GenerateKey()

	envelope, err := Encrypt([]byte("data"), key1)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := Decrypt(envelope, key2); err != ErrAuthFailed {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestDecryptShortCiphertext(t *testing.T) {
	key, _ := GenerateKey()
	if _, err := Decrypt([]byte("short"), key); err != ErrInvalidCiphertext {
		t.Errorf("expected ErrInvalidCiphertext, got %v", err)
	}
}

func TestInvalidKeySize(t *testing.T) {
	if _, err := Encrypt([]byte("data"), []byte("tiny")); err != ErrInvalidKey {
		t.Errorf("Encrypt: expected ErrInvalidKey, got %v", err)
	}
	if _, err := Decrypt(make([]byte, NonceSize+TagSize), []byte("tiny")); err != ErrInvalidKey {
		t.Errorf("Decrypt: expected ErrInvalidKey, got %v", err)
	}
}
