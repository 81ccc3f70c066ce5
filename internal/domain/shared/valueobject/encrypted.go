package valueobject

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EncryptedString holds a sensitive value (bank account numbers, e-wallet
// handles) encrypted at rest. Decryption is always explicit via Reveal;
// nothing decrypts on plain reads, and display paths use Masked.
type EncryptedString struct {
	ciphertext string // base64(nonce || AES-GCM sealed)
	lastFour   string // kept in clear for masked display
}

// EncryptString seals a plaintext value with the given key
func EncryptString(plaintext, key string) (EncryptedString, error) {
	if plaintext == "" {
		return EncryptedString{}, nil
	}
	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return EncryptedString{}, fmt.Errorf("cipher init: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return EncryptedString{}, fmt.Errorf("gcm init: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return EncryptedString{}, fmt.Errorf("nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	lastFour := plaintext
	if len(plaintext) > 4 {
		lastFour = plaintext[len(plaintext)-4:]
	}
	return EncryptedString{
		ciphertext: base64.StdEncoding.EncodeToString(sealed),
		lastFour:   lastFour,
	}, nil
}

// EncryptedStringFromStored reconstructs the value object from persisted columns
func EncryptedStringFromStored(ciphertext, lastFour string) EncryptedString {
	return EncryptedString{ciphertext: ciphertext, lastFour: lastFour}
}

// Reveal decrypts with the given key. Callers must have a reason to see the
// clear value (bank file generation, not display).
func (e EncryptedString) Reveal(key string) (string, error) {
	if e.ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(e.ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", fmt.Errorf("cipher init: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("gcm init: %w", err)
	}
	if len(raw) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.New("decryption failed: wrong key or corrupted data")
	}
	return string(plain), nil
}

// Masked returns a display-safe rendering, e.g. "****6789"
func (e EncryptedString) Masked() string {
	if e.lastFour == "" {
		return ""
	}
	return strings.Repeat("*", 4) + e.lastFour
}

// Ciphertext returns the stored ciphertext for persistence
func (e EncryptedString) Ciphertext() string {
	return e.ciphertext
}

// LastFour returns the clear suffix kept for masked display
func (e EncryptedString) LastFour() string {
	return e.lastFour
}

// IsEmpty reports whether no value is held
func (e EncryptedString) IsEmpty() bool {
	return e.ciphertext == ""
}

// deriveKey stretches an arbitrary-length key into an AES-256 key
func deriveKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}
