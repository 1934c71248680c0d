// Package vault stores portal login credentials encrypted at rest.
// Every string field is sealed independently with AES-256-GCM so a
// tampered row fails decryption instead of yielding garbage plaintext.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeySize is the required encryption key length. AES-256 only.
const KeySize = 32

// ivSize is the per-field random IV length, hex-encoded into the stored value.
const ivSize = 16

// Cipher seals and opens individual credential fields.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher validates the key up front so a misconfigured deployment fails
// at startup, not on the first credential write.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("vault: encryption key must be exactly %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("vault: init gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// EncryptString seals one field as "hex(iv):hex(ciphertext)". A fresh random
// IV per call keeps identical plaintexts from producing identical rows.
func (c *Cipher) EncryptString(plain string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("vault: generate iv: %w", err)
	}
	sealed := c.aead.Seal(nil, iv, []byte(plain), nil)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(sealed), nil
}

// DecryptString opens a value produced by EncryptString. Any corruption of
// either half surfaces as an error.
func (c *Cipher) DecryptString(enc string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(enc, ":")
	if !ok {
		return "", fmt.Errorf("vault: malformed encrypted value")
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != ivSize {
		return "", fmt.Errorf("vault: malformed iv")
	}
	sealed, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("vault: malformed ciphertext")
	}
	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("vault: decrypt failed: %w", err)
	}
	return string(plain), nil
}
