// Package cryptox contains the process-wide token cipher and password hashing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/tentech-me/tentech-api/internal/common"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// tokenVersion prefixes every token and is bound to the ciphertext as
// associated data.
const tokenVersion byte = 1

// ErrDecrypt is returned for any token that cannot be opened: bad encoding,
// wrong version, truncated input, tag mismatch or a different key.
var ErrDecrypt = errors.New("cannot decrypt token")

var ErrKeySize = fmt.Errorf("token key must be %d bytes", KeySize)

var tokenEncoding = base64.RawURLEncoding.Strict()

// Cipher seals arbitrary payloads into URL-safe tokens with AES-256-GCM.
//
// Token layout before encoding: version (1 byte) | nonce (12 bytes) |
// ciphertext with GCM tag. The text form is unpadded base64url decoded in
// strict mode, so flipping the unused low bits of the last character is
// detected too. The alphabet only contains unreserved URL characters, which
// makes tokens stable under percent-encoding.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher for a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext []byte) string {
	nonceSize := c.aead.NonceSize()

	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+c.aead.Overhead())
	out[0] = tokenVersion
	copy(out[1:], common.GenerateRandByteArray(nonceSize))

	out = c.aead.Seal(out, out[1:1+nonceSize], plaintext, out[:1])
	return tokenEncoding.EncodeToString(out)
}

// Decrypt opens a token produced by Encrypt with the same key.
func (c *Cipher) Decrypt(token string) ([]byte, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrDecrypt
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < 1+nonceSize+c.aead.Overhead() || raw[0] != tokenVersion {
		return nil, ErrDecrypt
	}

	plaintext, err := c.aead.Open(nil, raw[1:1+nonceSize], raw[1+nonceSize:], raw[:1])
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// ParseKey decodes a base64url key (padded or not) and checks its length.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		key, err = base64.URLEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("token key is not base64url: %w", err)
		}
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	return key, nil
}

// GenerateKey returns a new random key in the text form ParseKey accepts.
func GenerateKey() string {
	return base64.RawURLEncoding.EncodeToString(common.GenerateRandByteArray(KeySize))
}
