// Package vault encrypts third-party API credentials before they reach the
// database. Social link keys and tokens are stored as AES-256-GCM ciphertext;
// the master key never leaves process memory.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidKey       = errors.New("invalid encryption key")
	ErrDecryptionFailed = errors.New("decryption failed")
)

const derivationSalt = "aurasflow-vault-salt"

// Cipher performs symmetric field-level encryption.
type Cipher struct {
	masterKey []byte
}

// NewCipher accepts either a 32-byte hex-encoded key or an arbitrary
// passphrase, which is stretched with Argon2id.
func NewCipher(masterKey string) (*Cipher, error) {
	if masterKey == "" {
		return nil, ErrInvalidKey
	}

	key, err := hex.DecodeString(masterKey)
	if err != nil || len(key) != 32 {
		key = argon2.IDKey([]byte(masterKey), []byte(derivationSalt), 3, 64*1024, 4, 32)
	}

	return &Cipher{masterKey: key}, nil
}

// EncryptString seals a plaintext value. The nonce is prepended to the
// ciphertext and the whole blob is base64-encoded. Empty input passes
// through unchanged so optional fields stay optional.
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func (c *Cipher) DecryptString(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(c.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(sealed) < gcm.NonceSize() {
		return "", ErrDecryptionFailed
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
