package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dtroode/numbook-server/internal/model"
)

// fileCipher seals the credential file with AES-256-GCM. The encoded form
// is hex(nonce) + ":" + hex(ciphertext).
type fileCipher struct {
	aead cipher.AEAD
}

func newFileCipher(passphrase string) (*fileCipher, error) {
	key := sha256.Sum256([]byte(passphrase))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}

	return &fileCipher{aead: aead}, nil
}

func (c *fileCipher) encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nil, nonce, plaintext, nil)

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext), nil
}

// decrypt reports every failure as ErrIntegrity.
func (c *fileCipher) decrypt(encoded string) ([]byte, error) {
	nonceHex, ciphertextHex, found := strings.Cut(encoded, ":")
	if !found {
		return nil, fmt.Errorf("%w: missing nonce separator", model.ErrIntegrity)
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode nonce: %v", model.ErrIntegrity, err)
	}
	if len(nonce) != c.aead.NonceSize() {
		return nil, fmt.Errorf("%w: unexpected nonce length %d", model.ErrIntegrity, len(nonce))
	}

	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode ciphertext: %v", model.ErrIntegrity, err)
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt: %v", model.ErrIntegrity, err)
	}

	return plaintext, nil
}
