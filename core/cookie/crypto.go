package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
)

// keyring holds one AEAD per secret, newest first.
type keyring struct {
	aeads []cipher.AEAD
}

// newKeyring derives a 256-bit AES key from each secret with SHA-256.
func newKeyring(secrets []string) (*keyring, error) {
	k := &keyring{aeads: make([]cipher.AEAD, 0, len(secrets))}
	for _, secret := range secrets {
		key := sha256.Sum256([]byte(secret))

		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, err
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		k.aeads = append(k.aeads, gcm)
	}
	return k, nil
}

func (k *keyring) seal(plaintext []byte) (string, error) {
	gcm := k.aeads[0]

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

func (k *keyring) open(encoded string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	for _, gcm := range k.aeads {
		if len(ciphertext) < gcm.NonceSize() {
			return nil, ErrInvalidFormat
		}
		nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
		if plaintext, err := gcm.Open(nil, nonce, sealed, nil); err == nil {
			return plaintext, nil
		}
	}

	return nil, ErrDecryptionFailed
}

// GenerateSecret returns a random secret suitable for New.
// Values encrypted with it become unreadable once the process exits.
func GenerateSecret() (string, error) {
	b := make([]byte, minSecretLength)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
