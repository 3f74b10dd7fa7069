package database

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

var secretKey *[32]byte

// InitSecretKey derives the process-wide secretbox key used for integration
// credentials at rest. Must be called once at startup before any integration
// is created or read.
func InitSecretKey(key string) error {
	if key == "" {
		return errors.New("secret key must not be empty")
	}
	derived := sha256.Sum256([]byte(key))
	secretKey = &derived
	return nil
}

func EncryptSecret(plain string) ([]byte, error) {
	if secretKey == nil {
		return nil, errors.New("secret key not initialized")
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plain), &nonce, secretKey), nil
}

func DecryptSecret(sealed []byte) (string, error) {
	if secretKey == nil {
		return "", errors.New("secret key not initialized")
	}
	if len(sealed) < 24 {
		return "", errors.New("sealed secret too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, secretKey)
	if !ok {
		return "", errors.New("failed to open sealed secret")
	}
	return string(plain), nil
}
