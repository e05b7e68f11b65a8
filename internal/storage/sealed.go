package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/existflow/scic/internal/session"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12 // GCM standard nonce size
	saltSize         = 16
	pbkdf2Iterations = 100000

	// KeySalt holds the key derivation salt next to the sealed values
	KeySalt = "storeSalt"
)

// Sealed encrypts every value with AES-256-GCM before it reaches the
// underlying store. The key is derived from a passphrase with PBKDF2; the
// salt is generated on first write and kept in the store itself.
type Sealed struct {
	inner      session.Store
	passphrase string

	mu  sync.Mutex
	key []byte
}

var _ session.Store = (*Sealed)(nil)

// NewSealed wraps inner
func NewSealed(inner session.Store, passphrase string) *Sealed {
	return &Sealed{inner: inner, passphrase: passphrase}
}

// aead returns the AEAD, deriving the key once. A missing salt is only
// created when create is set, so reads never write.
func (s *Sealed) aead(ctx context.Context, create bool) (cipher.AEAD, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		salt, err := s.salt(ctx, create)
		if err != nil || salt == nil {
			return nil, err
		}
		s.key = pbkdf2.Key([]byte(s.passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *Sealed) salt(ctx context.Context, create bool) ([]byte, error) {
	encoded, ok, err := s.inner.Get(ctx, KeySalt)
	if err != nil {
		return nil, err
	}
	if ok {
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid store salt: %w", err)
		}
		return salt, nil
	}
	if !create {
		return nil, nil
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if err := s.inner.Set(ctx, KeySalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}

	gcm, err := s.aead(ctx, false)
	if err != nil {
		return "", false, err
	}
	if gcm == nil {
		return "", false, fmt.Errorf("cannot open %s: store has no salt", key)
	}

	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", false, fmt.Errorf("cannot open %s: %w", key, err)
	}
	if len(data) < nonceSize {
		return "", false, errors.New("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("cannot open %s: wrong secret or tampered value", key)
	}
	return string(plaintext), true, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	gcm, err := s.aead(ctx, true)
	if err != nil {
		return err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	// The key is bound as additional data so values cannot be swapped
	ciphertext := gcm.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(ciphertext))
}

func (s *Sealed) Clear(ctx context.Context, keys ...string) error {
	return s.inner.Clear(ctx, keys...)
}
