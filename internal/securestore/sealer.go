package securestore

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

var ErrSealed = errors.New("securestore: cannot open sealed value")

// Sealer encrypts values at rest with a key derived from a passphrase.
// Output layout: salt(16) | nonce(24) | secretbox.
type Sealer struct {
	passphrase []byte
	salt       [saltSize]byte

	mu   sync.Mutex
	keys map[[saltSize]byte]*[keySize]byte
}

func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("securestore: passphrase required")
	}
	s := &Sealer{
		passphrase: []byte(passphrase),
		keys:       map[[saltSize]byte]*[keySize]byte{},
	}
	if _, err := io.ReadFull(rand.Reader, s.salt[:]); err != nil {
		return nil, fmt.Errorf("securestore: salt: %w", err)
	}
	return s, nil
}

func (s *Sealer) key(salt [saltSize]byte) *[keySize]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[salt]; ok {
		return k
	}
	var k [keySize]byte
	copy(k[:], argon2.IDKey(s.passphrase, salt[:], argonTime, argonMemory, argonThreads, keySize))
	s.keys[salt] = &k
	return &k
}

func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("securestore: nonce: %w", err)
	}
	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, s.salt[:]...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, s.key(s.salt)), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrSealed
	}
	var salt [saltSize]byte
	var nonce [nonceSize]byte
	copy(salt[:], sealed[:saltSize])
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])
	out, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, s.key(salt))
	if !ok {
		return nil, ErrSealed
	}
	return out, nil
}
