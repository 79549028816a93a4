// pkg/chunk/encrypt.go

package chunk

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

const (
	saltSize = 8
	keyIters = 10000
	keySize  = 32
)

type aesEncryptor struct {
	passphrase []byte
}

// NewAESEncryptor encrypts blobs with AES-GCM using a key derived from
// the passphrase with PBKDF2. Each blob carries its own salt and nonce.
func NewAESEncryptor(passphrase string) Encryptor {
	return &aesEncryptor{passphrase: []byte(passphrase)}
}

func (e *aesEncryptor) gcm(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.passphrase, salt, keyIters, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (e *aesEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	gcm, err := e.gcm(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

func (e *aesEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < saltSize {
		return nil, errors.New("ciphertext too short")
	}
	salt := ciphertext[:saltSize]
	gcm, err := e.gcm(salt)
	if err != nil {
		return nil, err
	}
	rest := ciphertext[saltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := rest[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, rest[gcm.NonceSize():], nil)
}
