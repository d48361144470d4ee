package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared/constants"
)

// Params are the scrypt cost parameters used by DeriveKey.
type Params struct {
	N int
	R int
	P int
}

var DefaultParams = Params{N: 32768, R: 8, P: 1}

// LegacyParams and legacySalt match the key derivation of blobs written by
// the original web app, which used one constant salt for every file.
var LegacyParams = Params{N: 16384, R: 8, P: 1}

const legacySalt = "salt"

type Options struct {
	Params          Params
	LegacyFixedSalt bool
	Workers         int
}

// Engine encrypts and decrypts byte buffers with AES-256-CBC using a key
// derived from a password. Blobs are laid out as IV || ciphertext.
type Engine struct {
	params Params
	legacy bool
	pool   *Pool
}

func NewEngine(opts Options) *Engine {
	params := opts.Params
	if params.N == 0 {
		params = DefaultParams
		if opts.LegacyFixedSalt {
			params = LegacyParams
		}
	}

	return &Engine{
		params: params,
		legacy: opts.LegacyFixedSalt,
		pool:   NewPool(opts.Workers),
	}
}

// DeriveKey produces a 256-bit key from a password and salt with scrypt.
func DeriveKey(password, salt []byte, params Params) ([constants.KeySize]byte, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, constants.KeySize)
	if err != nil {
		return [constants.KeySize]byte{}, err
	}

	return [constants.KeySize]byte(key), nil
}

// DeriveKey runs the KDF on the engine's worker pool. The salt is ignored in
// legacy mode.
func (e *Engine) DeriveKey(ctx context.Context, password, salt []byte) ([constants.KeySize]byte, error) {
	if e.legacy {
		salt = []byte(legacySalt)
	}

	var key [constants.KeySize]byte
	err := e.pool.Do(ctx, func() error {
		var deriveErr error
		key, deriveErr = DeriveKey(password, salt, e.params)
		return deriveErr
	})

	return key, err
}

// Encrypt pads plaintext and encrypts it under a key derived from password. A
// fresh random IV is generated for every call, and doubles as the per-blob
// KDF salt.
func (e *Engine) Encrypt(ctx context.Context, plaintext, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password is required", vaulterr.ValidationError)
	}

	iv, err := RandomBytes(constants.IVSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vaulterr.InternalError, err)
	}

	key, err := e.DeriveKey(ctx, password, iv)
	if err != nil {
		return nil, fmt.Errorf("%w: key derivation: %v", vaulterr.InternalError, err)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vaulterr.InternalError, err)
	}

	padded := pad(plaintext, aes.BlockSize)
	blob := make([]byte, constants.IVSize+len(padded))
	copy(blob, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(blob[constants.IVSize:], padded)

	return blob, nil
}

// Decrypt reverses Encrypt. Any failure past the length check (wrong
// password, truncated or corrupted ciphertext, bad padding) is reported as
// vaulterr.DecryptionError.
func (e *Engine) Decrypt(ctx context.Context, blob, password []byte) ([]byte, error) {
	if len(blob) < constants.IVSize {
		return nil, fmt.Errorf(
			"%w: encrypted data must be at least %d bytes",
			vaulterr.ValidationError,
			constants.IVSize)
	} else if len(password) == 0 {
		return nil, fmt.Errorf("%w: password is required", vaulterr.ValidationError)
	}

	iv := blob[:constants.IVSize]
	ciphertext := blob[constants.IVSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, vaulterr.DecryptionError
	}

	key, err := e.DeriveKey(ctx, password, iv)
	if err != nil {
		return nil, fmt.Errorf("%w: key derivation: %v", vaulterr.InternalError, err)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vaulterr.InternalError, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpad(plaintext, aes.BlockSize)
}

func (e *Engine) Workers() int {
	return e.pool.Size()
}

// RandomBytes reads n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateRandomSecret returns n random bytes, hex encoded. Used for
// auto-generated passwords.
func GenerateRandomSecret(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("%w: secret length must be positive", vaulterr.ValidationError)
	}

	b, err := RandomBytes(n)
	if err != nil {
		return "", fmt.Errorf("%w: %v", vaulterr.InternalError, err)
	}

	return hex.EncodeToString(b), nil
}

// pad applies PKCS#7 padding. A full block is added when data is already
// block aligned.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}

	return padded
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, vaulterr.DecryptionError
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, vaulterr.DecryptionError
	}

	valid := 1
	for _, b := range data[len(data)-n:] {
		valid &= subtle.ConstantTimeByteEq(b, byte(n))
	}

	if valid != 1 {
		return nil, vaulterr.DecryptionError
	}

	return data[:len(data)-n], nil
}
