package crypto

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pdfvault/backend/vaulterr"
)

var testParams = Params{N: 1024, R: 8, P: 1}
var password = []byte("secret123")

func newTestEngine() *Engine {
	return NewEngine(Options{Params: testParams, Workers: 2})
}

// decryptWithWrongKey encrypts plaintext with password and decrypts it with
// wrongPassword until decryption fails. CBC without a MAC accepts a wrong key
// whenever the garbage happens to end in valid padding (about 1 in 256), so a
// single attempt can't be used to assert rejection.
func decryptWithWrongKey(t *testing.T, e *Engine, plaintext, wrongPassword []byte) error {
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		blob, err := e.Encrypt(ctx, plaintext, password)
		require.Nil(t, err)

		out, err := e.Decrypt(ctx, blob, wrongPassword)
		if err != nil {
			return err
		}

		assert.False(t, bytes.Equal(out, plaintext))
	}

	return nil
}

func TestDeriveKey(t *testing.T) {
	key, err := DeriveKey(password, []byte("salt"), testParams)
	require.Nil(t, err)

	isEmpty := true
	for _, b := range key {
		if b != 0 {
			isEmpty = false
			break
		}
	}
	assert.False(t, isEmpty, "Generated key is empty")

	again, err := DeriveKey(password, []byte("salt"), testParams)
	require.Nil(t, err)
	assert.Equal(t, key, again)

	other, err := DeriveKey(password, []byte("pepper"), testParams)
	require.Nil(t, err)
	assert.NotEqual(t, key, other)
}

func TestEncryptDecrypt(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	blob, err := e.Encrypt(ctx, []byte("hello world"), password)
	require.Nil(t, err)

	// 16 byte IV + one padded AES block
	assert.Len(t, blob, 32)

	plaintext, err := e.Decrypt(ctx, blob, password)
	require.Nil(t, err)
	assert.Equal(t, "hello world", string(plaintext))

	err = decryptWithWrongKey(t, e, []byte("hello world"), []byte("wrong"))
	assert.True(t, errors.Is(err, vaulterr.DecryptionError))
	assert.Equal(t, "invalid password or corrupted data", err.Error())
}

func TestRoundTripSizes(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	for _, size := range []int{0, 1, 15, 16, 17, 31, 32, 1000} {
		data, err := RandomBytes(size)
		require.Nil(t, err)

		blob, err := e.Encrypt(ctx, data, password)
		require.Nil(t, err)
		assert.Equal(t, 16+(size/16+1)*16, len(blob))

		plaintext, err := e.Decrypt(ctx, blob, password)
		require.Nil(t, err)
		assert.True(t, bytes.Equal(data, plaintext), "size %d", size)
	}
}

func TestIVRandomization(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	first, err := e.Encrypt(ctx, []byte("same input"), password)
	require.Nil(t, err)
	second, err := e.Encrypt(ctx, []byte("same input"), password)
	require.Nil(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, first[:16], second[:16])

	for _, blob := range [][]byte{first, second} {
		plaintext, err := e.Decrypt(ctx, blob, password)
		require.Nil(t, err)
		assert.Equal(t, "same input", string(plaintext))
	}
}

func TestDecryptMalformed(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.Decrypt(ctx, make([]byte, 15), password)
	assert.True(t, errors.Is(err, vaulterr.ValidationError))

	// IV only, no ciphertext
	_, err = e.Decrypt(ctx, make([]byte, 16), password)
	assert.True(t, errors.Is(err, vaulterr.DecryptionError))

	// Not block aligned
	_, err = e.Decrypt(ctx, make([]byte, 40), password)
	assert.True(t, errors.Is(err, vaulterr.DecryptionError))
}

func TestDecryptCorrupted(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	blob, err := e.Encrypt(ctx, []byte("hello world"), password)
	require.Nil(t, err)

	// Flipping a bit in the IV flips the same bit of the plaintext, which
	// leaves the padding intact but changes the output.
	corrupted := append([]byte{}, blob...)
	corrupted[0] ^= 0x01
	out, err := e.Decrypt(ctx, corrupted, password)
	if err == nil {
		assert.NotEqual(t, "hello world", string(out))
	} else {
		assert.True(t, errors.Is(err, vaulterr.DecryptionError))
	}
}

func TestEncryptRequiresPassword(t *testing.T) {
	e := newTestEngine()
	_, err := e.Encrypt(context.Background(), []byte("data"), nil)
	assert.True(t, errors.Is(err, vaulterr.ValidationError))
}

func TestLegacyFixedSalt(t *testing.T) {
	legacy := NewEngine(Options{Params: testParams, LegacyFixedSalt: true})
	modern := newTestEngine()
	ctx := context.Background()

	blob, err := legacy.Encrypt(ctx, []byte("legacy"), password)
	require.Nil(t, err)

	plaintext, err := legacy.Decrypt(ctx, blob, password)
	require.Nil(t, err)
	assert.Equal(t, "legacy", string(plaintext))

	// Every legacy blob shares a key, regardless of IV
	k1, err := legacy.DeriveKey(ctx, password, []byte("a"))
	require.Nil(t, err)
	k2, err := legacy.DeriveKey(ctx, password, []byte("b"))
	require.Nil(t, err)
	assert.Equal(t, k1, k2)

	k3, err := modern.DeriveKey(ctx, password, []byte("a"))
	require.Nil(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestGenerateRandomSecret(t *testing.T) {
	secret, err := GenerateRandomSecret(16)
	require.Nil(t, err)
	assert.Len(t, secret, 32)

	_, err = hex.DecodeString(secret)
	assert.Nil(t, err)

	other, err := GenerateRandomSecret(16)
	require.Nil(t, err)
	assert.NotEqual(t, secret, other)

	_, err = GenerateRandomSecret(0)
	assert.True(t, errors.Is(err, vaulterr.ValidationError))
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)
	var running, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Do(context.Background(), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, 2, pool.Size())
}

func TestPoolHonorsContext(t *testing.T) {
	pool := NewPool(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = pool.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := pool.Do(ctx, func() error { return nil })
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	close(release)
}

func TestConcurrentEncrypt(t *testing.T) {
	e := newTestEngine()
	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := []byte{byte(i), byte(i), byte(i)}
			blob, err := e.Encrypt(context.Background(), data, password)
			if err != nil {
				errs <- err
				return
			}

			out, err := e.Decrypt(context.Background(), blob, password)
			if err != nil {
				errs <- err
			} else if !bytes.Equal(out, data) {
				errs <- errors.New("round trip mismatch")
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Concurrent encryption failed: %v", err)
	}
}
