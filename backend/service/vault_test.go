package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pdfvault/backend/auth"
	"pdfvault/backend/crypto"
	"pdfvault/backend/db"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared"
)

const (
	owner = "owner@example.com"
	bob   = "bob@example.com"
)

func newTestVault(t *testing.T, limits Limits) *Vault {
	t.Helper()

	engine := crypto.NewEngine(crypto.Options{
		Params:  crypto.Params{N: 1024, R: 8, P: 1},
		Workers: 4,
	})

	files := db.NewVaultStore()
	acl := db.NewACL(SharedFiles(files))
	gate := auth.NewGate(db.NewTwoFactorStore(), "")
	return NewVault(engine, files, acl, gate, limits)
}

// decryptWrong tries a few wrong passwords. Without a MAC a wrong key can
// still produce valid padding about 1 in 256 times.
func decryptWrong(t *testing.T, v *Vault, blob []byte) error {
	t.Helper()

	var err error
	for i := 0; i < 4; i++ {
		_, err = v.DecryptFile(context.Background(), blob, fmt.Sprintf("wrong-%d", i))
		if err != nil {
			return err
		}
	}

	return err
}

func TestEncryptDecryptFile(t *testing.T) {
	v := newTestVault(t, Limits{})
	ctx := context.Background()

	result, err := v.EncryptFile(ctx, EncryptRequest{
		Data:     []byte("Hello, World!"),
		Name:     "hello.txt",
		Password: "p@ss",
	})
	require.NoError(t, err)
	assert.Len(t, result.Blob, 32)
	assert.NotEmpty(t, result.FileID)
	assert.Empty(t, result.GeneratedPassword)

	plaintext, err := v.DecryptFile(ctx, result.Blob, "p@ss")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello, World!"), plaintext)

	err = decryptWrong(t, v, result.Blob)
	assert.ErrorIs(t, err, vaulterr.DecryptionError)
	assert.ErrorIs(t, err, vaulterr.AuthError)
	assert.Equal(t, 400, vaulterr.StatusCode(err))
}

func TestEncryptRandomPassword(t *testing.T) {
	v := newTestVault(t, Limits{RandomPasswordSize: 8})
	ctx := context.Background()

	result, err := v.EncryptFile(ctx, EncryptRequest{
		Data:              []byte("%PDF-1.7 body"),
		Name:              "doc.pdf",
		UseRandomPassword: true,
	})
	require.NoError(t, err)
	assert.Len(t, result.GeneratedPassword, 16)

	plaintext, err := v.DecryptFile(ctx, result.Blob, result.GeneratedPassword)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 body"), plaintext)
}

func TestEncryptValidation(t *testing.T) {
	v := newTestVault(t, Limits{MaxFileSize: 16})
	ctx := context.Background()

	_, err := v.EncryptFile(ctx, EncryptRequest{Data: []byte("data")})
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.EncryptFile(ctx, EncryptRequest{Password: "pw"})
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.EncryptFile(ctx, EncryptRequest{
		Data:     []byte(strings.Repeat("x", 17)),
		Password: "pw",
	})
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.DecryptFile(ctx, make([]byte, 32), "")
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.DecryptFile(ctx, []byte("short"), "pw")
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	assert.Equal(t, Stats{}, v.Stats())
}

func TestRoundTripAtSizeLimit(t *testing.T) {
	v := newTestVault(t, Limits{MaxFileSize: 64})
	ctx := context.Background()

	for _, size := range []int{49, 63, 64} {
		data := []byte(strings.Repeat("p", size))

		result, err := v.EncryptFile(ctx, EncryptRequest{Data: data, Password: "secret123"})
		require.NoError(t, err)

		plaintext, err := v.DecryptFile(ctx, result.Blob, "secret123")
		require.NoError(t, err)
		assert.Equal(t, data, plaintext)
	}

	// A full block of padding is the most a 64 byte file can produce
	_, err := v.DecryptFile(ctx, make([]byte, 64+16+16+1), "secret123")
	assert.ErrorIs(t, err, vaulterr.ValidationError)
}

func TestProtectAndAccess(t *testing.T) {
	v := newTestVault(t, Limits{})

	issued, err := v.ProtectFile([]byte("%PDF-1.4 secret"), "report.pdf", "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, issued.Secret, 32)
	assert.True(t, strings.HasPrefix(issued.URI, "otpauth://totp/"))

	code, err := totp.GenerateCode(issued.Secret, time.Now())
	require.NoError(t, err)

	file, err := v.AccessProtectedFile(issued.FileID, code)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, []byte("%PDF-1.4 secret"), file.Data)

	_, err = v.AccessProtectedFile(issued.FileID, "")
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.AccessProtectedFile("missing", code)
	assert.ErrorIs(t, err, vaulterr.NotFoundError)

	files := v.ListProtectedFiles()
	require.Len(t, files, 1)
	assert.Equal(t, issued.FileID, files[0].FileID)

	require.NoError(t, v.RemoveProtectedFile(issued.FileID))
	assert.Empty(t, v.ListProtectedFiles())
	assert.NotNil(t, v.ListProtectedFiles())
}

func TestShareAndGrant(t *testing.T) {
	v := newTestVault(t, Limits{})

	shared1, err := v.ShareFile([]byte("minutes"), "minutes.txt", " Owner@Example.com ", nil)
	require.NoError(t, err)
	require.Len(t, shared1.ACL, 1)
	assert.Equal(t, owner, shared1.ACL[0].Email)
	assert.Equal(t, db.ReadOnly, shared1.ACL[0].Permissions)

	_, err = v.AccessSharedFile(shared1.FileID, bob)
	assert.ErrorIs(t, err, vaulterr.PermissionError)
	assert.Equal(t, 403, vaulterr.StatusCode(err))

	acl, err := v.GrantAccess(shared1.FileID, bob, shared.Permissions{Read: true})
	require.NoError(t, err)
	require.Len(t, acl, 2)
	assert.Equal(t, owner, acl[0].Email)
	assert.Equal(t, bob, acl[1].Email)

	file, err := v.AccessSharedFile(shared1.FileID, bob)
	require.NoError(t, err)
	assert.Equal(t, []byte("minutes"), file.Data)
	assert.Equal(t, "text/plain", file.ContentType)

	// Granting again updates rather than duplicating.
	acl, err = v.GrantAccess(shared1.FileID, "BOB@example.com", shared.Permissions{Read: true, Write: true})
	require.NoError(t, err)
	require.Len(t, acl, 2)
	assert.True(t, acl[1].Permissions.Write)

	_, err = v.GrantAccess(shared1.FileID, "not-an-email", shared.Permissions{Read: true})
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.GrantAccess("missing", bob, shared.Permissions{Read: true})
	assert.ErrorIs(t, err, vaulterr.NotFoundError)

	_, err = v.AccessSharedFile("missing", bob)
	assert.ErrorIs(t, err, vaulterr.NotFoundError)
}

func TestShareValidation(t *testing.T) {
	v := newTestVault(t, Limits{MaxFileSize: 4})

	_, err := v.ShareFile([]byte("data"), "a.txt", "nope", nil)
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.ShareFile([]byte("too large"), "a.txt", owner, nil)
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	_, err = v.ShareFile(nil, "a.txt", owner, nil)
	assert.ErrorIs(t, err, vaulterr.ValidationError)

	assert.Empty(t, v.ListSharedFiles())
}

func TestGrantOnEncryptedFile(t *testing.T) {
	v := newTestVault(t, Limits{})

	result, err := v.EncryptFile(context.Background(), EncryptRequest{
		Data:     []byte("secret"),
		Password: "pw",
	})
	require.NoError(t, err)

	_, err = v.GrantAccess(result.FileID, bob, shared.Permissions{Read: true})
	assert.ErrorIs(t, err, vaulterr.NotFoundError)

	_, err = v.AccessSharedFile(result.FileID, bob)
	assert.ErrorIs(t, err, vaulterr.NotFoundError)
}

func TestUpdateAndDeleteSharedFile(t *testing.T) {
	v := newTestVault(t, Limits{})

	perms := shared.Permissions{Read: true, Write: true, Delete: true}
	resp, err := v.ShareFile([]byte("v1"), "notes.txt", owner, &perms)
	require.NoError(t, err)

	_, err = v.GrantAccess(resp.FileID, bob, shared.Permissions{Read: true})
	require.NoError(t, err)

	_, err = v.UpdateSharedFile(resp.FileID, bob, []byte("bob's edit"))
	assert.ErrorIs(t, err, vaulterr.PermissionError)

	info, err := v.UpdateSharedFile(resp.FileID, owner, []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, 2, info.Size)
	assert.Equal(t, 2, info.Grants)
	assert.Equal(t, owner, info.OwnerEmail)

	file, err := v.AccessSharedFile(resp.FileID, bob)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), file.Data)

	err = v.DeleteSharedFile(resp.FileID, bob)
	assert.ErrorIs(t, err, vaulterr.PermissionError)

	require.NoError(t, v.DeleteSharedFile(resp.FileID, owner))
	assert.Empty(t, v.ListAccess(resp.FileID))

	_, err = v.AccessSharedFile(resp.FileID, owner)
	assert.ErrorIs(t, err, vaulterr.NotFoundError)

	_, err = v.GrantAccess(resp.FileID, bob, shared.Permissions{Read: true})
	assert.ErrorIs(t, err, vaulterr.NotFoundError)
}

func TestListSharedFilesAndStats(t *testing.T) {
	v := newTestVault(t, Limits{})
	ctx := context.Background()

	first, err := v.ShareFile([]byte("one"), "one.txt", owner, nil)
	require.NoError(t, err)
	second, err := v.ShareFile([]byte("two"), "two.pdf", bob, nil)
	require.NoError(t, err)

	_, err = v.EncryptFile(ctx, EncryptRequest{Data: []byte("x"), Password: "pw"})
	require.NoError(t, err)
	_, err = v.ProtectFile([]byte("y"), "y.pdf", "alice")
	require.NoError(t, err)

	files := v.ListSharedFiles()
	require.Len(t, files, 2)

	ids := []string{files[0].FileID, files[1].FileID}
	assert.ElementsMatch(t, []string{first.FileID, second.FileID}, ids)
	assert.False(t, files[1].CreatedAt.Before(files[0].CreatedAt))

	assert.Equal(t, Stats{
		EncryptedFiles: 1,
		SharedFiles:    2,
		ProtectedFiles: 1,
		ACLs:           2,
	}, v.Stats())
}

func TestConcurrentGrants(t *testing.T) {
	v := newTestVault(t, Limits{})

	resp, err := v.ShareFile([]byte("data"), "data.csv", owner, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@example.com", i%10)
			_, err := v.GrantAccess(resp.FileID, email, shared.Permissions{Read: true})
			errs <- err
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Len(t, v.ListAccess(resp.FileID), 11)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("Report.PDF"))
	assert.Equal(t, "image/jpeg", ContentType("photo.jpeg"))
	assert.Equal(t, "application/octet-stream", ContentType("archive.tar.xz"))
	assert.Equal(t, "application/octet-stream", ContentType("README"))
}

func TestStatusForServiceErrors(t *testing.T) {
	v := newTestVault(t, Limits{})

	_, err := v.AccessSharedFile("missing", bob)
	assert.Equal(t, 404, vaulterr.StatusCode(err))
	assert.True(t, errors.Is(err, vaulterr.NotFoundError))
}
