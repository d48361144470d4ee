package service

import (
	"context"
	"crypto/aes"
	"fmt"

	"pdfvault/backend/crypto"
	"pdfvault/backend/db"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared/constants"
)

// maxBlobOverhead is the IV plus at most one full block of padding.
const maxBlobOverhead = int64(constants.IVSize + aes.BlockSize)

type EncryptRequest struct {
	Data              []byte
	Name              string
	Password          string
	UseRandomPassword bool
}

// EncryptResult carries the encrypted blob. GeneratedPassword is only set
// when the caller asked for a random password, and is reported only here.
type EncryptResult struct {
	FileID            string
	Blob              []byte
	GeneratedPassword string
}

// EncryptFile encrypts an uploaded file with the caller's password (or a
// generated one) and keeps the result in the vault.
func (v *Vault) EncryptFile(ctx context.Context, req EncryptRequest) (EncryptResult, error) {
	if err := v.checkUpload(req.Data, 0); err != nil {
		return EncryptResult{}, err
	}

	password := req.Password
	var generated string
	if req.UseRandomPassword {
		var err error
		generated, err = crypto.GenerateRandomSecret(v.limits.RandomPasswordSize)
		if err != nil {
			return EncryptResult{}, err
		}

		password = generated
	} else if len(password) == 0 {
		return EncryptResult{}, fmt.Errorf(
			"%w: a password is required unless a random password is requested",
			vaulterr.ValidationError)
	}

	blob, err := v.engine.Encrypt(ctx, req.Data, []byte(password))
	if err != nil {
		return EncryptResult{}, err
	}

	name := req.Name
	if len(name) == 0 {
		name = constants.DefaultFileName
	}

	id, err := v.files.Put(db.VaultEntry{
		OriginalName: name,
		Payload:      blob,
		Password:     password,
	})
	if err != nil {
		return EncryptResult{}, err
	}

	return EncryptResult{
		FileID:            id,
		Blob:              blob,
		GeneratedPassword: generated,
	}, nil
}

// DecryptFile decrypts an IV || ciphertext blob. Wrong passwords and
// corrupted data both come back as vaulterr.DecryptionError.
func (v *Vault) DecryptFile(ctx context.Context, blob []byte, password string) ([]byte, error) {
	if err := v.checkUpload(blob, maxBlobOverhead); err != nil {
		return nil, err
	} else if len(password) == 0 {
		return nil, fmt.Errorf("%w: password is required", vaulterr.ValidationError)
	}

	return v.engine.Decrypt(ctx, blob, []byte(password))
}
