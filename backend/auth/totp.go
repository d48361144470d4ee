package auth

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"pdfvault/backend/crypto"
	"pdfvault/backend/db"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared"
	"pdfvault/shared/constants"
)

var Missing2FAErr = fmt.Errorf("%w: 2FA code is required", vaulterr.ValidationError)
var Failed2FAErr = fmt.Errorf("%w: incorrect 2FA code", vaulterr.AuthError)

var validateOpts = totp.ValidateOpts{
	Period:    constants.TOTPPeriod,
	Skew:      constants.TOTPSkew,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Issued is returned once, when a file is first protected. The secret is
// handed back so the caller can show it next to the QR code.
type Issued struct {
	FileID string
	Secret string
	URI    string
}

// Gate guards files behind RFC 6238 codes. Every file gets its own secret at
// issue time, and verification is a pure check against that secret.
type Gate struct {
	store  *db.TwoFactorStore
	issuer string
	now    func() time.Time
}

func NewGate(store *db.TwoFactorStore, issuer string) *Gate {
	if len(issuer) == 0 {
		issuer = constants.DefaultTOTPIssuer
	}

	return &Gate{
		store:  store,
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue stores fileBytes under a new id with a fresh 160-bit secret and
// returns the secret along with an otpauth:// provisioning URI labelled with
// identifier.
func (g *Gate) Issue(identifier, originalName string, fileBytes []byte) (Issued, error) {
	identifier = strings.TrimSpace(identifier)
	if len(identifier) == 0 {
		return Issued{}, fmt.Errorf("%w: identifier is required", vaulterr.ValidationError)
	} else if len(fileBytes) == 0 {
		return Issued{}, fmt.Errorf("%w: file is empty", vaulterr.ValidationError)
	}

	if len(originalName) == 0 {
		originalName = constants.DefaultFileName
	}

	secret, err := crypto.RandomBytes(int(constants.TOTPSecretSize))
	if err != nil {
		return Issued{}, fmt.Errorf("%w: %v", vaulterr.InternalError, err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.issuer,
		AccountName: identifier,
		Period:      constants.TOTPPeriod,
		SecretSize:  constants.TOTPSecretSize,
		Secret:      secret,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Issued{}, fmt.Errorf("%w: %v", vaulterr.InternalError, err)
	}

	id, err := g.store.Put(db.TwoFactorEntry{
		OriginalName: originalName,
		FileBytes:    fileBytes,
		Identifier:   identifier,
		Secret:       key.Secret(),
	})
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		FileID: id,
		Secret: key.Secret(),
		URI:    key.URL(),
	}, nil
}

// Verify checks code against the file's secret for the current 30 second
// step and one step either side. The comparison is constant time. On success
// the stored entry is returned.
func (g *Gate) Verify(fileID, code string) (db.TwoFactorEntry, error) {
	entry, err := g.store.Get(fileID)
	if err != nil {
		return db.TwoFactorEntry{}, err
	}

	code = strings.TrimSpace(code)
	if len(code) == 0 {
		return db.TwoFactorEntry{}, Missing2FAErr
	} else if len(code) != constants.TOTPCodeLen {
		return db.TwoFactorEntry{}, Failed2FAErr
	}

	valid, err := totp.ValidateCustom(code, entry.Secret, g.now().UTC(), validateOpts)
	if err != nil || !valid {
		return db.TwoFactorEntry{}, Failed2FAErr
	}

	return entry, nil
}

// List describes every protected file without exposing secrets or contents.
func (g *Gate) List() iter.Seq[shared.ProtectedFileInfo] {
	return func(yield func(shared.ProtectedFileInfo) bool) {
		for entry := range g.store.List(nil) {
			info := shared.ProtectedFileInfo{
				FileID:       entry.ID,
				OriginalName: entry.OriginalName,
				Identifier:   entry.Identifier,
				CreatedAt:    entry.CreatedAt,
				Size:         len(entry.FileBytes),
			}

			if !yield(info) {
				return
			}
		}
	}
}

func (g *Gate) Remove(fileID string) error {
	return g.store.Delete(fileID)
}

func (g *Gate) Len() int {
	return g.store.Len()
}
