package service

import (
	"fmt"
	"regexp"

	"pdfvault/backend/auth"
	"pdfvault/backend/crypto"
	"pdfvault/backend/db"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared/constants"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Limits bound the work a single request can ask for.
type Limits struct {
	MaxFileSize        int64
	RandomPasswordSize int
}

// File is a file handed back to a caller, with the content type derived from
// its stored name.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Stats struct {
	EncryptedFiles int
	SharedFiles    int
	ProtectedFiles int
	ACLs           int
}

// Vault wires the cipher engine, the file stores, the ACL and the two-factor
// gate into the operations exposed to request handlers.
type Vault struct {
	engine *crypto.Engine
	files  *db.VaultStore
	acl    *db.ACL
	gate   *auth.Gate
	limits Limits
}

func NewVault(
	engine *crypto.Engine,
	files *db.VaultStore,
	acl *db.ACL,
	gate *auth.Gate,
	limits Limits,
) *Vault {
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = constants.DefaultMaxUploadSize
	}

	if limits.RandomPasswordSize <= 0 {
		limits.RandomPasswordSize = constants.RandomPasswordSize
	}

	return &Vault{
		engine: engine,
		files:  files,
		acl:    acl,
		gate:   gate,
		limits: limits,
	}
}

// SharedFiles exposes only the shared entries of files, so the ACL refuses
// grants on password-encrypted entries.
func SharedFiles(files *db.VaultStore) db.Exister {
	return sharedIndex{files: files}
}

type sharedIndex struct {
	files *db.VaultStore
}

func (s sharedIndex) Exists(id string) bool {
	entry, err := s.files.Get(id)
	return err == nil && entry.IsShared()
}

func (v *Vault) MaxFileSize() int64 {
	return v.limits.MaxFileSize
}

// checkUpload rejects missing or oversized input before any other work.
// overhead is the number of bytes allowed past the file size limit, used for
// blobs that wrap a file of up to MaxFileSize bytes.
func (v *Vault) checkUpload(data []byte, overhead int64) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: no file uploaded", vaulterr.ValidationError)
	} else if int64(len(data)) > v.limits.MaxFileSize+overhead {
		return fmt.Errorf(
			"%w: file exceeds the %d byte limit",
			vaulterr.ValidationError,
			v.limits.MaxFileSize)
	}

	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", vaulterr.ValidationError)
	}

	return nil
}

func (v *Vault) Stats() Stats {
	stats := Stats{
		ProtectedFiles: v.gate.Len(),
		ACLs:           v.acl.Len(),
	}

	for entry := range v.files.List(nil) {
		if entry.IsShared() {
			stats.SharedFiles++
		} else {
			stats.EncryptedFiles++
		}
	}

	return stats
}
