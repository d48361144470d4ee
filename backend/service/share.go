package service

import (
	"fmt"
	"log"
	"slices"

	"pdfvault/backend/db"
	"pdfvault/backend/utils"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared"
	"pdfvault/shared/constants"
)

// ShareFile stores a file for sharing and grants its owner an initial set of
// permissions (read-only if perms is nil). Shared files are stored as
// uploaded, without encryption.
func (v *Vault) ShareFile(
	data []byte,
	name string,
	ownerEmail string,
	perms *shared.Permissions,
) (shared.ShareResponse, error) {
	if err := v.checkUpload(data, 0); err != nil {
		return shared.ShareResponse{}, err
	}

	ownerEmail = db.NormalizeEmail(ownerEmail)
	if err := validateEmail(ownerEmail); err != nil {
		return shared.ShareResponse{}, err
	}

	if len(name) == 0 {
		name = constants.DefaultFileName
	}

	id, err := v.files.Put(db.VaultEntry{
		OwnerEmail:   ownerEmail,
		OriginalName: name,
		Payload:      data,
	})
	if err != nil {
		return shared.ShareResponse{}, err
	}

	initial := db.ReadOnly
	if perms != nil {
		initial = *perms
	}

	_, err = v.acl.Grant(id, ownerEmail, initial)
	if err != nil {
		_ = v.files.Delete(id)
		return shared.ShareResponse{}, err
	}

	log.Printf("Shared file %s (owner %s)\n", id, utils.Fingerprint(ownerEmail))
	return shared.ShareResponse{FileID: id, ACL: v.acl.List(id)}, nil
}

// GrantAccess sets email's permissions on a shared file and returns the
// updated ACL. Repeating a grant updates the existing entry.
func (v *Vault) GrantAccess(fileID, email string, perms shared.Permissions) ([]shared.AccessGrant, error) {
	email = db.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if _, err := v.sharedEntry(fileID); err != nil {
		return nil, err
	}

	if _, err := v.acl.Grant(fileID, email, perms); err != nil {
		return nil, err
	}

	return v.acl.List(fileID), nil
}

// AccessSharedFile returns a shared file to a requester holding read
// permission.
func (v *Vault) AccessSharedFile(fileID, email string) (File, error) {
	entry, err := v.authorize(fileID, email, db.CapRead)
	if err != nil {
		return File{}, err
	}

	return File{
		Name:        entry.OriginalName,
		ContentType: ContentType(entry.OriginalName),
		Data:        entry.Payload,
	}, nil
}

// UpdateSharedFile replaces a shared file's contents for a requester holding
// write permission. The file keeps its id, owner and ACL.
func (v *Vault) UpdateSharedFile(fileID, email string, data []byte) (shared.SharedFileInfo, error) {
	if err := v.checkUpload(data, 0); err != nil {
		return shared.SharedFileInfo{}, err
	}

	entry, err := v.authorize(fileID, email, db.CapWrite)
	if err != nil {
		return shared.SharedFileInfo{}, err
	}

	entry.Payload = data
	if err = v.files.Replace(entry); err != nil {
		return shared.SharedFileInfo{}, err
	}

	return v.sharedInfo(entry), nil
}

// DeleteSharedFile removes a shared file and its ACL for a requester holding
// delete permission.
func (v *Vault) DeleteSharedFile(fileID, email string) error {
	if _, err := v.authorize(fileID, email, db.CapDelete); err != nil {
		return err
	}

	if err := v.files.Delete(fileID); err != nil {
		return err
	}

	v.acl.Drop(fileID)
	log.Printf("Deleted shared file %s\n", fileID)
	return nil
}

// ListAccess returns the ACL of a file. Unknown files have an empty ACL.
func (v *Vault) ListAccess(fileID string) []shared.AccessGrant {
	return v.acl.List(fileID)
}

// ListSharedFiles summarizes every shared file, oldest first.
func (v *Vault) ListSharedFiles() []shared.SharedFileInfo {
	files := []shared.SharedFileInfo{}
	for entry := range v.files.List(db.VaultEntry.IsShared) {
		files = append(files, v.sharedInfo(entry))
	}

	slices.SortFunc(files, func(a, b shared.SharedFileInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return files
}

func (v *Vault) sharedEntry(fileID string) (db.VaultEntry, error) {
	entry, err := v.files.Get(fileID)
	if err != nil {
		return db.VaultEntry{}, err
	} else if !entry.IsShared() {
		return db.VaultEntry{}, fmt.Errorf("%w: shared file %q", vaulterr.NotFoundError, fileID)
	}

	return entry, nil
}

// authorize looks up a shared file and checks that email holds capability on
// it. Unknown files are reported as not found, known files without the
// capability as a permission error.
func (v *Vault) authorize(fileID, email string, capability db.Capability) (db.VaultEntry, error) {
	entry, err := v.sharedEntry(fileID)
	if err != nil {
		return db.VaultEntry{}, err
	}

	if !v.acl.Check(fileID, email, capability) {
		log.Printf("Denied %s on %s to %s\n",
			capability, fileID, utils.Fingerprint(email))
		return db.VaultEntry{}, fmt.Errorf(
			"%w: %s access to file %q",
			vaulterr.PermissionError,
			capability,
			fileID)
	}

	return entry, nil
}

func (v *Vault) sharedInfo(entry db.VaultEntry) shared.SharedFileInfo {
	return shared.SharedFileInfo{
		FileID:       entry.ID,
		OriginalName: entry.OriginalName,
		OwnerEmail:   entry.OwnerEmail,
		CreatedAt:    entry.CreatedAt,
		Size:         len(entry.Payload),
		Grants:       v.acl.Count(entry.ID),
	}
}
