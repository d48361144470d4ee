package service

import (
	"slices"

	"pdfvault/backend/auth"
	"pdfvault/shared"
)

// ProtectFile stores a file behind a new TOTP secret. The file itself is not
// encrypted; only access to it is gated.
func (v *Vault) ProtectFile(data []byte, name, identifier string) (auth.Issued, error) {
	if err := v.checkUpload(data, 0); err != nil {
		return auth.Issued{}, err
	}

	return v.gate.Issue(identifier, name, data)
}

func (v *Vault) AccessProtectedFile(fileID, code string) (File, error) {
	entry, err := v.gate.Verify(fileID, code)
	if err != nil {
		return File{}, err
	}

	return File{
		Name:        entry.OriginalName,
		ContentType: ContentType(entry.OriginalName),
		Data:        entry.FileBytes,
	}, nil
}

// ListProtectedFiles returns protected file metadata, oldest first.
func (v *Vault) ListProtectedFiles() []shared.ProtectedFileInfo {
	files := slices.Collect(v.gate.List())
	if files == nil {
		return []shared.ProtectedFileInfo{}
	}

	slices.SortFunc(files, func(a, b shared.ProtectedFileInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return files
}

func (v *Vault) RemoveProtectedFile(fileID string) error {
	return v.gate.Remove(fileID)
}
