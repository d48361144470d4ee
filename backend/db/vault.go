package db

import (
	"fmt"
	"time"
)

// VaultEntry is a file stored through the encryption or sharing flows. For
// encrypted files Payload is IV || ciphertext and Password is the key material
// used to produce it. Shared files are stored as-is and carry an OwnerEmail.
type VaultEntry struct {
	ID           string
	OwnerEmail   string
	OriginalName string
	CreatedAt    time.Time
	Payload      []byte
	Password     string
}

func (e VaultEntry) key() string {
	return e.ID
}

func (e VaultEntry) assign(id string, created time.Time) VaultEntry {
	e.ID = id
	if e.CreatedAt.IsZero() {
		e.CreatedAt = created
	}

	return e
}

// IsShared reports whether the entry was created by the sharing flow.
func (e VaultEntry) IsShared() bool {
	return len(e.OwnerEmail) > 0
}

// String omits the password and payload so entries can be logged safely.
func (e VaultEntry) String() string {
	return fmt.Sprintf(
		"VaultEntry{ID: %s, Name: %q, Shared: %t, Size: %d}",
		e.ID, e.OriginalName, e.IsShared(), len(e.Payload))
}

type VaultStore = Store[VaultEntry]

func NewVaultStore() *VaultStore {
	return newStore[VaultEntry]("vault")
}
