package db

import (
	"fmt"
	"time"
)

// TwoFactorEntry is a file released only to a caller with a valid TOTP code.
// FileBytes are kept in plaintext: the gate controls access, it does not
// encrypt.
type TwoFactorEntry struct {
	ID           string
	OriginalName string
	FileBytes    []byte
	Identifier   string
	Secret       string
	CreatedAt    time.Time
}

func (e TwoFactorEntry) key() string {
	return e.ID
}

func (e TwoFactorEntry) assign(id string, created time.Time) TwoFactorEntry {
	e.ID = id
	if e.CreatedAt.IsZero() {
		e.CreatedAt = created
	}

	return e
}

// String omits the TOTP secret and file contents.
func (e TwoFactorEntry) String() string {
	return fmt.Sprintf(
		"TwoFactorEntry{ID: %s, Name: %q, Size: %d}",
		e.ID, e.OriginalName, len(e.FileBytes))
}

type TwoFactorStore = Store[TwoFactorEntry]

func NewTwoFactorStore() *TwoFactorStore {
	return newStore[TwoFactorEntry]("2fa")
}
