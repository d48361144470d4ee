package db

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"pdfvault/backend/vaulterr"
	"pdfvault/shared"
)

type Capability string

const (
	CapRead   Capability = "read"
	CapWrite  Capability = "write"
	CapDelete Capability = "delete"
)

// Allows reports whether perms includes the capability.
func Allows(perms shared.Permissions, capability Capability) bool {
	switch capability {
	case CapRead:
		return perms.Read
	case CapWrite:
		return perms.Write
	case CapDelete:
		return perms.Delete
	}

	return false
}

// ReadOnly is the default grant given to the owner of a newly shared file.
var ReadOnly = shared.Permissions{Read: true}

// Exister reports whether a file id is known. The ACL uses it to refuse
// grants on files that don't exist.
type Exister interface {
	Exists(id string) bool
}

type fileACL struct {
	mu      sync.Mutex
	grants  []*shared.AccessGrant
	byEmail map[string]int
	dropped bool
}

// ACL holds the access grants of every shared file. Each file's list has its
// own lock, so grants on one file never wait on another.
type ACL struct {
	files Exister
	lists *shardedMap[*fileACL]
	now   func() time.Time
}

func NewACL(files Exister) *ACL {
	return &ACL{
		files: files,
		lists: newShardedMap[*fileACL](),
		now:   time.Now,
	}
}

// NormalizeEmail trims and lower-cases an email so grants are keyed
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Grant sets the permissions of email on fileID. An existing grant for the
// pair is updated in place; otherwise a new grant is appended.
func (a *ACL) Grant(fileID, email string, perms shared.Permissions) (shared.AccessGrant, error) {
	email = NormalizeEmail(email)
	if len(email) == 0 {
		return shared.AccessGrant{}, fmt.Errorf("%w: email is required", vaulterr.ValidationError)
	} else if !a.files.Exists(fileID) {
		return shared.AccessGrant{}, fmt.Errorf("%w: shared file %q", vaulterr.NotFoundError, fileID)
	}

	list := a.lists.LoadOrStore(fileID, func() *fileACL {
		return &fileACL{byEmail: make(map[string]int)}
	})

	list.mu.Lock()
	defer list.mu.Unlock()

	// The file may have been deleted between the existence check and
	// acquiring the list.
	if list.dropped || !a.files.Exists(fileID) {
		list.dropped = true
		a.lists.DeleteIf(fileID, func(current *fileACL) bool {
			return current == list
		})
		return shared.AccessGrant{}, fmt.Errorf("%w: shared file %q", vaulterr.NotFoundError, fileID)
	}

	now := a.now()
	if i, ok := list.byEmail[email]; ok {
		grant := list.grants[i]
		grant.Permissions = perms
		grant.UpdatedAt = now
		return *grant, nil
	}

	grant := &shared.AccessGrant{
		FileID:      fileID,
		Email:       email,
		Permissions: perms,
		GrantedAt:   now,
		UpdatedAt:   now,
	}

	list.byEmail[email] = len(list.grants)
	list.grants = append(list.grants, grant)
	return *grant, nil
}

// Check reports whether email holds capability on fileID. A missing grant is
// not an error, it's just false.
func (a *ACL) Check(fileID, email string, capability Capability) bool {
	list, ok := a.lists.Load(fileID)
	if !ok {
		return false
	}

	list.mu.Lock()
	defer list.mu.Unlock()

	i, ok := list.byEmail[NormalizeEmail(email)]
	if !ok || list.dropped {
		return false
	}

	return Allows(list.grants[i].Permissions, capability)
}

// List returns a copy of the grants on fileID, in the order each subject was
// first granted access.
func (a *ACL) List(fileID string) []shared.AccessGrant {
	list, ok := a.lists.Load(fileID)
	if !ok {
		return []shared.AccessGrant{}
	}

	list.mu.Lock()
	defer list.mu.Unlock()

	grants := make([]shared.AccessGrant, 0, len(list.grants))
	for _, grant := range list.grants {
		grants = append(grants, *grant)
	}

	return grants
}

// Count returns the number of grants on fileID.
func (a *ACL) Count(fileID string) int {
	list, ok := a.lists.Load(fileID)
	if !ok {
		return 0
	}

	list.mu.Lock()
	defer list.mu.Unlock()
	return len(list.grants)
}

// Drop removes every grant on fileID. Called after the file is deleted.
func (a *ACL) Drop(fileID string) {
	list, ok := a.lists.Load(fileID)
	if !ok {
		return
	}

	list.mu.Lock()
	list.dropped = true
	list.mu.Unlock()

	a.lists.DeleteIf(fileID, func(current *fileACL) bool {
		return current == list
	})
}

func (a *ACL) Len() int {
	return a.lists.Len()
}
