package shared

import "time"

// Permissions is the set of capabilities granted to one subject on one shared
// file. Omitted fields are false.
type Permissions struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
}

type AccessGrant struct {
	FileID      string      `json:"fileId"`
	Email       string      `json:"email"`
	Permissions Permissions `json:"permissions"`
	GrantedAt   time.Time   `json:"grantedAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type EncryptResponse struct {
	FileID            string `json:"fileId"`
	Data              []byte `json:"data"`
	GeneratedPassword string `json:"generatedPassword,omitempty"`
}

type ProtectResponse struct {
	FileID   string `json:"fileId"`
	Secret   string `json:"secret"`
	URI      string `json:"uri"`
	B64Image string `json:"qrCode,omitempty"`
}

type AccessProtectedRequest struct {
	Code string `json:"code"`
}

type ProtectedFileInfo struct {
	FileID       string    `json:"fileId"`
	OriginalName string    `json:"originalName"`
	Identifier   string    `json:"identifier"`
	CreatedAt    time.Time `json:"createdAt"`
	Size         int       `json:"size"`
}

type ShareResponse struct {
	FileID string        `json:"fileId"`
	ACL    []AccessGrant `json:"acl"`
}

type GrantRequest struct {
	Email       string      `json:"email"`
	Permissions Permissions `json:"permissions"`
}

type ACLResponse struct {
	FileID string        `json:"fileId"`
	ACL    []AccessGrant `json:"acl"`
}

type SharedFileInfo struct {
	FileID       string    `json:"fileId"`
	OriginalName string    `json:"originalName"`
	OwnerEmail   string    `json:"ownerEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	Size         int       `json:"size"`
	Grants       int       `json:"grants"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ServerInfo struct {
	Version       string `json:"version"`
	MaxUploadSize int64  `json:"maxUploadSize"`
	TOTPIssuer    string `json:"totpIssuer"`
}
