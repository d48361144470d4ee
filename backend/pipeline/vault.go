package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pdfvault/backend/auth"
	"pdfvault/backend/service"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared"
	"pdfvault/shared/constants"
)

// Parameter names shared by every transport.
const (
	ParamID          = "id"
	ParamPassword    = "password"
	ParamRandom      = "useRandomPassword"
	ParamIdentifier  = "identifier"
	ParamCode        = "code"
	ParamEmail       = "email"
	ParamRead        = "read"
	ParamWrite       = "write"
	ParamDelete      = "delete"
	decryptedPrefix  = "decrypted-"
	encryptedSuffix  = ".enc"
	missingFileError = "no file uploaded"
)

// QRRenderer turns a provisioning URI into a base64 encoded image.
type QRRenderer interface {
	Render(uri string) (string, error)
}

type fileRequest struct {
	id    string
	email string
	file  Upload
}

type grantRequest struct {
	id    string
	email string
	perms shared.Permissions
}

func requireFile(in Input) (Upload, error) {
	if in.File == nil || len(in.File.Data) == 0 {
		return Upload{}, fmt.Errorf("%w: %s", vaulterr.ValidationError, missingFileError)
	}

	return *in.File, nil
}

func requireParam(in Input, key string) (string, error) {
	value := in.Param(key)
	if len(value) == 0 {
		return "", fmt.Errorf("%w: missing %s", vaulterr.ValidationError, key)
	}

	return value, nil
}

// permissions reads read/write/delete flags. It returns nil if none of them
// were provided so callers can apply their own default.
func permissions(in Input) *shared.Permissions {
	_, hasRead := in.Params[ParamRead]
	_, hasWrite := in.Params[ParamWrite]
	_, hasDelete := in.Params[ParamDelete]
	if !hasRead && !hasWrite && !hasDelete {
		return nil
	}

	return &shared.Permissions{
		Read:   in.Flag(ParamRead),
		Write:  in.Flag(ParamWrite),
		Delete: in.Flag(ParamDelete),
	}
}

// Encrypt encrypts an uploaded file and responds with the blob and its id.
func Encrypt(v *service.Vault) Pipeline[service.EncryptRequest, service.EncryptResult] {
	return Pipeline[service.EncryptRequest, service.EncryptResult]{
		Decode: func(in Input) (service.EncryptRequest, error) {
			file, err := requireFile(in)
			if err != nil {
				return service.EncryptRequest{}, err
			}

			return service.EncryptRequest{
				Data:              file.Data,
				Name:              file.Name,
				Password:          in.Params[ParamPassword],
				UseRandomPassword: in.Flag(ParamRandom),
			}, nil
		},
		Validate: func(req service.EncryptRequest) error {
			if !req.UseRandomPassword && len(req.Password) == 0 {
				return fmt.Errorf("%w: missing %s", vaulterr.ValidationError, ParamPassword)
			}

			return nil
		},
		Invoke: v.EncryptFile,
		Format: func(res service.EncryptResult) (Output, error) {
			return JSON(http.StatusOK, shared.EncryptResponse{
				FileID:            res.FileID,
				Data:              res.Blob,
				GeneratedPassword: res.GeneratedPassword,
			})
		},
	}
}

type decryptRequest struct {
	file     Upload
	password string
}

// Decrypt decrypts an uploaded IV || ciphertext blob and responds with the
// plaintext as a file.
func Decrypt(v *service.Vault) Pipeline[decryptRequest, service.File] {
	return Pipeline[decryptRequest, service.File]{
		Decode: func(in Input) (decryptRequest, error) {
			file, err := requireFile(in)
			if err != nil {
				return decryptRequest{}, err
			}

			password, err := requireParam(in, ParamPassword)
			if err != nil {
				return decryptRequest{}, err
			}

			return decryptRequest{file: file, password: password}, nil
		},
		Invoke: func(ctx context.Context, req decryptRequest) (service.File, error) {
			plaintext, err := v.DecryptFile(ctx, req.file.Data, req.password)
			if err != nil {
				return service.File{}, err
			}

			name := decryptedName(req.file.Name)
			return service.File{
				Name:        name,
				ContentType: service.ContentType(name),
				Data:        plaintext,
			}, nil
		},
		Format: formatFile,
	}
}

type protectRequest struct {
	file       Upload
	identifier string
}

// Protect stores an uploaded file behind a new TOTP secret. The response
// carries the secret, its provisioning URI and a QR code of the URI.
func Protect(v *service.Vault, qr QRRenderer) Pipeline[protectRequest, auth.Issued] {
	return Pipeline[protectRequest, auth.Issued]{
		Decode: func(in Input) (protectRequest, error) {
			file, err := requireFile(in)
			if err != nil {
				return protectRequest{}, err
			}

			identifier, err := requireParam(in, ParamIdentifier)
			if err != nil {
				return protectRequest{}, err
			}

			return protectRequest{file: file, identifier: identifier}, nil
		},
		Invoke: func(_ context.Context, req protectRequest) (auth.Issued, error) {
			return v.ProtectFile(req.file.Data, req.file.Name, req.identifier)
		},
		Format: func(issued auth.Issued) (Output, error) {
			image, err := qr.Render(issued.URI)
			if err != nil {
				return Output{}, fmt.Errorf("%w: rendering qr code: %v", vaulterr.InternalError, err)
			}

			return JSON(http.StatusOK, shared.ProtectResponse{
				FileID:   issued.FileID,
				Secret:   issued.Secret,
				URI:      issued.URI,
				B64Image: image,
			})
		},
	}
}

type accessRequest struct {
	id   string
	code string
}

// AccessProtected releases a protected file for a valid TOTP code.
func AccessProtected(v *service.Vault) Pipeline[accessRequest, service.File] {
	return Pipeline[accessRequest, service.File]{
		Decode: func(in Input) (accessRequest, error) {
			id, err := requireParam(in, ParamID)
			if err != nil {
				return accessRequest{}, err
			}

			code := in.Param(ParamCode)
			if len(code) == 0 && len(in.Body) > 0 {
				var body shared.AccessProtectedRequest
				if err = json.Unmarshal(in.Body, &body); err != nil {
					return accessRequest{}, fmt.Errorf("%w: malformed body", vaulterr.ValidationError)
				}

				code = strings.TrimSpace(body.Code)
			}

			return accessRequest{id: id, code: code}, nil
		},
		Invoke: func(_ context.Context, req accessRequest) (service.File, error) {
			return v.AccessProtectedFile(req.id, req.code)
		},
		Format: formatFile,
	}
}

// ListProtected lists the metadata of every protected file.
func ListProtected(v *service.Vault) Pipeline[struct{}, []shared.ProtectedFileInfo] {
	return Pipeline[struct{}, []shared.ProtectedFileInfo]{
		Decode: func(Input) (struct{}, error) {
			return struct{}{}, nil
		},
		Invoke: func(context.Context, struct{}) ([]shared.ProtectedFileInfo, error) {
			return v.ListProtectedFiles(), nil
		},
	}
}

// RemoveProtected deletes a protected file and its secret.
func RemoveProtected(v *service.Vault) Pipeline[string, shared.StatusResponse] {
	return Pipeline[string, shared.StatusResponse]{
		Decode: func(in Input) (string, error) {
			return requireParam(in, ParamID)
		},
		Invoke: func(_ context.Context, id string) (shared.StatusResponse, error) {
			if err := v.RemoveProtectedFile(id); err != nil {
				return shared.StatusResponse{}, err
			}

			return shared.StatusResponse{Status: "removed"}, nil
		},
	}
}

type shareRequest struct {
	file  Upload
	email string
	perms *shared.Permissions
}

// Share stores an uploaded file for sharing and grants its owner access.
func Share(v *service.Vault) Pipeline[shareRequest, shared.ShareResponse] {
	return Pipeline[shareRequest, shared.ShareResponse]{
		Decode: func(in Input) (shareRequest, error) {
			file, err := requireFile(in)
			if err != nil {
				return shareRequest{}, err
			}

			email, err := requireParam(in, ParamEmail)
			if err != nil {
				return shareRequest{}, err
			}

			return shareRequest{file: file, email: email, perms: permissions(in)}, nil
		},
		Invoke: func(_ context.Context, req shareRequest) (shared.ShareResponse, error) {
			return v.ShareFile(req.file.Data, req.file.Name, req.email, req.perms)
		},
		Format: func(res shared.ShareResponse) (Output, error) {
			return JSON(http.StatusCreated, res)
		},
	}
}

// Grant sets a subject's permissions on a shared file. The subject and
// permissions are read from a JSON body if one was sent, otherwise from
// parameters.
func Grant(v *service.Vault) Pipeline[grantRequest, shared.ACLResponse] {
	return Pipeline[grantRequest, shared.ACLResponse]{
		Decode: func(in Input) (grantRequest, error) {
			id, err := requireParam(in, ParamID)
			if err != nil {
				return grantRequest{}, err
			}

			if len(in.Body) > 0 {
				var body shared.GrantRequest
				if err = json.Unmarshal(in.Body, &body); err != nil {
					return grantRequest{}, fmt.Errorf("%w: malformed body", vaulterr.ValidationError)
				}

				return grantRequest{id: id, email: body.Email, perms: body.Permissions}, nil
			}

			req := grantRequest{id: id, email: in.Param(ParamEmail)}
			if perms := permissions(in); perms != nil {
				req.perms = *perms
			}

			return req, nil
		},
		Validate: func(req grantRequest) error {
			if len(strings.TrimSpace(req.email)) == 0 {
				return fmt.Errorf("%w: missing %s", vaulterr.ValidationError, ParamEmail)
			}

			return nil
		},
		Invoke: func(_ context.Context, req grantRequest) (shared.ACLResponse, error) {
			acl, err := v.GrantAccess(req.id, req.email, req.perms)
			if err != nil {
				return shared.ACLResponse{}, err
			}

			return shared.ACLResponse{FileID: req.id, ACL: acl}, nil
		},
	}
}

// ListAccess returns the ACL of a shared file.
func ListAccess(v *service.Vault) Pipeline[string, shared.ACLResponse] {
	return Pipeline[string, shared.ACLResponse]{
		Decode: func(in Input) (string, error) {
			return requireParam(in, ParamID)
		},
		Invoke: func(_ context.Context, id string) (shared.ACLResponse, error) {
			return shared.ACLResponse{FileID: id, ACL: v.ListAccess(id)}, nil
		},
	}
}

// ListShared summarizes every shared file.
func ListShared(v *service.Vault) Pipeline[struct{}, []shared.SharedFileInfo] {
	return Pipeline[struct{}, []shared.SharedFileInfo]{
		Decode: func(Input) (struct{}, error) {
			return struct{}{}, nil
		},
		Invoke: func(context.Context, struct{}) ([]shared.SharedFileInfo, error) {
			return v.ListSharedFiles(), nil
		},
	}
}

func decodeSharedRequest(in Input, withFile bool) (fileRequest, error) {
	id, err := requireParam(in, ParamID)
	if err != nil {
		return fileRequest{}, err
	}

	email, err := requireParam(in, ParamEmail)
	if err != nil {
		return fileRequest{}, err
	}

	req := fileRequest{id: id, email: email}
	if withFile {
		if req.file, err = requireFile(in); err != nil {
			return fileRequest{}, err
		}
	}

	return req, nil
}

// AccessShared returns a shared file to a requester with read access.
func AccessShared(v *service.Vault) Pipeline[fileRequest, service.File] {
	return Pipeline[fileRequest, service.File]{
		Decode: func(in Input) (fileRequest, error) {
			return decodeSharedRequest(in, false)
		},
		Invoke: func(_ context.Context, req fileRequest) (service.File, error) {
			return v.AccessSharedFile(req.id, req.email)
		},
		Format: formatFile,
	}
}

// UpdateShared replaces a shared file's contents for a requester with write
// access.
func UpdateShared(v *service.Vault) Pipeline[fileRequest, shared.SharedFileInfo] {
	return Pipeline[fileRequest, shared.SharedFileInfo]{
		Decode: func(in Input) (fileRequest, error) {
			return decodeSharedRequest(in, true)
		},
		Invoke: func(_ context.Context, req fileRequest) (shared.SharedFileInfo, error) {
			return v.UpdateSharedFile(req.id, req.email, req.file.Data)
		},
	}
}

// DeleteShared removes a shared file for a requester with delete access.
func DeleteShared(v *service.Vault) Pipeline[fileRequest, shared.StatusResponse] {
	return Pipeline[fileRequest, shared.StatusResponse]{
		Decode: func(in Input) (fileRequest, error) {
			return decodeSharedRequest(in, false)
		},
		Invoke: func(_ context.Context, req fileRequest) (shared.StatusResponse, error) {
			if err := v.DeleteSharedFile(req.id, req.email); err != nil {
				return shared.StatusResponse{}, err
			}

			return shared.StatusResponse{Status: "deleted"}, nil
		},
	}
}

func formatFile(file service.File) (Output, error) {
	return File(file.Name, file.ContentType, file.Data), nil
}

func decryptedName(name string) string {
	name = strings.TrimSuffix(name, encryptedSuffix)
	if len(name) == 0 {
		name = constants.DefaultFileName
	}

	return decryptedPrefix + name
}
