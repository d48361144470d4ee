package api

import (
	"encoding/json"

	"pdfvault/cli/requests"
	"pdfvault/shared"
	"pdfvault/shared/endpoints"
)

// EncryptFile uploads a file for encryption. An empty password asks the
// server to generate one, which is returned in the response.
func (ctx *Context) EncryptFile(file requests.Upload, password string) (shared.EncryptResponse, error) {
	fields := map[string]string{"password": password}
	if len(password) == 0 {
		fields = map[string]string{"useRandomPassword": "true"}
	}

	url := endpoints.Encrypt.Format(ctx.Server)
	resp, err := requests.PostForm(url, fields, file)
	if err != nil {
		return shared.EncryptResponse{}, err
	}

	var encrypted shared.EncryptResponse
	err = decodeResponse(resp, &encrypted)
	return encrypted, err
}

// DecryptFile uploads an encrypted blob and returns the decrypted file.
func (ctx *Context) DecryptFile(file requests.Upload, password string) (File, error) {
	url := endpoints.Decrypt.Format(ctx.Server)
	resp, err := requests.PostForm(url, map[string]string{"password": password}, file)
	if err != nil {
		return File{}, err
	}

	return readFile(resp)
}

// ProtectFile uploads a file to be released only for a valid 2FA code.
func (ctx *Context) ProtectFile(file requests.Upload, identifier string) (shared.ProtectResponse, error) {
	url := endpoints.ProtectFile.Format(ctx.Server)
	resp, err := requests.PostForm(url, map[string]string{"identifier": identifier}, file)
	if err != nil {
		return shared.ProtectResponse{}, err
	}

	var protected shared.ProtectResponse
	err = decodeResponse(resp, &protected)
	return protected, err
}

// AccessProtectedFile fetches a protected file with a 2FA code.
func (ctx *Context) AccessProtectedFile(id, code string) (File, error) {
	body, err := json.Marshal(shared.AccessProtectedRequest{Code: code})
	if err != nil {
		return File{}, err
	}

	url := endpoints.AccessProtected.Format(ctx.Server, id)
	resp, err := requests.PostJSON(url, body)
	if err != nil {
		return File{}, err
	}

	return readFile(resp)
}

func (ctx *Context) GetProtectedFiles() ([]shared.ProtectedFileInfo, error) {
	url := endpoints.ProtectedFiles.Format(ctx.Server)
	resp, err := requests.GetRequest(url)
	if err != nil {
		return nil, err
	}

	var files []shared.ProtectedFileInfo
	err = decodeResponse(resp, &files)
	return files, err
}

func (ctx *Context) RemoveProtectedFile(id string) error {
	url := endpoints.ProtectedFile.Format(ctx.Server, id)
	resp, err := requests.DeleteRequest(url)
	if err != nil {
		return err
	}

	var status shared.StatusResponse
	return decodeResponse(resp, &status)
}
