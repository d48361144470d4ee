package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"pdfvault/cli/requests"
	"pdfvault/shared"
	"pdfvault/shared/endpoints"
)

// ShareFile uploads a file owned by ownerEmail, who is granted perms (or
// read-only access if perms is nil).
func (ctx *Context) ShareFile(
	file requests.Upload,
	ownerEmail string,
	perms *shared.Permissions,
) (shared.ShareResponse, error) {
	fields := map[string]string{"email": ownerEmail}
	if perms != nil {
		fields["read"] = strconv.FormatBool(perms.Read)
		fields["write"] = strconv.FormatBool(perms.Write)
		fields["delete"] = strconv.FormatBool(perms.Delete)
	}

	resp, err := requests.PostForm(endpoints.Share.Format(ctx.Server), fields, file)
	if err != nil {
		return shared.ShareResponse{}, err
	}

	var share shared.ShareResponse
	err = decodeResponse(resp, &share, http.StatusCreated)
	return share, err
}

func (ctx *Context) GrantAccess(id, email string, perms shared.Permissions) (shared.ACLResponse, error) {
	body, err := json.Marshal(shared.GrantRequest{Email: email, Permissions: perms})
	if err != nil {
		return shared.ACLResponse{}, err
	}

	resp, err := requests.PostJSON(endpoints.GrantAccess.Format(ctx.Server, id), body)
	if err != nil {
		return shared.ACLResponse{}, err
	}

	var acl shared.ACLResponse
	err = decodeResponse(resp, &acl)
	return acl, err
}

func (ctx *Context) GetAccessList(id string) (shared.ACLResponse, error) {
	resp, err := requests.GetRequest(endpoints.ListAccess.Format(ctx.Server, id))
	if err != nil {
		return shared.ACLResponse{}, err
	}

	var acl shared.ACLResponse
	err = decodeResponse(resp, &acl)
	return acl, err
}

func (ctx *Context) GetSharedFiles() ([]shared.SharedFileInfo, error) {
	resp, err := requests.GetRequest(endpoints.SharedFiles.Format(ctx.Server))
	if err != nil {
		return nil, err
	}

	var files []shared.SharedFileInfo
	err = decodeResponse(resp, &files)
	return files, err
}

// FetchSharedFile downloads a shared file as email.
func (ctx *Context) FetchSharedFile(id, email string) (File, error) {
	resp, err := requests.GetRequest(ctx.sharedFileURL(id, email))
	if err != nil {
		return File{}, err
	}

	return readFile(resp)
}

// UpdateSharedFile replaces a shared file's contents as email.
func (ctx *Context) UpdateSharedFile(id, email string, file requests.Upload) (shared.SharedFileInfo, error) {
	fileURL := endpoints.SharedFile.Format(ctx.Server, id)
	resp, err := requests.PutForm(fileURL, map[string]string{"email": email}, file)
	if err != nil {
		return shared.SharedFileInfo{}, err
	}

	var info shared.SharedFileInfo
	err = decodeResponse(resp, &info)
	return info, err
}

// DeleteSharedFile deletes a shared file as email.
func (ctx *Context) DeleteSharedFile(id, email string) error {
	resp, err := requests.DeleteRequest(ctx.sharedFileURL(id, email))
	if err != nil {
		return err
	}

	var status shared.StatusResponse
	return decodeResponse(resp, &status)
}

func (ctx *Context) sharedFileURL(id, email string) string {
	query := url.Values{"email": []string{email}}
	return endpoints.SharedFile.Format(ctx.Server, id) + "?" + query.Encode()
}
