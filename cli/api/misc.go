package api

import (
	"pdfvault/cli/requests"
	"pdfvault/shared"
	"pdfvault/shared/endpoints"
)

// GetServerInfo returns information about the current vault server
func (ctx *Context) GetServerInfo() (shared.ServerInfo, error) {
	url := endpoints.ServerInfo.Format(ctx.Server)
	resp, err := requests.GetRequest(url)
	if err != nil {
		return shared.ServerInfo{}, err
	}

	var serverInfo shared.ServerInfo
	err = decodeResponse(resp, &serverInfo)
	return serverInfo, err
}
