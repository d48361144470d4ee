package endpoints

import (
	"fmt"
	"strings"
)

const apiVersion = "v1"

type Endpoint string

var (
	Encrypt = genEndpoint("/api/%s/vault/encrypt")
	Decrypt = genEndpoint("/api/%s/vault/decrypt")

	ProtectFile     = genEndpoint("/api/%s/vault/2fa/protect")
	AccessProtected = genEndpoint("/api/%s/vault/2fa/access/*")
	ProtectedFiles  = genEndpoint("/api/%s/vault/2fa/files")
	ProtectedFile   = genEndpoint("/api/%s/vault/2fa/files/*")

	Share       = genEndpoint("/api/%s/vault/share")
	SharedFiles = genEndpoint("/api/%s/vault/shared")
	SharedFile  = genEndpoint("/api/%s/vault/share/*")
	GrantAccess = genEndpoint("/api/%s/vault/share/*/grant")
	ListAccess  = genEndpoint("/api/%s/vault/share/*/acl")

	ServerInfo = genEndpoint("/api/%s/info")
	Up         = genEndpoint("/up")
)

func genEndpoint(fmtStr string) Endpoint {
	if !strings.Contains(fmtStr, "%s") {
		return Endpoint(fmtStr)
	}

	return Endpoint(fmt.Sprintf(fmtStr, apiVersion))
}

// Format fills the endpoint's wildcards with args (in order) and prefixes the
// result with the server address.
func (e Endpoint) Format(server string, args ...string) string {
	strEndpoint := string(e)
	for _, arg := range args {
		strEndpoint = strings.Replace(strEndpoint, "*", arg, 1)
	}

	// Remove remaining wildcards
	strEndpoint = strings.ReplaceAll(strEndpoint, "*", "")

	server = strings.TrimSuffix(server, "/")
	strEndpoint = strings.TrimPrefix(strEndpoint, "/")
	url := fmt.Sprintf("%s/%s", server, strEndpoint)
	return url
}
