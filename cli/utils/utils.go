package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"pdfvault/shared"
)

// ParseHTTPError turns a non-2xx response into an error carrying the
// server's message, falling back to the HTTP status text.
func ParseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return fmt.Errorf("server responded with %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var errResp shared.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && len(errResp.Error) > 0 {
		return fmt.Errorf("server error %d: %s", resp.StatusCode, errResp.Error)
	}

	return fmt.Errorf("server error %d: %s",
		resp.StatusCode, strings.TrimSpace(string(body)))
}

func CopyToFile(contents string, to string) error {
	return CopyBytesToFile([]byte(contents), to)
}

func CopyBytesToFile(contents []byte, to string) error {
	return os.WriteFile(to, contents, 0644)
}

// OutputPath picks the path a downloaded file is written to. An explicit
// path wins; otherwise the file's own name is used, refusing to overwrite an
// existing file. Only the base of the file's name is used.
func OutputPath(explicit, name string) (string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}

	// Server supplied names never pick a directory
	name = filepath.Base(name)
	if len(name) == 0 || name == "." || name == string(filepath.Separator) {
		return "", errors.New("no output path given and the server sent no file name")
	}

	if _, err := os.Stat(name); err == nil {
		return "", fmt.Errorf("%s already exists, use --out to choose a path", name)
	}

	return name, nil
}
