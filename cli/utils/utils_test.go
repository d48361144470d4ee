package utils

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseHTTPError(t *testing.T) {
	err := ParseHTTPError(response(http.StatusForbidden, `{"error":"permission denied"}`))
	assert.EqualError(t, err, "server error 403: permission denied")

	err = ParseHTTPError(response(http.StatusNotFound, "404 page not found\n"))
	assert.EqualError(t, err, "server error 404: 404 page not found")

	err = ParseHTTPError(response(http.StatusBadGateway, ""))
	assert.EqualError(t, err, "server responded with 502 Bad Gateway")
}

func TestOutputPath(t *testing.T) {
	t.Chdir(t.TempDir())
	existing := "exists.pdf"
	require.NoError(t, CopyToFile("data", existing))

	path, err := OutputPath("out.pdf", existing)
	require.NoError(t, err)
	assert.Equal(t, "out.pdf", path)

	_, err = OutputPath("", existing)
	assert.Error(t, err)

	_, err = OutputPath("", "")
	assert.Error(t, err)

	path, err = OutputPath("", filepath.Join("..", "..", "fresh.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "fresh.pdf", path)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
