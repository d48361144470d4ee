package api

import (
	"encoding/json"
	"io"
	"log"
	"mime"
	"net/http"

	"pdfvault/cli/utils"
)

type Context struct {
	Server string
}

func InitContext(server string) *Context {
	return &Context{Server: server}
}

// File is a file returned by the server.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// decodeResponse closes resp and decodes its JSON body into v, or returns
// the server's error if the status isn't one of the expected ones.
func decodeResponse(resp *http.Response, v any, expected ...int) error {
	defer resp.Body.Close()

	if !isExpected(resp.StatusCode, expected) {
		return utils.ParseHTTPError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		log.Println("Error decoding server response: ", err)
		return err
	}

	return nil
}

// readFile closes resp and returns its body along with the name and content
// type the server declared.
func readFile(resp *http.Response) (File, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return File{}, utils.ParseHTTPError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return File{}, err
	}

	file := File{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err == nil {
		file.Name = params["filename"]
	}

	return file, nil
}

func isExpected(status int, expected []int) bool {
	if len(expected) == 0 {
		return status == http.StatusOK
	}

	for _, code := range expected {
		if status == code {
			return true
		}
	}

	return false
}
