package requests

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"

	"pdfvault/shared/constants"
)

// Upload is a file sent as the "file" field of a multipart form.
type Upload struct {
	Name string
	Data []byte
}

func GetRequest(url string) (*http.Response, error) {
	return sendRequest(http.MethodGet, url, "", nil)
}

func DeleteRequest(url string) (*http.Response, error) {
	return sendRequest(http.MethodDelete, url, "", nil)
}

// PostJSON sends an already encoded JSON body.
func PostJSON(url string, data []byte) (*http.Response, error) {
	return sendRequest(http.MethodPost, url, "application/json", bytes.NewReader(data))
}

func PostForm(url string, fields map[string]string, file Upload) (*http.Response, error) {
	return sendForm(http.MethodPost, url, fields, file)
}

func PutForm(url string, fields map[string]string, file Upload) (*http.Response, error) {
	return sendForm(http.MethodPut, url, fields, file)
}

func sendForm(method, url string, fields map[string]string, file Upload) (*http.Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, err
	}

	if _, err = part.Write(file.Data); err != nil {
		return nil, err
	}

	if err = writer.Close(); err != nil {
		return nil, err
	}

	return sendRequest(method, url, writer.FormDataContentType(), &buf)
}

func sendRequest(method, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}

	if len(contentType) > 0 {
		req.Header.Set("Content-Type", contentType)
	}

	req.Header.Set("User-Agent", constants.CLIUserAgent)

	resp, err := new(http.Transport).RoundTrip(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}
