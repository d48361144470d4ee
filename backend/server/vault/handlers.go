package vault

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"pdfvault/backend/pipeline"
	"pdfvault/backend/utils"
	"pdfvault/backend/vaulterr"
	"pdfvault/shared/endpoints"
)

// FileField is the multipart form field holding an uploaded file.
const FileField = "file"

// NameParam names a raw (non multipart) upload.
const NameParam = "name"

// formOverhead is allowed on top of the max file size so multipart framing
// and form fields don't push a file that fits over the limit.
const formOverhead = 1 << 20

const maxMemory = 32 << 20

// PasswordHeader carries the password for raw (non multipart) uploads.
const PasswordHeader = "X-Vault-Password"

// secretParams are only read from a form, a JSON body or PasswordHeader,
// never from the query string.
var secretParams = []string{pipeline.ParamPassword, pipeline.ParamCode}

// Handler adapts a pipeline to an HTTP handler. Wildcard segments of base
// are exposed to the pipeline as the "id" parameter.
func Handler[Req, Res any](
	p pipeline.Pipeline[Req, Res],
	maxSize int64,
	base endpoints.Endpoint,
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		in, err := ReadInput(w, req, maxSize, base)
		if err != nil {
			WriteOutput(w, pipeline.Error(err))
			return
		}

		WriteOutput(w, pipeline.Run(req.Context(), in, p))
	}
}

// ReadInput decodes the path, query and body of a request into a pipeline
// Input. Multipart, urlencoded, JSON and raw bodies are accepted.
func ReadInput(
	w http.ResponseWriter,
	req *http.Request,
	maxSize int64,
	base endpoints.Endpoint,
) (pipeline.Input, error) {
	in := pipeline.Input{Params: make(map[string]string)}
	for key, values := range req.URL.Query() {
		if len(values) > 0 && !utils.Contains(secretParams, key) {
			in.Params[key] = values[0]
		}
	}

	if password := req.Header.Get(PasswordHeader); len(password) > 0 {
		in.Params[pipeline.ParamPassword] = password
	}

	if strings.Contains(string(base), "*") {
		segments := utils.GetTrailingURLSegments(req.URL.Path, base)
		if len(segments) > 0 {
			in.Params[pipeline.ParamID] = segments[0]
		}
	}

	if req.Body == nil || req.Method == http.MethodGet {
		return in, nil
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxSize+formOverhead)
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))

	var err error
	switch mediaType {
	case "multipart/form-data":
		err = readMultipart(req, &in)
	case "application/x-www-form-urlencoded":
		if err = req.ParseForm(); err == nil {
			copyForm(req.PostForm, in.Params)
		}
	case "application/json":
		in.Body, err = io.ReadAll(req.Body)
	default:
		var data []byte
		data, err = io.ReadAll(req.Body)
		if len(data) > 0 {
			in.File = &pipeline.Upload{Name: in.Params[NameParam], Data: data}
		}
	}

	if err != nil {
		return pipeline.Input{}, bodyError(err)
	}

	return in, nil
}

func readMultipart(req *http.Request, in *pipeline.Input) error {
	if err := req.ParseMultipartForm(maxMemory); err != nil {
		return err
	}

	copyForm(req.MultipartForm.Value, in.Params)

	file, header, err := req.FormFile(FileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	} else if err != nil {
		return err
	}

	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	in.File = &pipeline.Upload{Name: header.Filename, Data: data}
	return nil
}

func copyForm(form map[string][]string, params map[string]string) {
	for key, values := range form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
}

func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Errorf(
			"%w: request body exceeds %d bytes",
			vaulterr.ValidationError,
			maxBytesErr.Limit)
	}

	return fmt.Errorf("%w: unreadable request body", vaulterr.ValidationError)
}

// WriteOutput writes a pipeline Output as the response. Files are sent as
// attachments under their name.
func WriteOutput(w http.ResponseWriter, out pipeline.Output) {
	if len(out.ContentType) > 0 {
		w.Header().Set("Content-Type", out.ContentType)
	}

	if len(out.Filename) > 0 {
		w.Header().Set("Content-Disposition", mime.FormatMediaType(
			"attachment",
			map[string]string{"filename": out.Filename}))
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(out.Status)
	if _, err := w.Write(out.Body); err != nil {
		log.Printf("Error writing response: %v\n", err)
	}
}
