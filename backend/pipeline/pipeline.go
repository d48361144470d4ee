package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"pdfvault/backend/vaulterr"
	"pdfvault/shared"
)

// Upload is a file attached to a request.
type Upload struct {
	Name string
	Data []byte
}

// Input is a decoded request, independent of the transport it arrived on.
// Params holds path segments, query values and form fields by name; Body
// holds a raw JSON body when one was sent.
type Input struct {
	Params map[string]string
	File   *Upload
	Body   []byte
}

// Param returns the trimmed value of a named parameter, or "" if missing.
func (in Input) Param(key string) string {
	return strings.TrimSpace(in.Params[key])
}

// Flag reports whether a named parameter is set to a true value ("true",
// "1", "on", ...). Missing or unparseable values are false.
func (in Input) Flag(key string) bool {
	value := strings.ToLower(in.Param(key))
	if value == "on" || value == "yes" {
		return true
	}

	flag, err := strconv.ParseBool(value)
	return err == nil && flag
}

// Output is the response produced by a pipeline. Filename is set when Body
// is a file to be downloaded rather than a JSON document.
type Output struct {
	Status      int
	ContentType string
	Filename    string
	Body        []byte
}

// Pipeline is a single operation split into stages. Decode turns an Input
// into a request, Validate rejects bad requests before any work is done,
// Invoke calls into the vault and Format turns the result into an Output.
// Validate and Format are optional; a nil Format responds with Res as JSON.
type Pipeline[Req, Res any] struct {
	Decode   func(Input) (Req, error)
	Validate func(Req) error
	Invoke   func(context.Context, Req) (Res, error)
	Format   func(Res) (Output, error)
}

// Run executes each stage of p in order. The first stage to fail ends the
// run, and its error is formatted as a JSON error response.
func Run[Req, Res any](ctx context.Context, in Input, p Pipeline[Req, Res]) Output {
	req, err := p.Decode(in)
	if err != nil {
		return Error(err)
	}

	if p.Validate != nil {
		if err = p.Validate(req); err != nil {
			return Error(err)
		}
	}

	res, err := p.Invoke(ctx, req)
	if err != nil {
		return Error(err)
	}

	if p.Format == nil {
		return mustJSON(http.StatusOK, res)
	}

	out, err := p.Format(res)
	if err != nil {
		return Error(err)
	}

	return out
}

// Error converts err into a JSON error response. Errors outside the vault
// taxonomy are logged and reported as a generic internal error.
func Error(err error) Output {
	status := vaulterr.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error processing request: %v\n", err)
	}

	return mustJSON(status, shared.ErrorResponse{Error: vaulterr.Message(err)})
}

// JSON encodes v as a response body with the given status.
func JSON(status int, v any) (Output, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Output{}, fmt.Errorf("%w: encoding response: %v", vaulterr.InternalError, err)
	}

	return Output{
		Status:      status,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// File returns data as a downloadable file.
func File(name, contentType string, data []byte) Output {
	return Output{
		Status:      http.StatusOK,
		ContentType: contentType,
		Filename:    name,
		Body:        data,
	}
}

func mustJSON(status int, v any) Output {
	out, err := JSON(status, v)
	if err != nil {
		log.Printf("Error encoding response: %v\n", err)
		return Output{
			Status:      http.StatusInternalServerError,
			ContentType: "application/json",
			Body:        []byte(`{"error":"internal error"}`),
		}
	}

	return out
}
