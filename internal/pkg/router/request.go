package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
)

const maxBodyBytes = 1 << 20

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// DecodeBody decodes a JSON or form-encoded body into dst. Form fields are
// matched against dst's json tags, so a single request struct serves both.
// Unknown fields are rejected.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	body := io.LimitReader(r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		raw, err := formToJSON(body)
		if err != nil {
			return goerror.NewInvalidFormat()
		}
		body = bytes.NewReader(raw)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return goerror.NewInvalidFormat()
	}

	return nil
}

// formToJSON turns url-encoded pairs into a flat JSON object of strings.
// Repeated keys keep the first value.
func formToJSON(body io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, err
	}

	flat := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			flat[k] = v[0]
		}
	}

	return json.Marshal(flat)
}
