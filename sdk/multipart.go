package desk

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	content  io.Reader
}

// withMultipart buffers a multipart/form-data body so the request can be
// replayed after a token refresh.
func (r request) withMultipart(fields []formField, files ...formFile) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return r, fmt.Errorf("write form field %s: %w", f.name, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return r, fmt.Errorf("create form file %s: %w", f.field, err)
		}
		if _, err := io.Copy(part, f.content); err != nil {
			return r, fmt.Errorf("copy form file %s: %w", f.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return r, fmt.Errorf("close multipart body: %w", err)
	}
	r.body = buf.Bytes()
	r.contentType = w.FormDataContentType()
	return r, nil
}
