package rest

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
)

// Form is a multipart payload. Passing a *Form to Store sends it as
// multipart/form-data with the boundary chosen by the encoder; any other
// body is sent as JSON.
type Form struct {
	parts []formPart
}

type formPart struct {
	field    string
	filename string
	value    string
	data     []byte
}

// NewForm returns an empty multipart payload.
func NewForm() *Form {
	return &Form{}
}

// AddFile appends a file part. The part content type follows the file extension.
func (f *Form) AddFile(field, filename string, data []byte) *Form {
	f.parts = append(f.parts, formPart{field: field, filename: filename, data: data})
	return f
}

// AddField appends a plain value part.
func (f *Form) AddField(field, value string) *Form {
	f.parts = append(f.parts, formPart{field: field, value: value})
	return f
}

// Len returns the number of parts.
func (f *Form) Len() int {
	return len(f.parts)
}

// Encode writes the parts and returns the body with its content type.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, p := range f.parts {
		if p.filename == "" {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, "", fmt.Errorf("writing field %s: %w", p.field, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     p.field,
			"filename": p.filename,
		}))
		h.Set("Content-Type", fileContentType(p.filename))
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating part for %s: %w", p.filename, err)
		}
		if _, err := part.Write(p.data); err != nil {
			return nil, "", fmt.Errorf("writing %s: %w", p.filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func fileContentType(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
