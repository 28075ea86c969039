package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// MultipartFile is a file part for BuildMultipart.
type MultipartFile struct {
	Field    string
	FileName string
	Content  io.Reader
}

// BuildMultipart assembles a multipart/form-data payload for use with
// EncodingMultipart. The returned content type carries the boundary and must
// be passed along with WithHeaders.
func BuildMultipart(fields Params, files ...MultipartFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.Key, stringValue(f.Value)); err != nil {
			return nil, "", fmt.Errorf("write field %q: %w", f.Key, err)
		}
	}
	for _, file := range files {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %q: %w", file.Field, err)
		}
		if file.Content == nil {
			continue
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy file part %q: %w", file.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
