package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/scic/internal/form"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody assembles a multipart/form-data request body in memory
type multipartBody struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func newMultipartBody() *multipartBody {
	m := &multipartBody{}
	m.w = multipart.NewWriter(&m.buf)
	return m
}

func (m *multipartBody) field(name, value string) error {
	return m.w.WriteField(name, value)
}

// jsonField writes v as a stringified JSON field
func (m *multipartBody) jsonField(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return m.w.WriteField(name, string(data))
}

func (m *multipartBody) file(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ctype, err := form.DetectMIME(path)
	if err != nil || ctype == "" {
		ctype = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(filepath.Base(path))))
	h.Set("Content-Type", ctype)

	part, err := m.w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func (m *multipartBody) files(name string, paths []string) error {
	for _, p := range paths {
		if err := m.file(name, p); err != nil {
			return err
		}
	}
	return nil
}

// finish closes the writer and returns the body and its content type
func (m *multipartBody) finish() (io.Reader, string, error) {
	if err := m.w.Close(); err != nil {
		return nil, "", err
	}
	return &m.buf, m.w.FormDataContentType(), nil
}
