package form

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind restricts what a Staging list accepts
type Kind string

const (
	KindAny   Kind = ""
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// StagedFile is a local file waiting to be uploaded
type StagedFile struct {
	Path string
	Name string
	Kind Kind
	MIME string
	Size int64
}

// Open opens the file for reading at upload time
func (f StagedFile) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Staging is an ordered list of files picked for upload. Files are only
// checked when added; they are read when the request is assembled.
type Staging struct {
	files []StagedFile
}

// Add stages paths of the given kind. Files that do not exist or do not
// match kind are skipped and reported in the returned error; the rest are
// staged.
func (s *Staging) Add(kind Kind, paths ...string) error {
	var errs []error
	for _, p := range paths {
		f, err := inspect(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if kind != KindAny && !strings.HasPrefix(f.MIME, string(kind)+"/") {
			errs = append(errs, fmt.Errorf("%s: %s is not an %s file", f.Name, f.MIME, kind))
			continue
		}
		f.Kind = kind
		s.files = append(s.files, f)
	}
	return errors.Join(errs...)
}

// Remove unstages the file at index i
func (s *Staging) Remove(i int) error {
	if i < 0 || i >= len(s.files) {
		return errIndex(i, len(s.files))
	}
	s.files = append(s.files[:i], s.files[i+1:]...)
	return nil
}

// Files returns the staged files in the order they were added
func (s *Staging) Files() []StagedFile {
	out := make([]StagedFile, len(s.files))
	copy(out, s.files)
	return out
}

// Paths returns the staged file paths
func (s *Staging) Paths() []string {
	out := make([]string, len(s.files))
	for i, f := range s.files {
		out[i] = f.Path
	}
	return out
}

// Len returns the number of staged files
func (s *Staging) Len() int {
	return len(s.files)
}

// Reset drops every staged file
func (s *Staging) Reset() {
	s.files = nil
}

func inspect(path string) (StagedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return StagedFile{}, fmt.Errorf("cannot stage %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return StagedFile{}, fmt.Errorf("cannot stage %s: not a regular file", path)
	}

	ctype, err := DetectMIME(path)
	if err != nil {
		return StagedFile{}, err
	}

	return StagedFile{
		Path: path,
		Name: filepath.Base(path),
		MIME: ctype,
		Size: info.Size(),
	}, nil
}

// DetectMIME guesses the content type from the extension, then from the
// first 512 bytes of the file.
func DetectMIME(path string) (string, error) {
	if ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ctype != "" {
		return ctype, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return http.DetectContentType(buf[:n]), nil
}
