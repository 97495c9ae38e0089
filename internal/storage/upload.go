// Package storage writes uploaded files under the upload directory.  Files
// are validated on their declared metadata only (size, extension and the
// Content-Type sent by the client) and are written through a temporary
// file, so a rejected or interrupted upload never leaves a partial file.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// URLPrefix is the static mount under which stored files are served.
const URLPrefix = "/uploads"

var (
	// ErrTooLarge is returned when a file exceeds the size ceiling.
	ErrTooLarge = errors.New("file too large")
	// ErrTypeNotAllowed is returned for a disallowed extension or content type.
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

// Policy is the set of MIME types an upload field accepts.
type Policy struct {
	Name  string
	Types []string
}

var (
	// ImagePolicy accepts the image formats browsers display.
	ImagePolicy = Policy{Name: "image", Types: []string{"image/jpeg", "image/png", "image/gif", "image/webp"}}
	// ProofPolicy accepts images and PDF receipts.
	ProofPolicy = Policy{Name: "proof", Types: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf"}}
)

// StoredFile describes a file written by Save.
type StoredFile struct {
	Filename    string
	Path        string
	URL         string
	Size        int64
	ContentType string
}

// Uploader stores files in Dir.
type Uploader struct {
	dir      string
	maxBytes int64
	now      func() time.Time
	newID    func() string
}

// NewUploader creates dir when missing and returns an Uploader that
// rejects files larger than maxBytes.
func NewUploader(dir string, maxBytes int64) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploader{
		dir:      dir,
		maxBytes: maxBytes,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Dir is the directory files are written to.
func (u *Uploader) Dir() string { return u.dir }

// MaxBytes is the per-file size ceiling.
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Save validates fh against p and writes it as
// <field>-<unix millis>-<random><ext>.
func (u *Uploader) Save(field string, fh *multipart.FileHeader, p Policy) (StoredFile, error) {
	if fh.Size > u.maxBytes {
		return StoredFile{}, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, fh.Size, u.maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, err := checkType(ext, fh.Header.Get("Content-Type"), p)
	if err != nil {
		return StoredFile{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(u.dir, ".upload-*")
	if err != nil {
		return StoredFile{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(src, u.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return StoredFile{}, fmt.Errorf("write upload: %w", err)
	}
	if n > u.maxBytes {
		return StoredFile{}, fmt.Errorf("%w: limit %d", ErrTooLarge, u.maxBytes)
	}

	name := fmt.Sprintf("%s-%d-%s%s", sanitizeField(field), u.now().UnixMilli(), u.newID(), ext)
	dst := filepath.Join(u.dir, name)
	if err := os.Rename(tmpName, dst); err != nil {
		return StoredFile{}, fmt.Errorf("store upload: %w", err)
	}
	keep = true
	return StoredFile{
		Filename:    name,
		Path:        dst,
		URL:         path.Join(URLPrefix, name),
		Size:        n,
		ContentType: contentType,
	}, nil
}

// Remove deletes a stored file.  A file that is already gone is not an
// error.
func (u *Uploader) Remove(f StoredFile) error {
	if f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// checkType accepts the upload when the declared content type is in the
// policy and the file extension matches it.  The file content is not
// inspected.
func checkType(ext, declared string, p Policy) (string, error) {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", fmt.Errorf("%w: missing or invalid content type", ErrTypeNotAllowed)
	}
	mediaType = strings.ToLower(mediaType)
	allowed := false
	for _, t := range p.Types {
		if t == mediaType {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: %s is not accepted for %s uploads", ErrTypeNotAllowed, mediaType, p.Name)
	}
	m := mimetype.Lookup(mediaType)
	if m == nil || !extensionMatches(ext, m) {
		return "", fmt.Errorf("%w: extension %q does not match %s", ErrTypeNotAllowed, ext, mediaType)
	}
	return mediaType, nil
}

// extraExtensions lists spellings accepted besides the canonical one.
var extraExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpe":  "image/jpeg",
}

func extensionMatches(ext string, m *mimetype.MIME) bool {
	if ext == "" {
		return false
	}
	if ext == m.Extension() {
		return true
	}
	if t, ok := extraExtensions[ext]; ok {
		return m.Is(t)
	}
	return false
}

func sanitizeField(field string) string {
	var b strings.Builder
	for _, r := range field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
