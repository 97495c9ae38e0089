package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orablu/space-adoption/internal/storage/storagetest"
)

func newTestUploader(t *testing.T, max int64) *Uploader {
	t.Helper()
	u, err := NewUploader(filepath.Join(t.TempDir(), "uploads"), max)
	require.NoError(t, err)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u.newID = func() string { return "abc" }
	return u
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploaderSave(t *testing.T) {
	u := newTestUploader(t, 1024)
	fh := storagetest.FileHeader(t, "logo", "Logo.PNG", "image/png", storagetest.PNG)

	f, err := u.Save("logo", fh, ImagePolicy)
	require.NoError(t, err)

	assert.Equal(t, "logo-1700000000000-abc.png", f.Filename)
	assert.Equal(t, "/uploads/logo-1700000000000-abc.png", f.URL)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, int64(len(storagetest.PNG)), f.Size)

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, storagetest.PNG, data)
	assert.Equal(t, []string{f.Filename}, dirEntries(t, u.Dir()))
}

func TestUploaderSaveRejects(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		body        []byte
		policy      Policy
		want        error
	}{
		{"too large", "big.png", "image/png", bytes.Repeat([]byte("x"), 2048), ImagePolicy, ErrTooLarge},
		{"missing content type", "a.png", "", storagetest.PNG, ImagePolicy, ErrTypeNotAllowed},
		{"type outside policy", "a.pdf", "application/pdf", []byte("%PDF"), ImagePolicy, ErrTypeNotAllowed},
		{"extension mismatch", "a.gif", "image/png", storagetest.PNG, ImagePolicy, ErrTypeNotAllowed},
		{"no extension", "photo", "image/png", storagetest.PNG, ImagePolicy, ErrTypeNotAllowed},
		{"executable", "run.exe", "application/octet-stream", []byte("MZ"), ProofPolicy, ErrTypeNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUploader(t, 1024)
			fh := storagetest.FileHeader(t, "image", tt.filename, tt.contentType, tt.body)

			_, err := u.Save("image", fh, tt.policy)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, dirEntries(t, u.Dir()), "rejected upload must not leave files")
		})
	}
}

func TestUploaderAcceptsProofFormats(t *testing.T) {
	u := newTestUploader(t, 1024)
	for _, tc := range []struct{ filename, contentType string }{
		{"receipt.pdf", "application/pdf"},
		{"photo.jpeg", "image/jpeg"},
		{"photo.jpg", "image/jpeg; charset=binary"},
		{"photo.webp", "image/webp"},
	} {
		fh := storagetest.FileHeader(t, "paymentProof", tc.filename, tc.contentType, []byte("data"))
		_, err := u.Save("paymentProof", fh, ProofPolicy)
		assert.NoError(t, err, tc.filename)
	}
}

func TestUploaderRemove(t *testing.T) {
	u := newTestUploader(t, 1024)
	fh := storagetest.FileHeader(t, "image", "a.png", "image/png", storagetest.PNG)
	f, err := u.Save("image", fh, ImagePolicy)
	require.NoError(t, err)

	require.NoError(t, u.Remove(f))
	assert.Empty(t, dirEntries(t, u.Dir()))
	assert.NoError(t, u.Remove(f), "removing twice is harmless")
	assert.NoError(t, u.Remove(StoredFile{}))
}

func TestSanitizeField(t *testing.T) {
	assert.Equal(t, "paymentProof", sanitizeField("paymentProof"))
	assert.Equal(t, "etcpasswd", sanitizeField("../etc/passwd"))
	assert.Equal(t, "file", sanitizeField("../"))
}
