package storage

import (
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// objectKey builds "<folder>/<uuid><ext>" for a staged file.
func objectKey(folder, localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return path.Join(folder, uuid.NewString()+ext)
}

// contentType guesses the MIME type from the extension, then from the first bytes.
func contentType(f *os.File) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name()))); ct != "" {
		return ct
	}
	head := make([]byte, 512)
	n, _ := f.Read(head)
	_, _ = f.Seek(0, 0)
	return http.DetectContentType(head[:n])
}
