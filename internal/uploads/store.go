// Package uploads stores binary attachments on the local filesystem and
// serves them as static assets. Names are collision-resistant, so concurrent
// writers never race onto the same path; the directory itself is never
// locked. Files are not inspected; a non-image upload is stored as-is.
package uploads

import (
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// PublicPathPrefix is the URL path under which stored assets are served.
const PublicPathPrefix = "/uploads/"

type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the attachment under a generated name, keeping the original
// extension, and returns the relative public reference ("/uploads/<name>").
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	name := newAssetName() + safeExtension(originalName)

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("uploads: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("uploads: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("uploads: close file: %w", err)
	}

	return PublicPathPrefix + name, nil
}

// PublicURL canonicalizes a stored reference into the single absolute form
// every consumer uses. Already-absolute references pass through unchanged.
func (s *Store) PublicURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return s.baseURL + ref
}

// Handler serves the asset directory with permissive cross-origin headers so
// any front end origin may load images.
func (s *Store) Handler() http.Handler {
	files := http.StripPrefix(PublicPathPrefix, http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
		files.ServeHTTP(w, r)
	})
}

func newAssetName() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		// rand.Reader does not fail in practice; fall back to a timestamp name.
		return fmt.Sprintf("asset-%d", time.Now().UnixNano())
	}
	return strings.ToLower(id.String())
}

// safeExtension extracts the extension from a client-supplied filename,
// stripping any path components and rejecting anything but a short
// alphanumeric suffix.
func safeExtension(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
