package uploads

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveKeepsExtensionAndWritesFile(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:4000")
	require.NoError(t, err)

	ref, err := store.Save(strings.NewReader("fake image bytes"), "Photo.JPG")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, PublicPathPrefix))
	require.True(t, strings.HasSuffix(ref, ".jpg"))

	data, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(ref, PublicPathPrefix)))
	require.NoError(t, err)
	require.Equal(t, "fake image bytes", string(data))
}

func TestSaveStripsPathFromOriginalName(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:4000")
	require.NoError(t, err)

	ref, err := store.Save(strings.NewReader("x"), "../../etc/passwd.png")
	require.NoError(t, err)

	name := strings.TrimPrefix(ref, PublicPathPrefix)
	require.NotContains(t, name, "/")
	require.NotContains(t, name, "..")
	require.True(t, strings.HasSuffix(name, ".png"))
}

func TestSaveDropsSuspiciousExtension(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:4000")
	require.NoError(t, err)

	ref, err := store.Save(strings.NewReader("x"), "weird.p;g")
	require.NoError(t, err)
	require.NotContains(t, strings.TrimPrefix(ref, PublicPathPrefix), ".")
}

func TestConcurrentSavesProduceDistinctNames(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:4000")
	require.NoError(t, err)

	const n = 200
	refs := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			refs[i], errs[i] = store.Save(strings.NewReader(fmt.Sprintf("payload-%d", i)), "img.png")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i, ref := range refs {
		require.NoError(t, errs[i])
		require.False(t, seen[ref], "duplicate asset name %s", ref)
		seen[ref] = true
	}
}

func TestPublicURL(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:4000/")
	require.NoError(t, err)

	require.Equal(t, "http://localhost:4000/uploads/a.png", store.PublicURL("/uploads/a.png"))
	require.Equal(t, "http://localhost:4000/uploads/a.png", store.PublicURL("uploads/a.png"))
	require.Equal(t, "https://cdn.example/a.png", store.PublicURL("https://cdn.example/a.png"))
	require.Equal(t, "", store.PublicURL("  "))
}

func TestHandlerServesWithPermissiveCORS(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "http://localhost:4000")
	require.NoError(t, err)

	ref, err := store.Save(strings.NewReader("img"), "a.png")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, ref, nil)
	res := httptest.NewRecorder()
	store.Handler().ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "*", res.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "cross-origin", res.Header().Get("Cross-Origin-Resource-Policy"))
	require.Equal(t, "img", res.Body.String())
}

func TestHandlerRejectsNonGet(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:4000")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/uploads/a.png", nil)
	res := httptest.NewRecorder()
	store.Handler().ServeHTTP(res, req)

	require.Equal(t, http.StatusMethodNotAllowed, res.Code)
}
