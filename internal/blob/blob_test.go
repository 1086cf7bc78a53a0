package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_UploadAndDelete(t *testing.T) {
	s := NewFSStore(afero.NewMemMapFs(), "https://cdn.example.org/media/")
	ctx := context.Background()

	obj, err := s.Upload(ctx, []byte("jpegbytes"), "submissions/2025/10/abc.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/media/submissions/2025/10/abc.jpg", obj.URL)
	assert.Equal(t, "submissions/2025/10/abc.jpg", obj.Path)
	assert.Equal(t, 9, obj.Size)

	data, err := afero.ReadFile(s.FS(), "submissions/2025/10/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))

	deleted, err := s.Delete(ctx, obj.Path)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(ctx, obj.Path)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFSStore_RejectsEscapingPaths(t *testing.T) {
	s := NewFSStore(afero.NewMemMapFs(), "/media")
	ctx := context.Background()

	for _, p := range []string{"", "  ", "../etc/passwd", "a/../../b"} {
		_, err := s.Upload(ctx, []byte("x"), p, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestFSStore_ServesUploadsOverHTTP(t *testing.T) {
	osStore, err := NewOSStore(t.TempDir(), "/media")
	require.NoError(t, err)
	stores := map[string]*FSStore{
		"memory": NewFSStore(afero.NewMemMapFs(), "/media"),
		"os":     osStore,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := s.Upload(context.Background(), []byte("pngbytes"), "submissions/2026/1/a.png", "image/png")
			require.NoError(t, err)

			srv := httptest.NewServer(http.StripPrefix("/media", http.FileServer(afero.NewHttpFs(s.FS()))))
			defer srv.Close()

			res, err := http.Get(srv.URL + "/media/submissions/2026/1/a.png")
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, http.StatusOK, res.StatusCode)
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			assert.Equal(t, "pngbytes", string(body))

			exists, err := afero.Exists(s.FS(), "/submissions/2026/1/a.png")
			require.NoError(t, err)
			assert.True(t, exists, "rooted and relative keys name the same object")
		})
	}
}
