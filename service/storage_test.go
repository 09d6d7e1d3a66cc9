package service

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PathRejectsTraversal(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	for _, name := range []string{"", ".", "..", "../secret", "a/b.png", `a\b.png`} {
		_, err := store.Path(AreaUploads, name)
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
	}

	p, err := store.Path(AreaUploads, "ok.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(AreaUploads), "ok.png"), p)
}

func TestFileStore_Existing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.Existing(AreaUploads, "missing.png")
	assert.ErrorIs(t, err, ErrFileNotFound)

	putUpload(t, store, "a.png", flatImage(4, 4))
	p, err := store.Existing(AreaUploads, "a.png")
	require.NoError(t, err)
	assert.FileExists(t, p)

	_, err = store.Existing(AreaProcessed, "a.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileStore_SaveUpload(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "Photo.PNG")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	fh := req.MultipartForm.File["image"][0]

	name, p, err := store.SaveUpload(fh)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Equal(t, filepath.Join(store.Dir(AreaUploads), name), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(data))
}

func TestFileStore_NewOutputAndInfo(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	name, p := store.NewOutput("")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.Equal(t, store.Dir(AreaProcessed), filepath.Dir(p))

	putProcessed(t, store, "x.png", flatImage(10, 6))
	info, err := store.Info(AreaProcessed, "x.png")
	require.NoError(t, err)
	assert.Equal(t, "x.png", info.Filename)
	assert.Equal(t, "/processed/x.png", info.Path)
	assert.Equal(t, 10, info.Width)
	assert.Equal(t, 6, info.Height)
	assert.Positive(t, info.Size)
}

func TestFileStore_CopyAndRemoveGallery(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	putProcessed(t, store, "x.png", flatImage(4, 4))
	src, err := store.Existing(AreaProcessed, "x.png")
	require.NoError(t, err)

	dst, err := store.CopyToGallery(src, "u_1_x.png")
	require.NoError(t, err)
	assert.FileExists(t, dst)
	assert.FileExists(t, src)

	require.NoError(t, store.Remove(AreaGallery, "u_1_x.png"))
	assert.NoFileExists(t, dst)
	assert.NoError(t, store.Remove(AreaGallery, "u_1_x.png"), "removing twice is fine")
}

func TestFileStore_Cleanup(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Now()
	old := now.Add(-10 * time.Minute)

	putUpload(t, store, "old.png", flatImage(2, 2))
	putUpload(t, store, "new.png", flatImage(2, 2))
	putProcessed(t, store, "old.png", flatImage(2, 2))
	galleryPath, err := store.Path(AreaGallery, "keep.png")
	require.NoError(t, err)
	writePNG(t, galleryPath, flatImage(2, 2))

	for _, p := range []string{
		filepath.Join(store.Dir(AreaUploads), "old.png"),
		filepath.Join(store.Dir(AreaProcessed), "old.png"),
		galleryPath,
	} {
		require.NoError(t, os.Chtimes(p, old, old))
	}

	removed := store.Cleanup(5*time.Minute, now)
	assert.Equal(t, 2, removed)
	assert.NoFileExists(t, filepath.Join(store.Dir(AreaUploads), "old.png"))
	assert.FileExists(t, filepath.Join(store.Dir(AreaUploads), "new.png"))
	assert.NoFileExists(t, filepath.Join(store.Dir(AreaProcessed), "old.png"))
	assert.FileExists(t, galleryPath)
}
