package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGallery(t *testing.T) (*GalleryService, *FileStore) {
	t.Helper()

	store := newTestStore(t)
	svc := NewGalleryService(&config.GalleryConfig{FreeLimit: 3}, NewMemoryImageRepository(), store)

	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, store
}

func TestGalleryService_SaveListCount(t *testing.T) {
	t.Parallel()

	svc, store := newTestGallery(t)
	ctx := context.Background()
	putProcessed(t, store, "a.png", flatImage(6, 4))
	putProcessed(t, store, "b.png", flatImage(6, 4))

	img, count, err := svc.Save(ctx, "user1", "a.png", "holiday.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "holiday.png", img.OriginalName)
	assert.True(t, strings.HasPrefix(img.Filename, "user1_"))
	assert.True(t, strings.HasSuffix(img.Filename, "_a.png"))
	assert.Equal(t, "/gallery/"+img.Filename, img.Path)
	assert.Equal(t, 6, img.Width)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, model.ImageTypeProcessed, img.Type)
	assert.FileExists(t, filepath.Join(store.Dir(AreaGallery), img.Filename))

	second, count, err := svc.Save(ctx, "user1", "b.png", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, "b.png", second.OriginalName)

	list, err := svc.List(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	n, err := svc.Count(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.Count(ctx, "someone-else")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGalleryService_SaveErrors(t *testing.T) {
	t.Parallel()

	svc, store := newTestGallery(t)
	ctx := context.Background()
	putProcessed(t, store, "a.png", flatImage(2, 2))

	_, _, err := svc.Save(ctx, "", "a.png", "")
	assert.ErrorIs(t, err, ErrMissingUser)

	_, _, err = svc.Save(ctx, "u", "missing.png", "")
	assert.ErrorIs(t, err, ErrFileNotFound)

	for i := 0; i < 3; i++ {
		_, _, err := svc.Save(ctx, "u", "a.png", "")
		require.NoError(t, err)
	}
	_, count, err := svc.Save(ctx, "u", "a.png", "")
	assert.ErrorIs(t, err, ErrGalleryLimit)
	assert.Equal(t, int64(3), count)
}

func TestGalleryService_DeleteAndPublic(t *testing.T) {
	t.Parallel()

	svc, store := newTestGallery(t)
	ctx := context.Background()
	putProcessed(t, store, "a.png", flatImage(2, 2))

	img, _, err := svc.Save(ctx, "u", "a.png", "")
	require.NoError(t, err)
	id := img.ID.Hex()

	p, err := svc.Public(ctx, id)
	require.NoError(t, err)
	assert.FileExists(t, p)

	count, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoFileExists(t, p)

	_, err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = svc.Public(ctx, id)
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = svc.Public(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestGalleryService_ConcurrentSavesRespectLimit(t *testing.T) {
	t.Parallel()

	svc, store := newTestGallery(t)
	putProcessed(t, store, "a.png", flatImage(2, 2))

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Save(context.Background(), "racer", "a.png", "")
		}(i)
	}
	wg.Wait()

	var saved int
	for _, err := range errs {
		if err == nil {
			saved++
			continue
		}
		assert.ErrorIs(t, err, ErrGalleryLimit)
	}
	assert.Equal(t, 3, saved)

	n, err := svc.Count(context.Background(), "racer")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	entries, err := os.ReadDir(store.Dir(AreaGallery))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Empty(t, svc.locks)
}

func TestGalleryService_SameMillisecondNames(t *testing.T) {
	t.Parallel()

	svc, store := newTestGallery(t)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	putProcessed(t, store, "a.png", flatImage(2, 2))

	first, _, err := svc.Save(context.Background(), "u", "a.png", "")
	require.NoError(t, err)
	second, _, err := svc.Save(context.Background(), "u", "a.png", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
	assert.FileExists(t, filepath.Join(store.Dir(AreaGallery), first.Filename))
	assert.FileExists(t, filepath.Join(store.Dir(AreaGallery), second.Filename))
}
