package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcess_ThumbnailKeepsAspect(t *testing.T) {
	t.Parallel()

	out, err := Process(bytes.NewReader(pngBytes(t, 800, 400)))
	require.NoError(t, err)

	assert.Equal(t, "png", out.Format)
	assert.Equal(t, 800, out.Width)
	assert.Equal(t, 400, out.Height)

	thumb, err := jpeg.Decode(bytes.NewReader(out.Thumbnail))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailSize, thumb.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, thumb.Bounds().Dy())
}

func TestProcess_SmallImageNotUpscaled(t *testing.T) {
	t.Parallel()

	out, err := Process(bytes.NewReader(pngBytes(t, 100, 50)))
	require.NoError(t, err)

	thumb, err := jpeg.Decode(bytes.NewReader(out.Thumbnail))
	require.NoError(t, err)
	assert.Equal(t, 100, thumb.Bounds().Dx())
}

func TestProcess_RejectsNonImage(t *testing.T) {
	t.Parallel()

	_, err := Process(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestLocalStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc.jpg", strings.NewReader("hello")))

	f, err := store.Open(ctx, "abc.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, "abc.jpg"))
	_, err = store.Open(ctx, "abc.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine
	assert.NoError(t, store.Delete(ctx, "abc.jpg"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../etc/passwd", "a/b", "", ".hidden"} {
		assert.ErrorIs(t, store.Put(context.Background(), key, strings.NewReader("x")), ErrInvalidKey, key)
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/jpeg", ContentType("jpeg"))
	assert.Equal(t, "image/png", ContentType("png"))
	assert.Equal(t, "application/octet-stream", ContentType("bmp"))
}
