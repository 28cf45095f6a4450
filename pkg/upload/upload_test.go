package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mentorship-service/pkg/config"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, maxBytes int64) (*Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	tmp := t.TempDir()
	s, err := New(config.UploadConfig{
		Dir:              dir,
		PublicPath:       "/uploads/",
		TmpDir:           tmp,
		ProfileImageSize: 64,
		MaxBytes:         maxBytes,
	})
	require.NoError(t, err)
	return s, dir, tmp
}

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

func assertTempEmpty(t *testing.T, tmp string) {
	t.Helper()
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveImageResizes(t *testing.T) {
	s, dir, tmp := newStore(t, 1<<20)

	url, err := s.SaveImage(bytes.NewReader(pngBytes(t, 200, 100)), "avatar.PNG", "profiles")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/profiles/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	stored := filepath.Join(dir, "profiles", filepath.Base(url))
	img, err := imaging.Open(stored)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
	assertTempEmpty(t, tmp)

	require.NoError(t, s.Remove(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImageRejectsGarbage(t *testing.T) {
	s, _, tmp := newStore(t, 1<<20)

	_, err := s.SaveImage(strings.NewReader("not an image"), "a.png", "profiles")
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = s.SaveImage(strings.NewReader("x"), "a.exe", "profiles")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assertTempEmpty(t, tmp)
}

func TestSaveFile(t *testing.T) {
	s, dir, tmp := newStore(t, 16)

	url, err := s.SaveFile(strings.NewReader("hello"), "plan.pdf", "resources")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "resources", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = s.SaveFile(strings.NewReader(strings.Repeat("x", 17)), "big.pdf", "resources")
	assert.ErrorIs(t, err, ErrTooLarge)
	assertTempEmpty(t, tmp)
}

func TestRemoveIgnoresForeignURLs(t *testing.T) {
	s, _, _ := newStore(t, 0)
	assert.NoError(t, s.Remove("https://cdn.example.com/a.jpg"))
	assert.NoError(t, s.Remove("/uploads/../../etc/passwd"))
}
