package util

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/nvr-ai/go-yolov5/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, SaveImage(path, imaging.New(w, h, color.NRGBA{R: 200, A: 255})))
	return path
}

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "frame-10.jpg", 8, 8)
	writeImage(t, dir, "frame-2.png", 8, 8)
	writeImage(t, dir, "street.webp", 16, 9)
	writeImage(t, dir, "frame-1.jpeg", 8, 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)

	var names []string
	var frames []int
	for _, f := range files {
		names = append(names, f.Name())
		frames = append(frames, f.Frame)
		assert.NotEmpty(t, f.Data)
	}
	assert.Equal(t, []string{"frame-1", "frame-2", "frame-10", "street"}, names)
	assert.Equal(t, []int{1, 2, 10, -1}, frames)

	img, err := files[3].Decode()
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 9, img.Bounds().Dy())
}

func TestLoadImageFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "clip")
	b := writeImage(t, dir, "b.png", 4, 4)
	a := writeImage(t, dir, "a.png", 4, 4)
	writeImage(t, sub, "frame-0.jpg", 4, 4)

	files, err := LoadImageFiles(b, sub, a)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, b, files[0].Path)
	assert.Equal(t, "frame-0", files[1].Name())
	assert.Equal(t, a, files[2].Path)

	_, err = LoadImageFiles(filepath.Join(dir, "missing.jpg"))
	assert.Error(t, err)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))
	_, err = LoadImageFiles(txt)
	assert.ErrorIs(t, err, images.ErrUnsupportedFormat)
}

func TestImageFile_Decode(t *testing.T) {
	_, err := ImageFile{Path: "empty.jpg"}.Decode()
	assert.Error(t, err)

	_, err = ImageFile{Path: "garbage.jpg", Data: []byte("not an image")}.Decode()
	assert.Error(t, err)
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, SaveImage(filepath.Join(dir, "x.gif"), imaging.New(2, 2, color.Black)), images.ErrUnsupportedFormat)

	path := writeImage(t, filepath.Join(dir, "out", "deep"), "x.jpg", 3, 5)
	f, err := LoadImageFile(path)
	require.NoError(t, err)
	img, err := f.Decode()
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestFrameNumber(t *testing.T) {
	tests := map[string]int{
		"frame-12.jpg":   12,
		"/a/b/0007.png":  7,
		"street.webp":    -1,
		"cam2-frame.jpg": -1,
		"frame-.jpg":     -1,
	}
	for path, want := range tests {
		assert.Equal(t, want, frameNumber(path), path)
	}
}
