// Package util - Image file loading for the command line tools.
package util

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the number at the end of the file name, or -1 when there is none.
	Frame int
}

// Name returns the file name without its extension.
func (f ImageFile) Name() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Decode decodes the file, applying the EXIF orientation.
func (f ImageFile) Decode() (image.Image, error) {
	format, _ := images.FormatFromPath(f.Path)
	img, err := images.Image{Format: format, Data: f.Data}.Decode()
	if err != nil {
		return nil, errors.Wrap(err, f.Path)
	}
	return img, nil
}

// IsImagePath reports whether path has a supported image extension.
func IsImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp":
		return true
	}
	return false
}

// LoadImageFile reads a single image file.
func LoadImageFile(path string) (ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, err
	}
	return ImageFile{Path: path, Data: data, Frame: frameNumber(path)}, nil
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Files are ordered by frame number ("frame-12.jpg" is frame 12), with
// unnumbered files last in name order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []ImageFile
	for _, file := range files {
		if file.IsDir() || !IsImagePath(file.Name()) {
			continue
		}
		f, err := LoadImageFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	sortImageFiles(out)
	return out, nil
}

// LoadImageFiles loads every path, expanding directories with
// LoadDirectoryImageFiles. Explicit files keep their argument order.
func LoadImageFiles(paths ...string) ([]ImageFile, error) {
	var out []ImageFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			files, err := LoadDirectoryImageFiles(p)
			if err != nil {
				return nil, err
			}
			out = append(out, files...)
			continue
		}
		if !IsImagePath(p) {
			return nil, errors.Wrapf(images.ErrUnsupportedFormat, "%s", p)
		}
		f, err := LoadImageFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// SaveImage encodes img in the format given by the extension of path.
func SaveImage(path string, img image.Image) error {
	format, err := images.FormatFromPath(path)
	if err != nil {
		return err
	}
	encoded, err := images.Encode(img, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, encoded.Data, 0o644)
}

func frameNumber(path string) int {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return -1
	}
	frame, err := strconv.Atoi(name[i:])
	if err != nil {
		return -1
	}
	return frame
}

func sortImageFiles(files []ImageFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		switch {
		case a.Frame < 0 && b.Frame < 0:
			return a.Path < b.Path
		case a.Frame < 0:
			return false
		case b.Frame < 0:
			return true
		case a.Frame != b.Frame:
			return a.Frame < b.Frame
		default:
			return a.Path < b.Path
		}
	})
}
