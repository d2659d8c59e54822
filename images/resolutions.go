package images

import (
	"fmt"
	"math"
)

// AspectRatio represents a camera aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Standard and common aspect ratios of surveillance cameras.
const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatio54  AspectRatio = "5:4"
	AspectRatio32  AspectRatio = "3:2"
	AspectRatio11  AspectRatio = "1:1"
)

// ResolutionType is the common name of a camera resolution.
type ResolutionType string

// Resolution names.
const (
	ResolutionTypeNHD      ResolutionType = "nHD"
	ResolutionTypeVGA      ResolutionType = "VGA"
	ResolutionTypeHD720p   ResolutionType = "HD 720p"
	ResolutionType1MP54    ResolutionType = "1MP (5:4)"
	ResolutionTypeFHD1080p ResolutionType = "Full HD 1080p"
	ResolutionType2MP43    ResolutionType = "2MP (4:3)"
	ResolutionTypeQHD1440p ResolutionType = "QHD 1440p"
	ResolutionType3MP43    ResolutionType = "3MP (4:3)"
	ResolutionType4MP169   ResolutionType = "4MP (16:9)"
	ResolutionType6MP32    ResolutionType = "6MP (3:2)"
	ResolutionType4KUHD    ResolutionType = "4K UHD"
	ResolutionType12MP     ResolutionType = "12MP (4:3)"
	ResolutionTypeSquare   ResolutionType = "Square 640"
)

// Resolution is a camera frame size.
type Resolution struct {
	Name        ResolutionType `json:"name"        yaml:"name"`
	AspectRatio AspectRatio    `json:"aspectRatio" yaml:"aspect_ratio"`
	Width       int            `json:"width"       yaml:"width"`
	Height      int            `json:"height"      yaml:"height"`
}

// MegaPixels returns the pixel count in millions, rounded to two decimals.
func (r Resolution) MegaPixels() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	mp := float64(r.Width*r.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Width, r.Height, r.MegaPixels())
}

// Letterbox returns the transform fitting this resolution into the target size.
func (r Resolution) Letterbox(targetHeight, targetWidth int) (Letterbox, error) {
	return NewLetterbox(r.Width, r.Height, targetHeight, targetWidth)
}

// Resolutions lists common camera frame sizes, smallest first.
var Resolutions = []Resolution{
	{Name: ResolutionTypeNHD, AspectRatio: AspectRatio169, Width: 640, Height: 360},
	{Name: ResolutionTypeVGA, AspectRatio: AspectRatio43, Width: 640, Height: 480},
	{Name: ResolutionTypeSquare, AspectRatio: AspectRatio11, Width: 640, Height: 640},
	{Name: ResolutionTypeHD720p, AspectRatio: AspectRatio169, Width: 1280, Height: 720},
	{Name: ResolutionType1MP54, AspectRatio: AspectRatio54, Width: 1280, Height: 1024},
	{Name: ResolutionTypeFHD1080p, AspectRatio: AspectRatio169, Width: 1920, Height: 1080},
	{Name: ResolutionType2MP43, AspectRatio: AspectRatio43, Width: 1600, Height: 1200},
	{Name: ResolutionType3MP43, AspectRatio: AspectRatio43, Width: 2048, Height: 1536},
	{Name: ResolutionTypeQHD1440p, AspectRatio: AspectRatio169, Width: 2560, Height: 1440},
	{Name: ResolutionType4MP169, AspectRatio: AspectRatio169, Width: 2688, Height: 1520},
	{Name: ResolutionType6MP32, AspectRatio: AspectRatio32, Width: 3072, Height: 2048},
	{Name: ResolutionType4KUHD, AspectRatio: AspectRatio169, Width: 3840, Height: 2160},
	{Name: ResolutionType12MP, AspectRatio: AspectRatio43, Width: 4000, Height: 3000},
}

// ResolutionByType looks a resolution up by name.
func ResolutionByType(t ResolutionType) (Resolution, bool) {
	for _, r := range Resolutions {
		if r.Name == t {
			return r, true
		}
	}
	return Resolution{}, false
}

// ResolutionOf returns the listed resolution matching the size of a frame.
func ResolutionOf(width, height int) (Resolution, bool) {
	for _, r := range Resolutions {
		if r.Width == width && r.Height == height {
			return r, true
		}
	}
	return Resolution{}, false
}
