package detector

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/nvr-ai/go-yolov5/models"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultThickness is the box outline width in pixels.
const DefaultThickness = 2

// DrawOptions controls how detections are rendered.
type DrawOptions struct {
	// Labels names classes. Nil prints "class N".
	Labels *models.LabelSet
	// Colors overrides the color of individual classes.
	Colors map[int]color.Color
	// Cache supplies colors for classes missing from Colors. Nil uses a
	// cache seeded with 1.
	Cache *ColorCache
	// Thickness of the outline; zero means DefaultThickness.
	Thickness int
	// HideLabels skips the "<name> <score>" caption.
	HideLabels bool
}

func (o DrawOptions) colorOf(class int) color.Color {
	if c, ok := o.Colors[class]; ok {
		return c
	}
	return o.Cache.Get(class)
}

// Draw renders results onto a copy of img. Boxes are in img's pixel
// coordinates and are clipped to its bounds.
//
// Arguments:
//   - img: The source image, left untouched.
//   - results: Detections in original image coordinates.
//   - opts: Labels, colors and outline thickness.
//
// Returns:
//   - *image.NRGBA: The annotated copy, with bounds starting at (0, 0).
func Draw(img image.Image, results []postprocess.Result, opts DrawOptions) *image.NRGBA {
	dst := imaging.Clone(img)
	if opts.Cache == nil {
		opts.Cache = NewColorCache(1)
	}
	if opts.Thickness <= 0 {
		opts.Thickness = DefaultThickness
	}

	for _, r := range results {
		col := opts.colorOf(r.Class)
		x, y, w, h := r.XYWH()
		box := image.Rect(x, y, x+w, y+h).Intersect(dst.Bounds())
		if box.Empty() {
			continue
		}
		drawOutline(dst, box, opts.Thickness, col)
		if !opts.HideLabels {
			caption := fmt.Sprintf("%s %.2f", opts.Labels.Name(r.Class), r.Score)
			drawCaption(dst, box.Min, caption, col)
		}
	}

	return dst
}

// DrawBatch draws each image of a batch with its own results. imgs and
// batch must be in the same order; extra entries of either are ignored.
func DrawBatch(imgs []image.Image, batch Batch, opts DrawOptions) []*image.NRGBA {
	n := len(imgs)
	if len(batch) < n {
		n = len(batch)
	}
	if opts.Cache == nil {
		opts.Cache = NewColorCache(1)
	}

	out := make([]*image.NRGBA, n)
	for i := 0; i < n; i++ {
		out[i] = Draw(imgs[i], batch[i].Results, opts)
	}
	return out
}

func drawOutline(dst draw.Image, box image.Rectangle, thickness int, col color.Color) {
	src := image.NewUniform(col)
	t := thickness
	if limit := box.Dx() / 2; t > limit && limit > 0 {
		t = limit
	}
	if limit := box.Dy() / 2; t > limit && limit > 0 {
		t = limit
	}

	edges := []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+t),
		image.Rect(box.Min.X, box.Max.Y-t, box.Max.X, box.Max.Y),
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+t, box.Max.Y),
		image.Rect(box.Max.X-t, box.Min.Y, box.Max.X, box.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(box), src, image.Point{}, draw.Src)
	}
}

// drawCaption writes text on a filled background just above at, or just
// inside the box when there is no room above.
func drawCaption(dst draw.Image, at image.Point, text string, bg color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	top := at.Y - height
	if top < dst.Bounds().Min.Y {
		top = at.Y
	}
	area := image.Rect(at.X, top, at.X+width+2, top+height).Intersect(dst.Bounds())
	draw.Draw(dst, area, image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor(bg)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(at.X + 1), Y: fixed.I(top + face.Ascent)},
	}
	d.DrawString(text)
}

// textColor picks black or white, whichever contrasts with bg.
func textColor(bg color.Color) color.Color {
	r, g, b, _ := bg.RGBA()
	luma := (299*r + 587*g + 114*b) / 1000
	if luma > 0x7fff {
		return color.Black
	}
	return color.White
}
