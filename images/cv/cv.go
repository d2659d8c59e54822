// Package cv - OpenCV (gocv) adapters for frames captured or decoded with OpenCV.
package cv

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrUnsupportedMat is returned for empty matrices and non 8-bit types.
var ErrUnsupportedMat = errors.New("unsupported mat")

// ToBuffer copies an 8-bit Mat into an images.Buffer. Three and four channel
// matrices are read as BGR and BGRA, which is how OpenCV stores them.
//
// Arguments:
//   - mat: A CV_8UC1, CV_8UC2, CV_8UC3 or CV_8UC4 matrix.
//
// Returns:
//   - *images.Buffer: A copy of the pixels, independent of mat.
//   - error: ErrUnsupportedMat for an empty or non 8-bit matrix.
func ToBuffer(mat gocv.Mat) (*images.Buffer, error) {
	if mat.Empty() {
		return nil, errors.Wrap(ErrUnsupportedMat, "empty")
	}

	channels := mat.Channels()
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC2, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, errors.Wrapf(ErrUnsupportedMat, "type %v", mat.Type())
	}

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}

	return images.NewBuffer(src.Cols(), src.Rows(), channels, channels >= 3, src.ToBytes())
}

// Letterbox resizes src with bilinear interpolation and pads it with black to
// the target of lb. The caller owns the returned Mat.
func Letterbox(src gocv.Mat, lb images.Letterbox) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), errors.Wrap(ErrUnsupportedMat, "empty")
	}
	if src.Cols() != lb.OriginalWidth || src.Rows() != lb.OriginalHeight {
		return gocv.NewMat(), errors.Wrapf(images.ErrInvalidDimension,
			"mat is %dx%d, letterbox expects %dx%d",
			src.Cols(), src.Rows(), lb.OriginalWidth, lb.OriginalHeight)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(lb.ScaledWidth, lb.ScaledHeight), 0, 0, gocv.InterpolationLinear)

	top, bottom, left, right := lb.Padding()
	dst := gocv.NewMat()
	gocv.CopyMakeBorder(resized, &dst, top, bottom, left, right, gocv.BorderConstant, color.RGBA{0, 0, 0, 0})
	return dst, nil
}

// LetterboxFor computes the letterbox of src for the target size and applies it.
func LetterboxFor(src gocv.Mat, targetHeight, targetWidth int) (gocv.Mat, images.Letterbox, error) {
	lb, err := images.NewLetterbox(src.Cols(), src.Rows(), targetHeight, targetWidth)
	if err != nil {
		return gocv.NewMat(), images.Letterbox{}, err
	}
	dst, err := Letterbox(src, lb)
	return dst, lb, err
}

// DrawOptions controls DrawResults.
type DrawOptions struct {
	Labels    *models.LabelSet
	Color     func(class int) color.Color
	Thickness int
}

// DrawResults draws a rectangle and a "<label> <score>" caption for every
// result onto img. Boxes are in img pixel coordinates.
func DrawResults(img *gocv.Mat, results []postprocess.Result, opts DrawOptions) {
	thickness := opts.Thickness
	if thickness <= 0 {
		thickness = 2
	}

	for _, r := range results {
		c := color.RGBA{0, 255, 0, 0}
		if opts.Color != nil {
			c = color.RGBAModel.Convert(opts.Color(r.Class)).(color.RGBA)
		}
		x, y, w, h := r.XYWH()
		rect := image.Rect(x, y, x+w, y+h)
		gocv.Rectangle(img, rect, c, thickness)

		label := fmt.Sprintf("%s %.2f", opts.Labels.Name(r.Class), r.Score)
		org := image.Pt(x, y-4)
		if org.Y < 12 {
			org.Y = y + 14
		}
		gocv.PutText(img, label, org, gocv.FontHersheyPlain, 1.0, c, 1)
	}
}

// Checksum returns the hex MD5 of the pixel data of mat, or "empty".
func Checksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}
	hash := md5.New()
	hash.Write(mat.ToBytes())
	return fmt.Sprintf("%x", hash.Sum(nil))
}
