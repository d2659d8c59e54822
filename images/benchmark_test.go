package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// BenchmarkIoU covers the early-return and full calculation paths.
func BenchmarkIoU(b *testing.B) {
	cases := []struct {
		name string
		r, o Rect
	}{
		{name: "non-overlapping", r: Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, o: Rect{X1: 200, Y1: 200, X2: 300, Y2: 300}},
		{name: "full-overlap", r: Rect{X1: 50, Y1: 50, X2: 150, Y2: 150}, o: Rect{X1: 50, Y1: 50, X2: 150, Y2: 150}},
		{name: "partial-overlap", r: Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, o: Rect{X1: 50, Y1: 50, X2: 150, Y2: 150}},
		{name: "small", r: Rect{X1: 10, Y1: 10, X2: 15, Y2: 15}, o: Rect{X1: 12, Y1: 12, X2: 18, Y2: 18}},
	}

	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = CalculateIoU(c.r, c.o)
			}
		})
	}
}

// BenchmarkLetterbox_Apply measures resize and padding of common camera frames
// into the 640x640 model input.
func BenchmarkLetterbox_Apply(b *testing.B) {
	for _, t := range []ResolutionType{ResolutionTypeVGA, ResolutionTypeFHD1080p, ResolutionType4KUHD} {
		res, _ := ResolutionByType(t)
		lb, err := res.Letterbox(640, 640)
		if err != nil {
			b.Fatal(err)
		}
		src := imaging.New(res.Width, res.Height, color.NRGBA{R: 80, G: 120, B: 160, A: 255})

		b.Run(string(t), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = lb.Apply(src)
			}
		})
	}
}

// BenchmarkLetterbox_InverseRect measures the per-box remap cost.
func BenchmarkLetterbox_InverseRect(b *testing.B) {
	lb, err := NewLetterbox(1920, 1080, 640, 640)
	if err != nil {
		b.Fatal(err)
	}
	r := Rect{X1: 100, Y1: 150, X2: 200, Y2: 250}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = lb.InverseRect(r)
	}
}

// BenchmarkBuffer_At measures reading a BGR camera buffer through image.Image.
func BenchmarkBuffer_At(b *testing.B) {
	buf, err := NewBuffer(640, 480, 3, true, make([]byte, 640*480*3))
	if err != nil {
		b.Fatal(err)
	}
	var img image.Image = buf

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = img.At(i%640, (i/640)%480)
	}
}
