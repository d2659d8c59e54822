package yolov5

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models/model"
	"github.com/nvr-ai/go-yolov5/models/model/preprocess"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ErrEmptyBatch is returned when PreProcess receives no images or a nil image.
var ErrEmptyBatch = errors.New("empty batch")

// PreProcess letterboxes every image to the model input size and packs the
// batch into a single [batch, 3, height, width] tensor scaled to [0, 1].
//
// Every image is validated before any pixel work starts, so an invalid image
// fails the whole call. Images are converted on up to Options().Workers
// goroutines, each writing its own slot of the shared backing slice.
//
// Arguments:
//   - ctx: Checked after validation and after conversion.
//   - imgs: The source images in batch order.
//
// Returns:
//   - *model.Input: The batch tensor and one letterbox per image.
//   - error: ErrEmptyBatch, images.ErrInvalidDimension, or the context error.
func (m *YOLOv5) PreProcess(ctx context.Context, imgs []image.Image) (*model.Input, error) {
	if len(imgs) == 0 {
		return nil, ErrEmptyBatch
	}

	w, h := m.options.InputWidth, m.options.InputHeight
	letterboxes := make([]images.Letterbox, len(imgs))
	for i, img := range imgs {
		if img == nil {
			return nil, errors.Wrapf(ErrEmptyBatch, "image %d is nil", i)
		}
		lb, err := images.LetterboxFor(img, h, w)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
		letterboxes[i] = lb
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slot := 3 * w * h
	backing := make([]float32, len(imgs)*slot)
	errs := make([]error, len(imgs))

	convert := func(i int) {
		letterboxed := letterboxes[i].Apply(imgs[i])
		errs[i] = preprocess.ToCHW(backing[i*slot:(i+1)*slot], letterboxed,
			m.options.ColorMode, preprocess.NormalizeZeroToOne)
	}

	if m.options.Workers <= 1 || len(imgs) == 1 {
		for i := range imgs {
			convert(i)
		}
	} else {
		sem := make(chan struct{}, m.options.Workers)
		var wg sync.WaitGroup
		for i := range imgs {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				convert(i)
			}(i)
		}
		wg.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &model.Input{
		Tensor:      tensor.New(tensor.WithShape(len(imgs), 3, h, w), tensor.WithBacking(backing)),
		Letterboxes: letterboxes,
	}, nil
}
