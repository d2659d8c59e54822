// Package yolov5 - postprocess YOLOv5 model outputs.
package yolov5

import (
	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// PostProcess postprocesses the output of the YOLOv5 model.
//
// Arguments:
//   - pred: The [batch, anchors, 5+classes] prediction.
//   - letterboxes: The letterbox of each image, in batch order.
//
// Returns:
//   - Per image detections in original image coordinates.
//   - postprocess.ErrInvalidPrediction if the prediction layout is wrong or
//     its batch size differs from len(letterboxes).
func (m *YOLOv5) PostProcess(pred *tensor.Dense, letterboxes []images.Letterbox) ([][]postprocess.Result, error) {
	if pred != nil {
		if shape := pred.Shape(); len(shape) > 0 && shape[0] != len(letterboxes) {
			return nil, errors.Wrapf(postprocess.ErrInvalidPrediction,
				"prediction batch %d, want %d", shape[0], len(letterboxes))
		}
	}

	batch, err := postprocess.Run(pred, m.options.Postprocess)
	if err != nil {
		return nil, err
	}

	for i := range batch {
		postprocess.Remap(batch[i], letterboxes[i], m.options.ClampToFrame)
	}

	return batch, nil
}
