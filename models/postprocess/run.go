package postprocess

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Run filters and suppresses a batched YOLO prediction.
//
// Arguments:
//   - pred: A float32 tensor of shape [batch, anchors, 5+classes] with rows
//     [cx, cy, w, h, objectness, class scores...] in letterboxed pixels.
//   - cfg: Thresholds, candidate cap and worker count.
//
// Returns:
//   - [][]Result: One slice per image, in batch order, each sorted by
//     descending score. Images without detections get an empty slice.
//   - error: ErrInvalidPrediction when the tensor layout is wrong, or
//     ErrInvalidConfig when a threshold is out of range.
//
// Example:
//
// ```go
//
//	batch, err := postprocess.Run(pred, postprocess.Config{
//	    ConfidenceThreshold: 0.25,
//	    IoUThreshold:        0.45,
//	})
//
// ```
func Run(pred *tensor.Dense, cfg Config) ([][]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows, batch, anchors, stride, err := predictionLayout(pred)
	if err != nil {
		return nil, err
	}

	out := make([][]Result, batch)
	size := anchors * stride
	for b := 0; b < batch; b++ {
		candidates := Filter(rows[b*size:(b+1)*size], stride, cfg)
		out[b] = ApplyGreedyNMS(candidates, cfg)
	}

	return out, nil
}

// predictionLayout validates pred and returns its backing rows and dimensions.
func predictionLayout(pred *tensor.Dense) (rows []float32, batch, anchors, stride int, err error) {
	if pred == nil {
		return nil, 0, 0, 0, errors.Wrap(ErrInvalidPrediction, "nil tensor")
	}
	if pred.Dtype() != tensor.Float32 {
		return nil, 0, 0, 0, errors.Wrapf(ErrInvalidPrediction, "dtype %v, want float32", pred.Dtype())
	}

	shape := pred.Shape()
	if len(shape) != 3 {
		return nil, 0, 0, 0, errors.Wrapf(ErrInvalidPrediction, "shape %v, want [batch, anchors, 5+classes]", shape)
	}
	batch, anchors, stride = shape[0], shape[1], shape[2]
	if stride < 6 {
		return nil, 0, 0, 0, errors.Wrapf(ErrInvalidPrediction, "row length %d leaves no class scores", stride)
	}

	if pred.IsView() {
		m, ok := pred.Materialize().(*tensor.Dense)
		if !ok {
			return nil, 0, 0, 0, errors.Wrap(ErrInvalidPrediction, "cannot materialize view")
		}
		pred = m
	}

	rows, ok := pred.Data().([]float32)
	if !ok {
		return nil, 0, 0, 0, errors.Wrapf(ErrInvalidPrediction, "backing data %T", pred.Data())
	}
	if want := batch * anchors * stride; len(rows) < want {
		return nil, 0, 0, 0, errors.Wrapf(ErrInvalidPrediction, "have %d values, need %d", len(rows), want)
	}

	return rows, batch, anchors, stride, nil
}
