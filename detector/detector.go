// Package detector - Letterbox, inference and post-processing of image batches.
package detector

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-yolov5/inference"
	"github.com/nvr-ai/go-yolov5/models"
	"github.com/nvr-ai/go-yolov5/models/model"
	"github.com/nvr-ai/go-yolov5/models/model/preprocess"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/nvr-ai/go-yolov5/models/yolov5"
	"github.com/nvr-ai/go-yolov5/profiler"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

var (
	// ErrDegenerateBatch is returned for an empty batch or a nil image.
	ErrDegenerateBatch = errors.New("degenerate batch")
	// ErrEngineFailure wraps any error returned by the inference engine.
	ErrEngineFailure = errors.New("engine failure")
)

// Stage names recorded with the profiler.
const (
	StagePreprocess  = "preprocess"
	StageInference   = "inference"
	StagePostprocess = "postprocess"
	StageDetect      = "detect"
)

// Config configures a Detector.
type Config struct {
	InputWidth          int                  `json:"input_width"    yaml:"input_width"`
	InputHeight         int                  `json:"input_height"   yaml:"input_height"`
	ColorMode           preprocess.ColorMode `json:"color_mode"     yaml:"color_mode"`
	ConfidenceThreshold float32              `json:"confidence"     yaml:"confidence"`
	IoUThreshold        float32              `json:"iou"            yaml:"iou"`
	MaxCandidates       int                  `json:"max_candidates" yaml:"max_candidates"`
	ClampToFrame        bool                 `json:"clamp_to_frame" yaml:"clamp_to_frame"`
	Workers             int                  `json:"workers"        yaml:"workers"`
}

// DefaultConfig returns the stock YOLOv5 settings.
func DefaultConfig() Config {
	return Config{
		InputWidth:          yolov5.DefaultInputSize,
		InputHeight:         yolov5.DefaultInputSize,
		ColorMode:           preprocess.ColorModeRGB,
		ConfidenceThreshold: yolov5.DefaultConfidenceThreshold,
		IoUThreshold:        yolov5.DefaultIoUThreshold,
		MaxCandidates:       postprocess.DefaultMaxCandidates,
		ClampToFrame:        true,
		Workers:             1,
	}
}

func (c Config) modelArgs() model.NewModelArgs {
	return model.NewModelArgs{
		Name:        model.ModelNameYOLOv5,
		Family:      model.ModelFamilyYOLO,
		InputWidth:  c.InputWidth,
		InputHeight: c.InputHeight,
		ColorMode:   c.ColorMode,
		Postprocess: postprocess.Config{
			ConfidenceThreshold: c.ConfidenceThreshold,
			IoUThreshold:        c.IoUThreshold,
			MaxCandidates:       c.MaxCandidates,
			Workers:             c.Workers,
		},
		ClampToFrame: c.ClampToFrame,
		Workers:      c.Workers,
	}
}

// Option customises a Detector.
type Option func(*Detector)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithColorCache sets the cache used by Draw helpers bound to this detector.
func WithColorCache(cache *ColorCache) Option {
	return func(d *Detector) {
		if cache != nil {
			d.colors = cache
		}
	}
}

// WithProfiler records stage timings on p.
func WithProfiler(p *profiler.Profiler) Option {
	return func(d *Detector) {
		if p != nil {
			d.profiler = p
		}
	}
}

// Input is one image of a batch.
type Input struct {
	// ID identifies the image in the returned Batch. Empty IDs get a UUID.
	ID    string
	Image image.Image
}

// ImageResult holds the detections of one image in original pixel coordinates.
type ImageResult struct {
	ID      string               `json:"id"      yaml:"id"`
	Results []postprocess.Result `json:"results" yaml:"results"`
}

// Batch is the output of Detect, in input order.
type Batch []ImageResult

// Results returns the detections of every image, in batch order.
func (b Batch) Results() [][]postprocess.Result {
	out := make([][]postprocess.Result, len(b))
	for i := range b {
		out[i] = b[i].Results
	}
	return out
}

// Count returns the total number of detections in the batch.
func (b Batch) Count() int {
	n := 0
	for i := range b {
		n += len(b[i].Results)
	}
	return n
}

// Detector runs a YOLOv5 engine on batches of images.
type Detector struct {
	engine   inference.Engine
	model    model.Model
	logger   *zap.Logger
	colors   *ColorCache
	profiler *profiler.Profiler
}

// New creates a Detector around engine.
//
// Arguments:
//   - engine: The inference engine. The Detector does not close it.
//   - cfg: Input size, color order and post-processing thresholds.
//   - opts: Optional logger, color cache and profiler.
//
// Returns:
//   - *Detector: The detector.
//   - error: If engine is nil or cfg is invalid.
//
// Example:
//
// ```go
//
//	engine, err := inference.NewONNXEngine(cfg.Model, logger)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	d, err := detector.New(engine, detector.DefaultConfig(), detector.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	batch, err := d.DetectImages(ctx, img)
//
// ```
func New(engine inference.Engine, cfg Config, opts ...Option) (*Detector, error) {
	if engine == nil {
		return nil, errors.New("detector.New requires an engine")
	}

	m, err := models.NewModel(cfg.modelArgs())
	if err != nil {
		return nil, errors.Wrap(err, "detector.New")
	}

	d := &Detector{
		engine:   engine,
		model:    m,
		logger:   zap.NewNop(),
		profiler: profiler.New(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.colors == nil {
		d.colors = NewColorCache(1)
	}

	return d, nil
}

// Options returns the resolved model options.
func (d *Detector) Options() model.Options {
	return d.model.Options()
}

// Colors returns the detector's color cache.
func (d *Detector) Colors() *ColorCache {
	return d.colors
}

// Profiler returns the profiler stage timings are recorded on.
func (d *Detector) Profiler() *profiler.Profiler {
	return d.profiler
}

// Detect runs the full pipeline on a batch of images.
//
// The whole batch is validated before any tensor work: an empty batch or a
// nil image is ErrDegenerateBatch and an image with a non-positive size is
// images.ErrInvalidDimension. The engine is called exactly once; its errors are
// returned wrapped in ErrEngineFailure and no partial results are produced.
//
// Arguments:
//   - ctx: Checked before the engine call and between stages.
//   - inputs: The images. Empty IDs are replaced with a new UUID.
//
// Returns:
//   - Batch: One ImageResult per input, in order. Results is never nil.
//   - error: ErrDegenerateBatch, images.ErrInvalidDimension, ErrEngineFailure,
//     postprocess.ErrInvalidPrediction or the context error.
func (d *Detector) Detect(ctx context.Context, inputs ...Input) (Batch, error) {
	if len(inputs) == 0 {
		return nil, errors.Wrap(ErrDegenerateBatch, "no images")
	}

	imgs := make([]image.Image, len(inputs))
	ids := make([]string, len(inputs))
	for i, in := range inputs {
		if in.Image == nil {
			return nil, errors.Wrapf(ErrDegenerateBatch, "image %d is nil", i)
		}
		imgs[i] = in.Image
		ids[i] = in.ID
		if ids[i] == "" {
			ids[i] = uuid.NewString()
		}
	}

	stopDetect := d.profiler.StartOperation(StageDetect)

	stop := d.profiler.StartOperation(StagePreprocess)
	input, err := d.model.PreProcess(ctx, imgs)
	preDur := stop()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop = d.profiler.StartOperation(StageInference)
	pred, err := d.run(ctx, input.Tensor)
	inferDur := stop()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop = d.profiler.StartOperation(StagePostprocess)
	results, err := d.model.PostProcess(pred, input.Letterboxes)
	postDur := stop()
	if err != nil {
		return nil, err
	}

	batch := make(Batch, len(inputs))
	for i := range batch {
		batch[i] = ImageResult{ID: ids[i], Results: results[i]}
		if batch[i].Results == nil {
			batch[i].Results = []postprocess.Result{}
		}
	}

	d.logger.Debug("detect",
		zap.Int("images", len(inputs)),
		zap.Int("detections", batch.Count()),
		zap.Duration("preprocess", preDur),
		zap.Duration("inference", inferDur),
		zap.Duration("postprocess", postDur),
		zap.Duration("total", stopDetect()),
	)

	return batch, nil
}

// DetectImages calls Detect with generated IDs.
func (d *Detector) DetectImages(ctx context.Context, imgs ...image.Image) (Batch, error) {
	inputs := make([]Input, len(imgs))
	for i, img := range imgs {
		inputs[i] = Input{Image: img}
	}
	return d.Detect(ctx, inputs...)
}

// WarmUp pushes runs zero-filled single-image batches through the engine so
// lazy allocations happen before the first real call.
func (d *Detector) WarmUp(ctx context.Context, runs int) error {
	opts := d.model.Options()
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		input := tensor.New(
			tensor.WithShape(1, 3, opts.InputHeight, opts.InputWidth),
			tensor.WithBacking(make([]float32, 3*opts.InputHeight*opts.InputWidth)),
		)
		stop := d.profiler.StartOperation(StageInference)
		_, err := d.run(ctx, input)
		dur := stop()
		if err != nil {
			return errors.Wrapf(err, "warm-up run %d", i)
		}
		d.logger.Debug("warm-up", zap.Int("run", i), zap.Duration("inference", dur))
	}
	return nil
}

func (d *Detector) run(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	pred, err := d.engine.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineFailure, err)
	}
	if pred == nil {
		return nil, errors.Wrap(ErrEngineFailure, "engine returned no prediction")
	}
	return pred, nil
}
