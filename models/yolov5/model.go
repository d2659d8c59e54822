// Package yolov5 - YOLOv5 model.
package yolov5

import (
	"github.com/nvr-ai/go-yolov5/models/model"
	"github.com/nvr-ai/go-yolov5/models/model/preprocess"
	"github.com/pkg/errors"
)

const (
	// DefaultInputSize is the square input size of the stock YOLOv5 exports.
	DefaultInputSize = 640
	// DefaultConfidenceThreshold is the objectness and class score cut-off.
	DefaultConfidenceThreshold = 0.25
	// DefaultIoUThreshold is the NMS overlap cut-off.
	DefaultIoUThreshold = 0.45
)

// YOLOv5 is the instance of the YOLOv5 model.
type YOLOv5 struct {
	options model.Options
}

// Options returns the options for the YOLOv5 model.
//
// Returns:
//   - The options for the YOLOv5 model.
func (m *YOLOv5) Options() model.Options {
	return m.options
}

// NewModel creates a new model.
//
// Zero input sizes fall back to DefaultInputSize and an empty color mode to
// RGB. Thresholds are taken as given, so callers wanting the stock values
// should start from DefaultArgs.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The model.
//   - An error if an input size is negative, the color mode is unknown or a
//     threshold is outside [0, 1].
func NewModel(args model.NewModelArgs) (*YOLOv5, error) {
	if args.InputWidth < 0 || args.InputHeight < 0 {
		return nil, errors.Errorf("NewModel requires a positive input size, got %dx%d",
			args.InputWidth, args.InputHeight)
	}
	if args.InputWidth == 0 {
		args.InputWidth = DefaultInputSize
	}
	if args.InputHeight == 0 {
		args.InputHeight = DefaultInputSize
	}

	mode, err := preprocess.ParseColorMode(string(args.ColorMode))
	if err != nil {
		return nil, errors.Wrap(err, "NewModel")
	}

	if err := args.Postprocess.Validate(); err != nil {
		return nil, errors.Wrap(err, "NewModel")
	}

	workers := args.Workers
	if workers < 1 {
		workers = 1
	}

	family := args.Family
	if family == "" {
		family = model.ModelFamilyYOLO
	}

	return &YOLOv5{
		options: model.Options{
			Name:         model.ModelNameYOLOv5,
			Family:       family,
			Path:         args.Path,
			InputWidth:   args.InputWidth,
			InputHeight:  args.InputHeight,
			ColorMode:    mode,
			Postprocess:  args.Postprocess,
			ClampToFrame: args.ClampToFrame,
			Workers:      workers,
		},
	}, nil
}

// DefaultArgs returns the stock YOLOv5 configuration: a 640x640 RGB input,
// confidence 0.25, IoU 0.45 and clamping to the original frame.
func DefaultArgs() model.NewModelArgs {
	args := model.NewModelArgs{
		Name:         model.ModelNameYOLOv5,
		Family:       model.ModelFamilyYOLO,
		InputWidth:   DefaultInputSize,
		InputHeight:  DefaultInputSize,
		ColorMode:    preprocess.ColorModeRGB,
		ClampToFrame: true,
		Workers:      1,
	}
	args.Postprocess.ConfidenceThreshold = DefaultConfidenceThreshold
	args.Postprocess.IoUThreshold = DefaultIoUThreshold
	return args
}
