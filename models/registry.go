package models

import (
	"github.com/nvr-ai/go-yolov5/models/model"
	"github.com/nvr-ai/go-yolov5/models/yolov5"
	"github.com/pkg/errors"
)

// ErrUnsupportedModel is returned by NewModel for an unknown model name.
var ErrUnsupportedModel = errors.New("unsupported model")

// NewModel creates a new detection model instance based on the specified model type.
//
// This factory function is the entry point for model creation, routing
// requests to the model-specific constructors. An empty name selects YOLOv5.
//
// Arguments:
//   - args: Configuration parameters specifying the model type and its input.
//
// Returns:
//   - model.Model: A configured model instance implementing the Model interface.
//   - error: An error if model creation fails or the model type is unsupported.
//
// Example:
//
// ```go
//
//	args := yolov5.DefaultArgs()
//	args.Path = "/models/yolov5s.onnx"
//
//	detectionModel, err := NewModel(args)
//	if err != nil {
//	    log.Fatalf("Failed to create detection model: %v", err)
//	}
//
// ```
func NewModel(args model.NewModelArgs) (model.Model, error) {
	switch args.Name {
	case model.ModelNameYOLOv5, "":
		m, err := yolov5.NewModel(args)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedModel, "%q", args.Name)
	}
}
