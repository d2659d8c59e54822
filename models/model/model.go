// Package model - Contract shared by detection models.
package model

import (
	"context"
	"image"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models/model/preprocess"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"gorgonia.org/tensor"
)

// Family is the family of models.
type Family string

const (
	// ModelFamilyCOCO is the COCO model family (80 classes plus background).
	ModelFamilyCOCO Family = "coco"
	// ModelFamilyYOLO is the YOLO model family (80 COCO classes, no background).
	ModelFamilyYOLO Family = "yolo"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv5 is the name of the YOLOv5 model.
	ModelNameYOLOv5 Name = "yolov5"
)

// Options describes a configured model.
type Options struct {
	Name         Name
	Family       Family
	Path         string
	InputWidth   int
	InputHeight  int
	ColorMode    preprocess.ColorMode
	Postprocess  postprocess.Config
	ClampToFrame bool
	Workers      int
}

// Input is a batched model input together with the letterbox of each image.
type Input struct {
	// Tensor is the [batch, 3, height, width] float32 input.
	Tensor *tensor.Dense
	// Letterboxes holds one transform per image, in batch order.
	Letterboxes []images.Letterbox
}

// Model prepares inputs for, and interprets outputs of, a detection network.
type Model interface {
	Options() Options
	PreProcess(ctx context.Context, imgs []image.Image) (*Input, error)
	PostProcess(pred *tensor.Dense, letterboxes []images.Letterbox) ([][]postprocess.Result, error)
}

// NewModelArgs is the arguments for creating a new model.
type NewModelArgs struct {
	Name         Name                 `json:"name"           yaml:"name"`
	Family       Family               `json:"family"         yaml:"family"`
	Path         string               `json:"path"           yaml:"path"`
	InputWidth   int                  `json:"input_width"    yaml:"input_width"`
	InputHeight  int                  `json:"input_height"   yaml:"input_height"`
	ColorMode    preprocess.ColorMode `json:"color_mode"     yaml:"color_mode"`
	Postprocess  postprocess.Config   `json:"postprocess"    yaml:"postprocess"`
	ClampToFrame bool                 `json:"clamp_to_frame" yaml:"clamp_to_frame"`
	Workers      int                  `json:"workers"        yaml:"workers"`
}
