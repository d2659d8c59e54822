// Package models - Model registry and output class label sets.
package models

import (
	"strconv"

	"github.com/nvr-ai/go-yolov5/models/model"
)

// COCOLabels is the 80 COCO classes with no background class. YOLO models
// index directly into this zero-based list.
var COCOLabels = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck",
	"boat", "traffic light", "fire hydrant", "stop sign", "parking meter", "bench",
	"bird", "cat", "dog", "horse", "sheep", "cow", "elephant", "bear", "zebra",
	"giraffe", "backpack", "umbrella", "handbag", "tie", "suitcase", "frisbee",
	"skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup",
	"fork", "knife", "spoon", "bowl", "banana", "apple", "sandwich", "orange",
	"broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair", "couch",
	"potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear",
	"hair drier", "toothbrush",
}

// Labels returns the default label list for a model family. COCO-style
// families get "__background__" at index 0.
func Labels(family model.Family) []string {
	switch family {
	case model.ModelFamilyCOCO:
		return append([]string{"__background__"}, COCOLabels...)
	default:
		return COCOLabels
	}
}

// LabelSet maps class indices to names and back.
type LabelSet struct {
	names     []string
	nameToIdx map[string]int
}

// NewLabelSet builds a LabelSet. A nil or empty list selects COCOLabels.
func NewLabelSet(names []string) *LabelSet {
	if len(names) == 0 {
		names = COCOLabels
	}
	s := &LabelSet{names: names, nameToIdx: make(map[string]int, len(names))}
	for i, n := range names {
		if _, ok := s.nameToIdx[n]; !ok {
			s.nameToIdx[n] = i
		}
	}
	return s
}

// Name returns the label of class idx, or "class <idx>" when it has none.
func (s *LabelSet) Name(idx int) string {
	if s != nil && idx >= 0 && idx < len(s.names) {
		return s.names[idx]
	}
	return "class " + strconv.Itoa(idx)
}

// Index returns the first class index labelled name.
func (s *LabelSet) Index(name string) (int, bool) {
	idx, ok := s.nameToIdx[name]
	return idx, ok
}

// Len returns the number of labels.
func (s *LabelSet) Len() int {
	return len(s.names)
}

// Names returns a copy of the labels.
func (s *LabelSet) Names() []string {
	return append([]string(nil), s.names...)
}
