package main

import (
	"image"
	"testing"
	"time"

	"github.com/nvr-ai/go-yolov5/config"
	"github.com/nvr-ai/go-yolov5/detector"
	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/nvr-ai/go-yolov5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunks(t *testing.T) {
	files := make([]util.ImageFile, 5)

	tests := []struct {
		size int
		want []int
	}{
		{size: 0, want: []int{1, 1, 1, 1, 1}},
		{size: 2, want: []int{2, 2, 1}},
		{size: 5, want: []int{5}},
		{size: 8, want: []int{5}},
	}
	for _, tt := range tests {
		var got []int
		for _, c := range chunks(files, tt.size) {
			got = append(got, len(c))
		}
		assert.Equal(t, tt.want, got, "size %d", tt.size)
	}

	assert.Empty(t, chunks(nil, 4))
}

func TestToRecord(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	batch := detector.Batch{
		{ID: "img-1", Results: []postprocess.Result{}},
		{ID: "img-2", Results: []postprocess.Result{{
			Box:   images.Rect{X1: 1, Y1: 2, X2: 3, Y2: 4},
			Score: 0.8,
			Class: 2,
		}}},
	}
	files := []util.ImageFile{{Path: "a.jpg"}, {Path: "b.jpg"}}
	imgs := []image.Image{
		image.NewNRGBA(image.Rect(0, 0, 1920, 1080)),
		image.NewNRGBA(image.Rect(0, 0, 640, 480)),
	}

	rec := toRecord(batch, files, imgs, models.NewLabelSet(nil), cfg, 3*time.Millisecond)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "yolov5", rec.Model)
	assert.Equal(t, 3*time.Millisecond, rec.Duration)
	require.Len(t, rec.Images, 2)
	assert.Equal(t, "img-1", rec.Images[0].ID)
	assert.Equal(t, 1920, rec.Images[0].Width)
	assert.Empty(t, rec.Images[0].Detections)
	require.Len(t, rec.Images[1].Detections, 1)
	assert.Equal(t, "car", rec.Images[1].Detections[0].Label)
	assert.Equal(t, "b.jpg", rec.Images[1].Source)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", extension("jpeg"))
	assert.Equal(t, "jpg", extension(""))
	assert.Equal(t, "png", extension("PNG"))
	assert.Equal(t, "webp", extension("webp"))
}
