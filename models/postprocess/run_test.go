package postprocess

import (
	"testing"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func predTensor(batch, anchors, stride int, data []float32) *tensor.Dense {
	return tensor.New(tensor.WithShape(batch, anchors, stride), tensor.WithBacking(data))
}

// TestRun_Batch checks that an image without detections gets an empty slice
// while its neighbour keeps three disjoint boxes.
func TestRun_Batch(t *testing.T) {
	const stride = 7
	data := rows(
		// image 0: objectness below threshold everywhere
		row(100, 100, 20, 20, 0.2, 1, 0),
		row(200, 200, 20, 20, 0.1, 0, 1),
		row(300, 300, 20, 20, 0.0, 1, 1),
		// image 1: three disjoint boxes
		row(100, 100, 20, 20, 0.9, 1, 0),
		row(200, 200, 20, 20, 0.8, 0, 1),
		row(300, 300, 20, 20, 0.7, 1, 0),
	)

	out, err := Run(predTensor(2, 3, stride, data), Config{ConfidenceThreshold: 0.25, IoUThreshold: 0.45})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.NotNil(t, out[0])
	assert.Empty(t, out[0])

	require.Len(t, out[1], 3)
	assert.Equal(t, []int{0, 1, 0}, []int{out[1][0].Class, out[1][1].Class, out[1][2].Class})
	assert.Equal(t, images.Rect{X1: 90, Y1: 90, X2: 110, Y2: 110}, out[1][0].Box)
	assert.True(t, HasDetections(out))
}

func TestRun_SuppressesOverlap(t *testing.T) {
	data := rows(
		row(50, 50, 40, 40, 0.9, 0.9),
		row(52, 52, 40, 40, 0.9, 0.8),
		row(51, 51, 40, 40, 0.9, 0.1),
	)

	out, err := Run(predTensor(1, 3, 6, data), Config{ConfidenceThreshold: 0.25, IoUThreshold: 0.45})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0], 1)
	assert.InDelta(t, 0.81, out[0][0].Score, 1e-6)
}

func TestRun_InvalidPrediction(t *testing.T) {
	cfg := Config{ConfidenceThreshold: 0.25, IoUThreshold: 0.45}

	tests := []struct {
		name string
		pred *tensor.Dense
	}{
		{"nil", nil},
		{"two dimensions", tensor.New(tensor.WithShape(2, 6), tensor.WithBacking(make([]float32, 12)))},
		{"no class columns", predTensor(1, 2, 5, make([]float32, 10))},
		{"float64", tensor.New(tensor.WithShape(1, 1, 6), tensor.WithBacking(make([]float64, 6)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.pred, cfg)
			assert.ErrorIs(t, err, ErrInvalidPrediction)
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	pred := predTensor(1, 1, 6, make([]float32, 6))

	_, err := Run(pred, Config{ConfidenceThreshold: 1.5, IoUThreshold: 0.45})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Run(pred, Config{ConfidenceThreshold: 0.25, IoUThreshold: -0.1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
