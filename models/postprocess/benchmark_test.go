package postprocess

import (
	"fmt"
	"math/rand"
	"testing"
)

// predictionRows builds a YOLOv5s-sized prediction (25200 anchors, 80
// classes) where roughly one anchor in fifty clears the threshold.
func predictionRows(rng *rand.Rand) ([]float32, int) {
	const anchors, classes = 25200, 80
	stride := 5 + classes
	data := make([]float32, anchors*stride)
	for a := 0; a < anchors; a++ {
		r := data[a*stride : (a+1)*stride]
		r[0] = rng.Float32() * 640
		r[1] = rng.Float32() * 640
		r[2] = 10 + rng.Float32()*120
		r[3] = 10 + rng.Float32()*120
		r[4] = rng.Float32() * 0.3
		if rng.Intn(50) == 0 {
			r[4] = 0.5 + rng.Float32()*0.5
		}
		r[5+rng.Intn(classes)] = 0.5 + rng.Float32()*0.5
	}
	return data, stride
}

func BenchmarkFilter(b *testing.B) {
	data, stride := predictionRows(rand.New(rand.NewSource(1)))
	cfg := Config{ConfidenceThreshold: 0.25, IoUThreshold: 0.45}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Filter(data, stride, cfg)
	}
}

func BenchmarkApplyGreedyNMS(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{100, 1000, 5000} {
		detections := randomDetections(rng, n, 80)
		for _, workers := range []int{1, 4} {
			cfg := Config{IoUThreshold: 0.45, Workers: workers}
			b.Run(fmt.Sprintf("n=%d/workers=%d", n, workers), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_ = ApplyGreedyNMS(detections, cfg)
				}
			})
		}
	}
}
